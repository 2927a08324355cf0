package artifact

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LoadingContext resolves resources relative to a plugin's root directory.
// Resource paths are slash-separated and must stay inside the root; the
// context never reaches outside the plugin it belongs to.
type LoadingContext struct {
	root string
}

// NewLoadingContext creates a loading context rooted at the given directory.
func NewLoadingContext(root string) *LoadingContext {
	return &LoadingContext{root: root}
}

// Root returns the directory the context is rooted at.
func (c *LoadingContext) Root() string {
	return c.root
}

// resolve validates a resource path and maps it to a filesystem path.
func (c *LoadingContext) resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("resource path cannot be empty")
	}

	if path.IsAbs(rel) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("resource path must be relative, got absolute path: %s", rel)
	}

	// Check for parent directory references
	clean := path.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("resource path escapes the plugin root: %s", rel)
	}

	return filepath.Join(c.root, filepath.FromSlash(clean)), nil
}

// Find reports the filesystem path of a resource if it exists as a regular
// file inside the plugin root.
func (c *LoadingContext) Find(rel string) (string, bool) {
	full, err := c.resolve(rel)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}

	return full, true
}

// Open opens a resource for reading. The caller owns the returned handle.
func (c *LoadingContext) Open(rel string) (io.ReadCloser, error) {
	full, err := c.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}
