package objectstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Factory creates the stores the runtime hands out. The default stores hold
// runtime-internal state; the user stores hold state owned by deployed
// artifacts. Transient stores never survive a restart.
type Factory interface {
	CreateDefaultInMemoryStore() Store
	CreateDefaultPersistentStore() (Store, error)
	CreateUserStore() (Store, error)
	CreateUserTransientStore() Store
}

// DefaultFactory creates in-memory stores directly and persistent stores as
// SQLite databases under a base directory.
type DefaultFactory struct {
	logger  zerolog.Logger
	baseDir string
}

// NewDefaultFactory creates a factory placing persistent stores under baseDir.
func NewDefaultFactory(logger zerolog.Logger, baseDir string) *DefaultFactory {
	return &DefaultFactory{
		logger:  logger.With().Str("component", "store-factory").Logger(),
		baseDir: baseDir,
	}
}

// CreateDefaultInMemoryStore creates the runtime's transient store.
func (f *DefaultFactory) CreateDefaultInMemoryStore() Store {
	return NewMemoryStore()
}

// CreateDefaultPersistentStore creates the runtime's persistent store.
func (f *DefaultFactory) CreateDefaultPersistentStore() (Store, error) {
	return f.openPersistent("runtime.db")
}

// CreateUserStore creates the persistent store owned by deployed artifacts.
func (f *DefaultFactory) CreateUserStore() (Store, error) {
	return f.openPersistent("user.db")
}

// CreateUserTransientStore creates the transient store owned by deployed
// artifacts.
func (f *DefaultFactory) CreateUserTransientStore() Store {
	return NewMemoryStore()
}

func (f *DefaultFactory) openPersistent(name string) (Store, error) {
	if f.baseDir == "" {
		return nil, fmt.Errorf("store base directory is required")
	}
	if err := os.MkdirAll(f.baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return NewPersistentStore(f.logger, filepath.Join(f.baseDir, name))
}
