package extension

import (
	"context"
	"fmt"
	"io"
)

// Resources is the isolated, plugin-scoped resource lookup handed to loaders.
// Implementations resolve relative paths inside a single plugin only; a loader
// can never observe resources of other plugins through it.
type Resources interface {
	// Find returns the absolute location of a resource and true when the
	// relative path resolves inside the plugin, false otherwise.
	Find(rel string) (string, bool)

	// Open opens a resource for reading. The caller owns the returned reader.
	Open(rel string) (io.ReadCloser, error)
}

// Loader turns raw description data into an extension Model.
// Implementations are registered in a Directory under a stable identifier and
// selected by that identifier at discovery time, not by static type.
type Loader interface {
	// ID returns the stable identifier the loader registers under.
	ID() string

	// Load produces the model for one plugin. rctx carries exactly the models
	// resolved strictly before this invocation within the same artifact, so
	// cross-extension references resolve; params are the loader-specific
	// attributes from the plugin's descriptor or manifest.
	Load(ctx context.Context, res Resources, rctx *ResolutionContext, params map[string]any) (*Model, error)
}

// stringParam extracts a required non-empty string parameter.
func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}
