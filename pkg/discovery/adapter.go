package discovery

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/harun/atrium/pkg/artifact"
	"github.com/harun/atrium/pkg/extension"
)

// ManifestAdapter translates a plugin's legacy extension manifest into the
// parameters of the fixed built-in loader and invokes it. The legacy path
// never consults the loader directory; the loader is fixed at construction.
type ManifestAdapter struct {
	logger zerolog.Logger
	loader extension.Loader
}

// NewManifestAdapter creates a manifest adapter targeting the given loader.
func NewManifestAdapter(logger zerolog.Logger, loader extension.Loader) *ManifestAdapter {
	return &ManifestAdapter{
		logger: logger.With().Str("component", "manifest-adapter").Logger(),
		loader: loader,
	}
}

// Adapt reads the legacy manifest from the plugin's loading context, maps it
// to exactly two loader parameters (type and version, copied verbatim) and
// invokes the fixed loader with the current resolution context.
func (a *ManifestAdapter) Adapt(ctx context.Context, plugin *artifact.Plugin, rctx *extension.ResolutionContext) (*extension.Model, error) {
	rc, err := plugin.Resources.Open(artifact.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open extension manifest: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read extension manifest: %w", err)
	}

	manifest, err := artifact.ParseExtensionManifest(data)
	if err != nil {
		return nil, err
	}

	params := map[string]any{
		extension.ParamType:    manifest.Describer.Type,
		extension.ParamVersion: manifest.Version,
	}

	a.logger.Debug().
		Str("plugin", plugin.Name).
		Str("type", manifest.Describer.Type).
		Str("version", manifest.Version).
		Msg("Adapted legacy extension manifest")

	return a.loader.Load(ctx, plugin.Resources, rctx, params)
}
