package discovery

import (
	"github.com/rs/zerolog"

	"github.com/harun/atrium/pkg/artifact"
)

// Route identifies which discovery mechanism applies to a plugin.
type Route string

const (
	// RouteDescriptor means the plugin carries a structured loader descriptor.
	RouteDescriptor Route = "descriptor"

	// RouteManifest means the plugin provides a legacy extension manifest at
	// the well-known path.
	RouteManifest Route = "manifest"

	// RouteNone means the plugin contributes no extension.
	RouteNone Route = "none"
)

// Selector routes each plugin to its discovery mechanism. A structured
// descriptor always wins over a present legacy manifest; a plugin providing
// neither contributes no extension.
type Selector struct {
	logger zerolog.Logger
}

// NewSelector creates a new discovery selector
func NewSelector(logger zerolog.Logger) *Selector {
	return &Selector{
		logger: logger.With().Str("component", "discovery-selector").Logger(),
	}
}

// Select decides the discovery route for a plugin. Selecting RouteNone emits
// a warning naming the plugin; it has no other side effects.
func (s *Selector) Select(plugin *artifact.Plugin) Route {
	if plugin.LoaderDescriptor() != nil {
		return RouteDescriptor
	}

	if _, ok := plugin.Resources.Find(artifact.ManifestPath); ok {
		return RouteManifest
	}

	s.logger.Warn().
		Str("plugin", plugin.Name).
		Msg("Extension could not be discovered")

	return RouteNone
}
