package discovery

import (
	"context"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/harun/atrium/internal/observability"
	"github.com/harun/atrium/internal/tracing"
	"github.com/harun/atrium/pkg/artifact"
	"github.com/harun/atrium/pkg/extension"
)

// Engine discovers and resolves the extensions contributed by an artifact's
// plugins. Resolution is strictly sequential in the artifact's declared
// plugin order: the loader for each plugin observes exactly the models of
// the plugins resolved before it. The engine keeps no per-artifact state,
// so independent artifacts may be discovered concurrently as long as the
// loader directory is no longer mutated.
type Engine struct {
	logger    zerolog.Logger
	directory *extension.Directory
	selector  *Selector
	adapter   *ManifestAdapter
	sink      *Sink
	legacyID  string
}

// NewEngine creates a discovery engine over the given loader directory. The
// directory must be fully populated before the first discovery call; the
// engine never mutates it. legacy is the fixed built-in loader targeted by
// the legacy manifest path; it is invoked directly, never looked up by id.
func NewEngine(logger zerolog.Logger, directory *extension.Directory, legacy extension.Loader) *Engine {
	return &Engine{
		logger:    logger.With().Str("component", "discovery-engine").Logger(),
		directory: directory,
		selector:  NewSelector(logger),
		adapter:   NewManifestAdapter(logger, legacy),
		sink:      NewSink(logger),
		legacyID:  legacy.ID(),
	}
}

// DiscoverAll resolves the extension of every plugin bundled in the artifact
// and returns the accumulated models in resolution order. A descriptor
// naming an unregistered loader, or any loader failure, aborts the whole
// discovery with a ConfigurationError; plugins providing no discovery
// mechanism contribute nothing and are skipped with a warning.
func (e *Engine) DiscoverAll(ctx context.Context, art *artifact.Artifact) ([]*extension.Model, error) {
	ctx, span := tracing.StartSpan(ctx, "atrium.discovery", "discovery.discover_all",
		attribute.String("artifact", art.Name()),
		attribute.Int("plugins", len(art.Plugins)),
	)
	defer span.End()

	passID, _ := gonanoid.New()
	logger := e.logger.With().
		Str("artifact", art.Name()).
		Str("pass", passID).
		Logger()

	started := time.Now()
	var accumulated []*extension.Model

	for _, plugin := range art.Plugins {
		// Each plugin sees only the models resolved strictly before it.
		rctx := extension.NewResolutionContext(accumulated)

		model, err := e.discoverPlugin(ctx, plugin, rctx)
		if err != nil {
			observability.RecordDiscovery(time.Since(started), false)
			observability.RecordDiscoveryAudit(ctx, art.Name(), "error", map[string]interface{}{
				"error": err.Error(),
			})
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if model == nil {
			continue
		}

		accumulated = append(accumulated, model)
		logger.Debug().
			Str("plugin", plugin.Name).
			Str("extension", model.Name).
			Int("resolved", len(accumulated)).
			Msg("Resolved extension")
	}

	observability.RecordDiscovery(time.Since(started), true)
	observability.RecordDiscoveryAudit(ctx, art.Name(), "success", map[string]interface{}{
		"extensions": len(accumulated),
	})
	logger.Info().
		Int("extensions", len(accumulated)).
		Msg("Extension discovery completed")

	return accumulated, nil
}

// Resolve runs discovery for the artifact and registers every accumulated
// model with the registrar. Either all discoverable extensions end up
// registered or none: a fatal discovery error leaves the registrar untouched.
func (e *Engine) Resolve(ctx context.Context, art *artifact.Artifact, registrar Registrar) error {
	models, err := e.DiscoverAll(ctx, art)
	if err != nil {
		return err
	}
	return e.sink.RegisterAll(registrar, models)
}

// discoverPlugin resolves a single plugin. A nil model with a nil error
// means the plugin contributes no extension.
func (e *Engine) discoverPlugin(ctx context.Context, plugin *artifact.Plugin, rctx *extension.ResolutionContext) (*extension.Model, error) {
	route := e.selector.Select(plugin)

	switch route {
	case RouteDescriptor:
		descriptor := plugin.LoaderDescriptor()

		loader, ok := e.directory.Lookup(descriptor.ID)
		if !ok {
			return nil, unknownLoaderError(plugin.Name, descriptor.ID)
		}

		model, err := loader.Load(ctx, plugin.Resources, rctx, descriptor.Attributes)
		if err != nil {
			return nil, loaderError(plugin.Name, descriptor.ID, err)
		}

		observability.RecordExtensionResolved(string(route))
		return model, nil

	case RouteManifest:
		model, err := e.adapter.Adapt(ctx, plugin, rctx)
		if err != nil {
			return nil, loaderError(plugin.Name, e.legacyID, err)
		}

		observability.RecordExtensionResolved(string(route))
		return model, nil

	default:
		observability.RecordDiscoveryGap()
		return nil, nil
	}
}
