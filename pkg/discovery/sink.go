package discovery

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harun/atrium/pkg/extension"
)

// Registrar is the extension manager surface the sink registers models with.
type Registrar interface {
	RegisterExtension(model *extension.Model) error
}

// Sink registers accumulated extension models with an artifact's extension
// manager. Registration order is not significant; the manager keys models by
// name. The sink performs no retries.
type Sink struct {
	logger zerolog.Logger
}

// NewSink creates a new registration sink
func NewSink(logger zerolog.Logger) *Sink {
	return &Sink{
		logger: logger.With().Str("component", "registration-sink").Logger(),
	}
}

// RegisterAll registers every model with the registrar. Failures are the
// registrar's own registration policy surfacing; the first one is returned.
func (s *Sink) RegisterAll(registrar Registrar, models []*extension.Model) error {
	for _, model := range models {
		if err := registrar.RegisterExtension(model); err != nil {
			return fmt.Errorf("failed to register extension %s: %w", model.Name, err)
		}
	}

	s.logger.Debug().
		Int("extensions", len(models)).
		Msg("Registered extensions")

	return nil
}
