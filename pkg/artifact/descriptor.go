package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// pluginNameRegex validates plugin and artifact name format (lowercase
// alphanumeric with hyphens)
var pluginNameRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// DescriptorLoader loads and validates plugin descriptors
type DescriptorLoader struct {
	logger       zerolog.Logger
	schemaLoader gojsonschema.JSONLoader
}

// NewDescriptorLoader creates a new descriptor loader
func NewDescriptorLoader(logger zerolog.Logger) *DescriptorLoader {
	schemaLoader := gojsonschema.NewStringLoader(DescriptorSchema)
	return &DescriptorLoader{
		logger:       logger.With().Str("component", "descriptor-loader").Logger(),
		schemaLoader: schemaLoader,
	}
}

// LoadDescriptor loads and validates a plugin descriptor from a file
func (d *DescriptorLoader) LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file: %w", err)
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor JSON: %w", err)
	}

	if err := validateSchema(d.schemaLoader, data); err != nil {
		return nil, fmt.Errorf("descriptor schema validation failed: %w", err)
	}

	if err := d.validateDescriptor(&desc); err != nil {
		return nil, fmt.Errorf("descriptor validation failed: %w", err)
	}

	d.logger.Debug().
		Str("name", desc.Name).
		Str("version", desc.Version).
		Msg("Loaded descriptor")

	return &desc, nil
}

// validateDescriptor performs additional validation beyond JSON schema
func (d *DescriptorLoader) validateDescriptor(desc *Descriptor) error {
	if !pluginNameRegex.MatchString(desc.Name) {
		return fmt.Errorf("invalid plugin name format: %s (must be lowercase alphanumeric with hyphens)", desc.Name)
	}

	if _, err := semver.NewVersion(desc.Version); err != nil {
		return fmt.Errorf("invalid version %q: %w", desc.Version, err)
	}

	if loader := desc.Extension; loader != nil && loader.Loader != nil {
		if loader.Loader.ID == "" {
			return fmt.Errorf("loader descriptor id cannot be empty")
		}
	}

	return nil
}

// validateSchema validates a document against a JSON schema
func validateSchema(schema gojsonschema.JSONLoader, data []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schema, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		// Collect all validation errors
		var errMsg string
		for i, err := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += err.String()
		}
		return fmt.Errorf("schema validation errors: %s", errMsg)
	}

	return nil
}

// ParseDescriptor parses a descriptor from JSON bytes (for testing)
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor JSON: %w", err)
	}
	return &desc, nil
}
