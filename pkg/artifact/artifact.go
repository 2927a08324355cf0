package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

const (
	// DefinitionFileName is the artifact definition file at the artifact root.
	DefinitionFileName = "artifact.json"

	// DescriptorFileName is the plugin descriptor file at each plugin root.
	DescriptorFileName = "plugin.json"

	// pluginsDir is the directory under the artifact root holding the
	// bundled plugins, one subdirectory per plugin.
	pluginsDir = "plugins"
)

// Loader reads artifact directories into Artifact values
type Loader struct {
	logger       zerolog.Logger
	schemaLoader gojsonschema.JSONLoader
	descriptors  *DescriptorLoader
}

// NewLoader creates a new artifact loader
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		logger:       logger.With().Str("component", "artifact-loader").Logger(),
		schemaLoader: gojsonschema.NewStringLoader(DefinitionSchema),
		descriptors:  NewDescriptorLoader(logger),
	}
}

// Load reads and validates the artifact rooted at dir. Bundled plugins are
// loaded in their declared order; the returned artifact preserves it.
func (l *Loader) Load(dir string) (*Artifact, error) {
	data, err := os.ReadFile(filepath.Join(dir, DefinitionFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact definition: %w", err)
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse artifact definition: %w", err)
	}

	if err := validateSchema(l.schemaLoader, data); err != nil {
		return nil, fmt.Errorf("artifact definition schema validation failed: %w", err)
	}

	if err := l.validateDefinition(&def); err != nil {
		return nil, fmt.Errorf("artifact definition validation failed: %w", err)
	}

	plugins := make([]*Plugin, 0, len(def.Plugins))
	for _, name := range def.Plugins {
		plugin, err := l.loadPlugin(dir, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load plugin %s: %w", name, err)
		}
		plugins = append(plugins, plugin)
	}

	l.logger.Debug().
		Str("artifact", def.Name).
		Str("version", def.Version).
		Int("plugins", len(plugins)).
		Msg("Loaded artifact")

	return &Artifact{
		Definition: def,
		Root:       dir,
		Plugins:    plugins,
	}, nil
}

// validateDefinition performs additional validation beyond JSON schema
func (l *Loader) validateDefinition(def *Definition) error {
	if !pluginNameRegex.MatchString(def.Name) {
		return fmt.Errorf("invalid artifact name format: %s (must be lowercase alphanumeric with hyphens)", def.Name)
	}

	if _, err := semver.NewVersion(def.Version); err != nil {
		return fmt.Errorf("invalid version %q: %w", def.Version, err)
	}

	if def.MinRuntimeVersion != "" {
		if _, err := semver.NewVersion(def.MinRuntimeVersion); err != nil {
			return fmt.Errorf("invalid minimum runtime version %q: %w", def.MinRuntimeVersion, err)
		}
	}

	seen := make(map[string]bool, len(def.Plugins))
	for _, name := range def.Plugins {
		if seen[name] {
			return fmt.Errorf("duplicate plugin %s in plugin list", name)
		}
		seen[name] = true
	}

	return nil
}

// loadPlugin loads a bundled plugin from its subdirectory under plugins/
func (l *Loader) loadPlugin(dir, name string) (*Plugin, error) {
	pluginDir := filepath.Join(dir, pluginsDir, name)

	info, err := os.Stat(pluginDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat plugin directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", pluginDir)
	}

	desc, err := l.descriptors.LoadDescriptor(filepath.Join(pluginDir, DescriptorFileName))
	if err != nil {
		return nil, err
	}

	if desc.Name != name {
		return nil, fmt.Errorf("descriptor name %q does not match plugin directory %q", desc.Name, name)
	}

	return &Plugin{
		Name:       name,
		Descriptor: *desc,
		Resources:  NewLoadingContext(pluginDir),
	}, nil
}
