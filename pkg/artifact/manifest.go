package artifact

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ManifestPath is the well-known location of the legacy extension manifest
// inside a plugin's loading context. Plugins without a loader descriptor are
// probed for it during discovery.
const ManifestPath = "meta/extension-manifest.yaml"

// ExtensionManifest represents the legacy extension manifest resource.
type ExtensionManifest struct {
	Version   string            `yaml:"version"`
	Describer ManifestDescriber `yaml:"describer"`
}

// ManifestDescriber is the describer section of a legacy extension manifest.
type ManifestDescriber struct {
	Type string `yaml:"type"`
}

// ParseExtensionManifest parses and validates a legacy extension manifest.
func ParseExtensionManifest(data []byte) (*ExtensionManifest, error) {
	var manifest ExtensionManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse extension manifest: %w", err)
	}

	if manifest.Describer.Type == "" {
		return nil, fmt.Errorf("extension manifest has no describer type")
	}

	if manifest.Version == "" {
		return nil, fmt.Errorf("extension manifest has no version")
	}

	return &manifest, nil
}
