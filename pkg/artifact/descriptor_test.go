package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorLoader_LoadDescriptor(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	loader := NewDescriptorLoader(logger)

	t.Run("loads minimal valid descriptor", func(t *testing.T) {
		descriptor := `{
			"name": "http-connector",
			"version": "1.2.0"
		}`

		path := createDescriptorFile(t, descriptor)
		result, err := loader.LoadDescriptor(path)

		require.NoError(t, err)
		assert.Equal(t, "http-connector", result.Name)
		assert.Equal(t, "1.2.0", result.Version)
		assert.Nil(t, result.Extension)
	})

	t.Run("loads descriptor with loader section", func(t *testing.T) {
		descriptor := `{
			"name": "http-connector",
			"version": "1.2.0",
			"description": "HTTP connectivity",
			"vendor": "atrium",
			"extension": {
				"loader": {
					"id": "native",
					"attributes": {"type": "http", "version": "1.2.0"}
				}
			}
		}`

		path := createDescriptorFile(t, descriptor)
		result, err := loader.LoadDescriptor(path)

		require.NoError(t, err)
		require.NotNil(t, result.Extension)
		require.NotNil(t, result.Extension.Loader)
		assert.Equal(t, "native", result.Extension.Loader.ID)
		assert.Equal(t, "http", result.Extension.Loader.Attributes["type"])
		assert.Equal(t, "HTTP connectivity", result.Description)
		assert.Equal(t, "atrium", result.Vendor)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		descriptor := `{
			"name": "http-connector"
			"version": "1.2.0"
		}` // Missing comma

		path := createDescriptorFile(t, descriptor)
		_, err := loader.LoadDescriptor(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse descriptor JSON")
	})

	t.Run("rejects descriptor missing required fields", func(t *testing.T) {
		testCases := []struct {
			name       string
			descriptor string
		}{
			{
				name:       "missing name",
				descriptor: `{"version": "1.0.0"}`,
			},
			{
				name:       "missing version",
				descriptor: `{"name": "test-plugin"}`,
			},
			{
				name: "loader without id",
				descriptor: `{
					"name": "test-plugin",
					"version": "1.0.0",
					"extension": {"loader": {"attributes": {}}}
				}`,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				path := createDescriptorFile(t, tc.descriptor)
				_, err := loader.LoadDescriptor(path)

				require.Error(t, err)
				assert.Contains(t, err.Error(), "schema validation")
			})
		}
	})

	t.Run("rejects invalid plugin names", func(t *testing.T) {
		testCases := []struct {
			name       string
			pluginName string
		}{
			{"uppercase", "HttpConnector"},
			{"spaces", "http connector"},
			{"underscores", "http_connector"},
			{"dots", "http.connector"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				descriptor := `{
					"name": "` + tc.pluginName + `",
					"version": "1.0.0"
				}`

				path := createDescriptorFile(t, descriptor)
				_, err := loader.LoadDescriptor(path)

				require.Error(t, err)
				// Schema validation catches this
				assert.Contains(t, err.Error(), "schema validation")
			})
		}
	})

	t.Run("rejects invalid semver versions", func(t *testing.T) {
		testCases := []struct {
			name    string
			version string
		}{
			{"non-numeric", "one.two.three"},
			{"empty-ish", "..."},
			{"garbage", "not-a-version"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				descriptor := `{
					"name": "test-plugin",
					"version": "` + tc.version + `"
				}`

				path := createDescriptorFile(t, descriptor)
				_, err := loader.LoadDescriptor(path)

				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid version")
			})
		}
	})

	t.Run("accepts semver with prerelease and build metadata", func(t *testing.T) {
		descriptor := `{
			"name": "test-plugin",
			"version": "2.1.0-rc.1+build.5"
		}`

		path := createDescriptorFile(t, descriptor)
		result, err := loader.LoadDescriptor(path)

		require.NoError(t, err)
		assert.Equal(t, "2.1.0-rc.1+build.5", result.Version)
	})

	t.Run("handles file not found", func(t *testing.T) {
		_, err := loader.LoadDescriptor("/nonexistent/plugin.json")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read descriptor file")
	})
}

func TestParseDescriptor(t *testing.T) {
	t.Run("parses without validation", func(t *testing.T) {
		desc, err := ParseDescriptor([]byte(`{"name": "x", "version": "not-checked-here"}`))
		require.NoError(t, err)
		assert.Equal(t, "x", desc.Name)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := ParseDescriptor([]byte(`{`))
		require.Error(t, err)
	})
}

// createDescriptorFile creates a temporary descriptor file for testing
func createDescriptorFile(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, DescriptorFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
