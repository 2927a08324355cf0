package discovery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationError(t *testing.T) {
	t.Run("unknown loader message names id and plugin", func(t *testing.T) {
		err := unknownLoaderError("p4", "missing-loader")

		assert.Equal(t,
			`the identifier "missing-loader" does not match any registered extension loader (working with the plugin "p4")`,
			err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("loader failure message carries the cause", func(t *testing.T) {
		cause := errors.New("definition rejected")
		err := loaderError("p1", "java", cause)

		assert.Equal(t,
			`failed to resolve the extension of plugin "p1" with loader "java": definition rejected`,
			err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("matches errors.As through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("failed to deploy artifact app: %w", loaderError("p1", "java", errors.New("boom")))

		var cfgErr *ConfigurationError
		require.ErrorAs(t, wrapped, &cfgErr)
		assert.Equal(t, "p1", cfgErr.PluginName)
		assert.Equal(t, "java", cfgErr.LoaderID)
	})
}
