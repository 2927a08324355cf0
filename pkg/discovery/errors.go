package discovery

import (
	"fmt"
)

// ConfigurationError is the fatal discovery failure: a plugin's descriptor
// names a loader with no registered implementation, or a loader fails while
// resolving. It aborts discovery for the whole artifact; the artifact is not
// activated.
type ConfigurationError struct {
	PluginName string
	LoaderID   string
	Err        error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("the identifier %q does not match any registered extension loader (working with the plugin %q)", e.LoaderID, e.PluginName)
	}
	return fmt.Sprintf("failed to resolve the extension of plugin %q with loader %q: %v", e.PluginName, e.LoaderID, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// unknownLoaderError reports a descriptor naming an unregistered loader.
func unknownLoaderError(pluginName, loaderID string) *ConfigurationError {
	return &ConfigurationError{PluginName: pluginName, LoaderID: loaderID}
}

// loaderError reports a loader failing while resolving a plugin's extension.
func loaderError(pluginName, loaderID string, err error) *ConfigurationError {
	return &ConfigurationError{PluginName: pluginName, LoaderID: loaderID, Err: err}
}
