// Package artifact reads deployable artifact directories: the artifact
// definition, its bundled plugins, and each plugin's loading context.
//
// Invariants:
// - The plugin order of the artifact definition is preserved; it is the
//   extension resolution order.
// - A plugin's loading context never resolves resources outside the plugin's
//   own directory.
// - Artifacts and plugins are immutable once loaded.
//
// Usage:
//
//	loader := artifact.NewLoader(logger)
//	art, err := loader.Load("/var/lib/atrium/artifacts/orders")
//	if err != nil {
//		return err
//	}
//	for _, p := range art.Plugins {
//		_ = p.LoaderDescriptor()
//	}
package artifact
