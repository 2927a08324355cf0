// Package discovery turns an artifact's plugins into registered extension
// models. Each plugin is routed to one of two mechanisms: a structured
// loader descriptor resolved through the loader directory, or a legacy
// extension manifest handled by the fixed built-in loader. Plugins providing
// neither contribute no extension.
//
// Invariants:
// - Plugins resolve strictly in the artifact's declared order; the loader
//   for plugin k observes exactly the models of plugins 1..k-1.
// - An unregistered loader id or a failing loader aborts the artifact's
//   whole discovery with a ConfigurationError; nothing is registered.
// - A plugin with no discovery mechanism is a warning, never an error.
//
// Usage:
//
//	engine := discovery.NewEngine(logger, directory, native)
//	manager := extension.NewManager()
//	if err := engine.Resolve(ctx, art, manager); err != nil {
//		var cfgErr *discovery.ConfigurationError
//		if errors.As(err, &cfgErr) {
//			log.Error().Str("plugin", cfgErr.PluginName).Msg("artifact broken")
//		}
//		return err
//	}
package discovery
