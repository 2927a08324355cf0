// Package extension defines the canonical extension model and the pluggable
// loaders that produce it from raw description data.
//
// Invariants:
// - The loader directory is populated at bootstrap and read-only afterwards.
// - A resolution context is an immutable snapshot; it is rebuilt, never
//   mutated, whenever the accumulated model set changes.
// - Manager registration is keyed by model name; registration order is not
//   observable.
//
// Usage:
//
//	dir := extension.NewDirectory()
//	dir.MustRegister(extension.NewNativeLoader(logger))
//	dir.MustRegister(extension.NewRPCLoader(logger))
//	loader, ok := dir.Lookup("native")
//	_ = loader
//	_ = ok
package extension
