package extension

import (
	"fmt"
	"sort"
	"sync"
)

// Directory maps loader identifiers to registered Loader implementations.
// It is populated once during runtime bootstrap and treated as read-only
// while discovery runs; Lookup never fails on its own for unknown ids, the
// caller decides how to handle absence.
type Directory struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewDirectory creates an empty loader directory.
func NewDirectory() *Directory {
	return &Directory{
		loaders: make(map[string]Loader),
	}
}

// Register adds a loader under its own ID.
func (d *Directory) Register(loader Loader) error {
	if loader == nil {
		return fmt.Errorf("cannot register nil loader")
	}
	id := loader.ID()
	if id == "" {
		return fmt.Errorf("loader ID cannot be empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.loaders[id]; exists {
		return fmt.Errorf("loader %s already registered", id)
	}

	d.loaders[id] = loader
	return nil
}

// MustRegister registers a loader and panics on failure. Intended for
// runtime bootstrap where a registration error is a programming mistake.
func (d *Directory) MustRegister(loader Loader) {
	if err := d.Register(loader); err != nil {
		panic(err)
	}
}

// Lookup returns the loader registered under id, if any.
func (d *Directory) Lookup(id string) (Loader, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	loader, exists := d.loaders[id]
	return loader, exists
}

// IDs returns the registered loader identifiers in sorted order.
func (d *Directory) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.loaders))
	for id := range d.loaders {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}
