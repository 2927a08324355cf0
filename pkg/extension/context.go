package extension

import (
	"sort"
)

// ResolutionContext is an immutable snapshot of the extension models resolved
// so far within one artifact. A fresh context is built after every
// accumulation step, so the loader for plugin k observes exactly the models
// of plugins 1..k-1 and never its own or later ones.
type ResolutionContext struct {
	models map[string]*Model
	names  []string
}

// NewResolutionContext builds a context from the accumulated models.
// The result depends only on set membership, never on accumulation order:
// two calls with the same models in any order yield equivalent contexts.
// When two models carry the same name the earliest one wins.
func NewResolutionContext(models []*Model) *ResolutionContext {
	byName := make(map[string]*Model, len(models))
	for _, m := range models {
		if m == nil || m.Name == "" {
			continue
		}
		if _, exists := byName[m.Name]; exists {
			continue
		}
		byName[m.Name] = m
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	return &ResolutionContext{
		models: byName,
		names:  names,
	}
}

// Model returns the resolved model with the given name, if present.
func (c *ResolutionContext) Model(name string) (*Model, bool) {
	m, exists := c.models[name]
	return m, exists
}

// Names returns the names of all resolved models in sorted order.
func (c *ResolutionContext) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Models returns the resolved models sorted by name.
func (c *ResolutionContext) Models() []*Model {
	models := make([]*Model, 0, len(c.names))
	for _, name := range c.names {
		models = append(models, c.models[name])
	}
	return models
}

// Len returns the number of resolved models in the snapshot.
func (c *ResolutionContext) Len() int {
	return len(c.names)
}
