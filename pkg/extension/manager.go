package extension

import (
	"fmt"
	"sort"
	"sync"
)

// Manager is the per-artifact registry of extension models. Registration is
// keyed by model name; the order in which models are registered is not
// observable through any accessor.
type Manager struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewManager creates an empty extension manager.
func NewManager() *Manager {
	return &Manager{
		models: make(map[string]*Model),
	}
}

// RegisterExtension registers a model with the manager.
func (m *Manager) RegisterExtension(model *Model) error {
	if model == nil {
		return fmt.Errorf("cannot register nil extension model")
	}
	if model.Name == "" {
		return fmt.Errorf("extension model name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.models[model.Name]; exists {
		return fmt.Errorf("extension %s already registered", model.Name)
	}

	m.models[model.Name] = model
	return nil
}

// Extension returns the registered model with the given name, if any.
func (m *Manager) Extension(name string) (*Model, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	model, exists := m.models[name]
	return model, exists
}

// Extensions returns all registered models sorted by name.
func (m *Manager) Extensions() []*Model {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.models))
	for name := range m.models {
		names = append(names, name)
	}
	sort.Strings(names)

	models := make([]*Model, 0, len(names))
	for _, name := range names {
		models = append(models, m.models[name])
	}

	return models
}

// Count returns the number of registered models.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.models)
}
