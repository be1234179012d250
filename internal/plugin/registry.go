package plugin

import (
	"fmt"
	"sync"
)

// Registry manages plugin factory registration and resolution.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a plugin factory under an identifier.
// Returns an error if the identifier is already taken.
func (r *Registry) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for plugin %s", name)
	}
	if name == "" {
		return fmt.Errorf("plugin identifier must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Resolve instantiates the plugin registered under the identifier.
func (r *Registry) Resolve(name string) (Plugin, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("plugin %s not found", name)
	}
	p, err := factory()
	if err != nil {
		return nil, fmt.Errorf("loading plugin %s: %w", name, err)
	}
	return p, nil
}

// Has checks if a plugin with the given identifier is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// List returns all registered plugin identifiers.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// globalRegistry is the default plugin registry used throughout the application.
var globalRegistry = NewRegistry()

// DefaultRegistry returns the global plugin registry.
func DefaultRegistry() *Registry {
	return globalRegistry
}

// Register adds a plugin factory to the global registry.
func Register(name string, factory Factory) error {
	return globalRegistry.Register(name, factory)
}
