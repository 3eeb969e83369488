package ai

import (
	"sort"
	"sync"
)

// ProviderFactory builds provider instances for one provider type.
type ProviderFactory interface {
	// Create builds a provider from the given config.
	Create(config *ProviderConfig) (Provider, error)

	// Type returns the provider type this factory builds.
	Type() string

	// ValidateConfig rejects configs the factory cannot build from.
	ValidateConfig(config *ProviderConfig) error

	// DefaultConfig returns a usable baseline configuration.
	DefaultConfig() *ProviderConfig
}

// Registry resolves provider names to live provider instances.
// Factories are registered once at startup; instances are built on
// demand and cached per name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
	instances map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
		instances: make(map[string]Provider),
	}
}

// Register adds a factory under the given name. Registering the same
// name twice is a configuration error.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.factories[name]; dup {
		return &ProviderError{
			Type:     ErrTypeRegistration,
			Message:  "provider already registered",
			Provider: name,
		}
	}
	r.factories[name] = factory
	return nil
}

// Get returns the cached instance for name, building one from the
// factory's default config if none exists yet.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	instance, ok := r.instances[name]
	factory := r.factories[name]
	r.mu.RUnlock()

	if ok {
		return instance, nil
	}
	if factory == nil {
		return nil, errUnknownProvider(name)
	}
	return r.GetWithConfig(name, factory.DefaultConfig())
}

// GetWithConfig builds a provider for name with an explicit config,
// replacing any cached instance.
func (r *Registry) GetWithConfig(name string, config *ProviderConfig) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	factory := r.factories[name]
	if factory == nil {
		return nil, errUnknownProvider(name)
	}
	if err := factory.ValidateConfig(config); err != nil {
		return nil, err
	}

	provider, err := factory.Create(config)
	if err != nil {
		return nil, err
	}
	r.instances[name] = provider
	return provider, nil
}

// List returns the registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close shuts down every cached instance. The first error is kept,
// remaining instances are still closed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, instance := range r.instances {
		if err := instance.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.instances, name)
	}
	return firstErr
}

func errUnknownProvider(name string) error {
	return &ProviderError{
		Type:     ErrTypeNotFound,
		Message:  "provider not registered",
		Provider: name,
	}
}

var globalRegistry = NewRegistry()

// GlobalRegistry returns the process-wide provider registry.
func GlobalRegistry() *Registry {
	return globalRegistry
}

// RegisterProvider registers a factory in the global registry.
func RegisterProvider(name string, factory ProviderFactory) error {
	return globalRegistry.Register(name, factory)
}
