package providers

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrProviderNotFound is returned when a backend is not registered
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderAlreadyRegistered is returned when trying to register a duplicate backend
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// Registry tracks the backends wired into the gateway for status and readiness reporting.
// Routing itself does not go through the registry.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates a new backend registry
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
	}
}

// Register registers a backend instance
func (r *Registry) Register(backend Backend) error {
	if backend == nil {
		return errors.New("backend cannot be nil")
	}

	name := backend.Name()
	if name == "" {
		return errors.New("backend name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return ErrProviderAlreadyRegistered
	}

	r.backends[name] = backend
	return nil
}

// Get retrieves a backend by name
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backend, exists := r.backends[name]
	if !exists {
		return nil, ErrProviderNotFound
	}
	return backend, nil
}

// List returns all registered backend names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered backends
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.backends)
}

// Availability checks every backend and returns name -> available.
// Checks run sequentially under the caller's context.
func (r *Registry) Availability(ctx context.Context) map[string]bool {
	r.mu.RLock()
	snapshot := make(map[string]Backend, len(r.backends))
	for name, b := range r.backends {
		snapshot[name] = b
	}
	r.mu.RUnlock()

	result := make(map[string]bool, len(snapshot))
	for name, b := range snapshot {
		result[name] = b.IsAvailable(ctx)
	}
	return result
}
