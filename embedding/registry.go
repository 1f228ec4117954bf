package embedding

import (
	"fmt"
	"sync"
)

// Registry maps function names to builders so that collections can rebuild
// their embedding function from persisted metadata. A zero Registry is not
// usable; construct one with NewRegistry.
type Registry struct {
	mu          sync.RWMutex
	builders    map[string]Builder
	defaultName string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// Register adds a builder under the given name. Registering the same name
// twice returns ErrAlreadyRegistered.
func (r *Registry) Register(name string, builder Builder) error {
	if name == "" || builder == nil {
		return fmt.Errorf("embedding: registration requires a name and a builder")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.builders[name] = builder
	return nil
}

// SetDefault marks a registered name as the function used by collections
// created without an explicit embedding function.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	r.defaultName = name
	return nil
}

// Default builds the default function, or returns nil when no default has
// been set. A nil Function means the caller must supply vectors directly.
func (r *Registry) Default() (Function, error) {
	r.mu.RLock()
	name := r.defaultName
	r.mu.RUnlock()

	if name == "" {
		return nil, nil
	}
	return r.Build(name, nil)
}

// Build constructs the named function from its persisted configuration.
func (r *Registry) Build(name string, config map[string]any) (Function, error) {
	r.mu.RLock()
	builder, exists := r.builders[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return builder(config)
}

// Names lists the registered function names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry is the process-wide registry. The shipped providers
// register themselves here.
var DefaultRegistry = NewRegistry()
