package variable

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrEmptyName is returned when registering under an empty type name.
	ErrEmptyName = errors.New("variable: empty type name")
	// ErrNilFactory is returned when registering a nil factory.
	ErrNilFactory = errors.New("variable: nil factory")
	// ErrConflictingRegistration indicates an attempt to re-register a
	// type name with a different factory.
	ErrConflictingRegistration = errors.New("variable: conflicting type registration")
	// ErrUnknownType is returned when no factory exists for a type name.
	ErrUnknownType = errors.New("variable: unknown type")
)

// Factory constructs a zero-valued instance of a concrete variable type.
// Used for snapshot restoration and serialization dispatch, where only the
// type name is known up front.
type Factory func() Variable

// Registry maps variable type names to factories. Type names must be
// unique; registering the same name twice is a conflict. Safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates a type name with a factory. Returns
// ErrConflictingRegistration if the name is already taken.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return ErrEmptyName
	}
	if f == nil {
		return ErrNilFactory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrConflictingRegistration, name)
	}
	r.factories[name] = f
	return nil
}

// New constructs a zero-valued variable of the named type.
func (r *Registry) New(name string) (Variable, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return f(), nil
}

// Names returns all registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}
