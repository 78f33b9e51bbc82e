package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/amogorkon/pipeduct/internal/runtime"
)

// Registry holds the named callables and module namespaces of a single
// app instance, plus the at-most-once transformed-routine table. All
// methods are safe for concurrent use; decoration normally happens at
// load time, so contention is negligible.
type Registry struct {
	mu          sync.Mutex
	callables   map[string]runtime.Callable
	modules     map[string]*runtime.Module
	transformed map[string]bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		callables:   make(map[string]runtime.Callable),
		modules:     make(map[string]*runtime.Module),
		transformed: make(map[string]bool),
	}
}

// RegisterCallable inserts a named callable. Re-registering a name is a
// programmer error.
func (r *Registry) RegisterCallable(name string, c runtime.Callable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callables[name]; exists {
		return fmt.Errorf("callable %q already registered", name)
	}
	r.callables[name] = c
	return nil
}

// RegisterBuiltins inserts the whole standard callable set.
func (r *Registry) RegisterBuiltins() error {
	for _, c := range runtime.Builtins() {
		if err := r.RegisterCallable(c.Name(), c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterModule inserts a top-level module namespace.
func (r *Registry) RegisterModule(m *runtime.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[m.Name()]; exists {
		return fmt.Errorf("module %q already registered", m.Name())
	}
	if _, exists := r.callables[m.Name()]; exists {
		return fmt.Errorf("module %q collides with a registered callable", m.Name())
	}
	r.modules[m.Name()] = m
	return nil
}

// Module returns a registered top-level module.
func (r *Registry) Module(name string) (*runtime.Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[name]
	return m, ok
}

// ResolveCallable implements runtime.Resolver. Dotted paths traverse
// module namespaces, with inherited routines found through each module's
// base chain.
func (r *Registry) ResolveCallable(path string) (runtime.Callable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.callables[path]; ok {
		return c, true
	}

	parts := strings.Split(path, ".")
	m, ok := r.modules[parts[0]]
	if !ok || len(parts) == 1 {
		return nil, false
	}
	for _, part := range parts[1 : len(parts)-1] {
		member, ok := m.Lookup(part)
		if !ok {
			return nil, false
		}
		m, ok = member.(*runtime.Module)
		if !ok {
			return nil, false
		}
	}
	member, ok := m.Lookup(parts[len(parts)-1])
	if !ok {
		return nil, false
	}
	c, ok := member.(runtime.Callable)
	return c, ok
}

// IsNamespace implements runtime.Resolver.
func (r *Registry) IsNamespace(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	parts := strings.Split(path, ".")
	m, ok := r.modules[parts[0]]
	if !ok {
		return false
	}
	for _, part := range parts[1:] {
		member, ok := m.Lookup(part)
		if !ok {
			return false
		}
		m, ok = member.(*runtime.Module)
		if !ok {
			return false
		}
	}
	return true
}

// BeginTransform records the intent to transform the routine identified
// by id. It returns false when the routine is already transformed (or a
// transform is in flight), which makes decoration at-most-once even under
// concurrent decoration from multiple goroutines.
func (r *Registry) BeginTransform(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transformed[id] {
		return false
	}
	r.transformed[id] = true
	return true
}

// Transformed reports whether the routine identified by id has been
// transformed.
func (r *Registry) Transformed(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transformed[id]
}
