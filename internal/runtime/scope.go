package runtime

import "github.com/zclconf/go-cty/cty"

// Scope is one frame of the explicit lexical scope chain. Every compiled
// body keeps a reference to its enclosing scope, so closures resolve
// names through the chain instead of relying on any ambient re-execution
// context.
type Scope struct {
	parent *Scope
	vars   map[string]cty.Value
}

// NewScope creates a scope frame with the given parent. A nil parent
// makes a root frame.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: make(map[string]cty.Value)}
}

// Define binds a name in this frame, shadowing any outer binding of the
// same name.
func (s *Scope) Define(name string, v cty.Value) {
	s.vars[name] = v
}

// Lookup resolves a name through the chain, innermost first.
func (s *Scope) Lookup(name string) (cty.Value, bool) {
	for frame := s; frame != nil; frame = frame.parent {
		if v, ok := frame.vars[name]; ok {
			return v, true
		}
	}
	return cty.NilVal, false
}

// Child creates a frame enclosed by this one.
func (s *Scope) Child() *Scope {
	return NewScope(s)
}
