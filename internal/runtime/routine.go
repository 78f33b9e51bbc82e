package runtime

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/amogorkon/pipeduct/internal/ctxlog"
	"github.com/amogorkon/pipeduct/internal/sig"
	"github.com/amogorkon/pipeduct/internal/syntax"
)

// Routine is a compiled routine: declared parameters, a body statement
// list, and a reference to the enclosing scope. The body is mutable until
// the transformer marks it final; thereafter it never changes.
type Routine struct {
	name     string
	fullName string // dotted path including enclosing modules
	params   []sig.Parameter
	defaults map[string]cty.Value
	body     []syntax.Stmt
	env      *Scope
	ev       *Evaluator

	transformed bool
}

// ParamsFromDecls converts parsed parameter declarations into descriptors
// plus their default values, evaluating default expressions in the given
// scope. Default expressions are restricted to what the evaluator can
// resolve at compile time.
func ParamsFromDecls(ctx context.Context, ev *Evaluator, env *Scope, decls []syntax.ParamDecl) ([]sig.Parameter, map[string]cty.Value, error) {
	params := make([]sig.Parameter, 0, len(decls))
	defaults := make(map[string]cty.Value)
	for _, d := range decls {
		p := sig.Parameter{
			Name:   d.Name,
			Marker: d.Marker,
			Type:   sig.MarkerType(d.Marker),
		}
		switch {
		case d.VariadicPos:
			p.Kind = sig.VariadicPositional
		case d.VariadicKW:
			p.Kind = sig.VariadicKeyword
		case d.KeywordOnly:
			p.Kind = sig.KeywordOnly
		case d.PositionalOnly:
			p.Kind = sig.Positional
		default:
			p.Kind = sig.PositionalOrKeyword
		}
		if d.Default != nil {
			v, err := ev.Eval(ctx, env, d.Default)
			if err != nil {
				return nil, nil, fmt.Errorf("default for parameter %q: %w", d.Name, err)
			}
			p.HasDefault = true
			defaults[d.Name] = v
		}
		params = append(params, p)
	}
	return params, defaults, nil
}

// NewRoutine compiles a routine from its declaration parts. fullName is
// the dotted path used as the routine's stable identity.
func NewRoutine(ctx context.Context, name, fullName string, decls []syntax.ParamDecl, body []syntax.Stmt, env *Scope, ev *Evaluator) (*Routine, error) {
	params, defaults, err := ParamsFromDecls(ctx, ev, env, decls)
	if err != nil {
		return nil, fmt.Errorf("routine %s: %w", fullName, err)
	}
	return &Routine{
		name:     name,
		fullName: fullName,
		params:   params,
		defaults: defaults,
		body:     body,
		env:      env,
		ev:       ev,
	}, nil
}

func (r *Routine) Name() string     { return r.name }
func (r *Routine) FullName() string { return r.fullName }

// CallableID implements sig.Identified.
func (r *Routine) CallableID() string { return "routine:" + r.fullName }

// DescribeParams implements sig.Describer.
func (r *Routine) DescribeParams() []sig.Parameter { return r.params }

// ParamNames returns the declared parameter names in order.
func (r *Routine) ParamNames() []string {
	names := make([]string, len(r.params))
	for i, p := range r.params {
		names[i] = p.Name
	}
	return names
}

// Body returns the current body statement list.
func (r *Routine) Body() []syntax.Stmt { return r.body }

// ReplaceBody installs the transformed body. It may be called once; the
// transformed body is immutable thereafter.
func (r *Routine) ReplaceBody(stmts []syntax.Stmt) error {
	if r.transformed {
		return fmt.Errorf("routine %s: body already transformed", r.fullName)
	}
	r.body = stmts
	r.transformed = true
	return nil
}

// Transformed reports whether the body has been finalized.
func (r *Routine) Transformed() bool { return r.transformed }

// Call binds arguments into a fresh scope enclosed by the routine's
// defining scope and evaluates the body.
func (r *Routine) Call(ctx context.Context, args Arguments) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking routine.", "routine", r.fullName)

	bound, err := Bind(r.fullName, r.params, staticDefault(r.defaults), args)
	if err != nil {
		return cty.NilVal, err
	}
	frame := r.env.Child()
	for name, v := range bound {
		frame.Define(name, v)
	}
	out, err := r.ev.EvalStmts(ctx, frame, r.body)
	if err != nil {
		return cty.NilVal, fmt.Errorf("routine %s: %w", r.fullName, err)
	}
	return out, nil
}

// Module is an aggregate of routines and nested modules. A module may
// extend a base module: lookups fall through to the base, but base
// routines belong to the base and are never re-transformed through the
// derived module.
type Module struct {
	name     string
	fullName string
	extends  string

	routines []*Routine
	children []*Module
	byName   map[string]any // *Routine or *Module
	base     *Module
}

// NewModule creates an empty aggregate. extends is the declared base
// module name, resolved later via SetBase.
func NewModule(name, fullName, extends string) *Module {
	return &Module{
		name:     name,
		fullName: fullName,
		extends:  extends,
		byName:   make(map[string]any),
	}
}

func (m *Module) Name() string     { return m.name }
func (m *Module) FullName() string { return m.fullName }
func (m *Module) Extends() string  { return m.extends }
func (m *Module) Base() *Module    { return m.base }

// SetBase links the resolved base module.
func (m *Module) SetBase(base *Module) { m.base = base }

// AddRoutine attaches a routine declared directly on this module.
func (m *Module) AddRoutine(r *Routine) error {
	if _, exists := m.byName[r.Name()]; exists {
		return fmt.Errorf("module %s: duplicate member %q", m.fullName, r.Name())
	}
	m.routines = append(m.routines, r)
	m.byName[r.Name()] = r
	return nil
}

// AddChild attaches a nested module.
func (m *Module) AddChild(child *Module) error {
	if _, exists := m.byName[child.Name()]; exists {
		return fmt.Errorf("module %s: duplicate member %q", m.fullName, child.Name())
	}
	m.children = append(m.children, child)
	m.byName[child.Name()] = child
	return nil
}

// Routines returns the routines declared directly on this module, in
// declaration order.
func (m *Module) Routines() []*Routine { return m.routines }

// Children returns the nested modules in declaration order.
func (m *Module) Children() []*Module { return m.children }

// Lookup resolves a member name on this module, falling through to the
// base module chain for inherited routines.
func (m *Module) Lookup(name string) (any, bool) {
	if member, ok := m.byName[name]; ok {
		return member, true
	}
	if m.base != nil {
		return m.base.Lookup(name)
	}
	return nil, false
}
