package runtime

import (
	"context"
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/amogorkon/pipeduct/internal/sig"
)

// Arguments carries evaluated call arguments: positionals in order plus
// keywords by name.
type Arguments struct {
	Positional []cty.Value
	Keyword    map[string]cty.Value
}

// Callable is anything a pipe stage can invoke.
type Callable interface {
	Name() string
	Call(ctx context.Context, args Arguments) (cty.Value, error)
}

// Resolver resolves global names at both transform time (signature
// introspection) and call time (name evaluation). The registry implements
// it; keeping it an interface lets the evaluator stay free of the
// registry package.
type Resolver interface {
	// ResolveCallable resolves a possibly dotted path to a callable.
	ResolveCallable(path string) (Callable, bool)
	// IsNamespace reports whether the path names a module namespace
	// rather than a callable.
	IsNamespace(path string) bool
}

// callableBox wraps a Callable for encapsulation in a cty capsule value,
// which is how callables travel through scopes as first-class values.
type callableBox struct {
	c Callable
}

// CapsuleType is the cty capsule type holding a Callable.
var CapsuleType = cty.Capsule("callable", reflect.TypeOf(callableBox{}))

// CallableVal wraps a callable as a cty value.
func CallableVal(c Callable) cty.Value {
	return cty.CapsuleVal(CapsuleType, &callableBox{c: c})
}

// AsCallable unwraps a capsule value back into a Callable.
func AsCallable(v cty.Value) (Callable, bool) {
	if v.IsNull() || !v.Type().Equals(CapsuleType) {
		return nil, false
	}
	return v.EncapsulatedValue().(*callableBox).c, true
}

// Bind matches arguments against an ordered parameter list, honoring
// parameter kinds and defaults. defaultOf supplies the default value for
// a parameter name at call time. The result maps every parameter name to
// its bound value; variadic positional parameters collect into a tuple,
// variadic keyword parameters into an object.
func Bind(callee string, params []sig.Parameter, defaultOf func(string) (cty.Value, error), args Arguments) (map[string]cty.Value, error) {
	bound := make(map[string]cty.Value, len(params))
	positional := args.Positional
	keywords := make(map[string]cty.Value, len(args.Keyword))
	for k, v := range args.Keyword {
		keywords[k] = v
	}

	var missing []string
	for _, p := range params {
		switch p.Kind {
		case sig.VariadicPositional:
			elems := make([]cty.Value, len(positional))
			copy(elems, positional)
			positional = nil
			bound[p.Name] = cty.TupleVal(elems)
			continue
		case sig.VariadicKeyword:
			rest := make(map[string]cty.Value, len(keywords))
			for k, v := range keywords {
				rest[k] = v
			}
			keywords = map[string]cty.Value{}
			if len(rest) == 0 {
				bound[p.Name] = cty.EmptyObjectVal
			} else {
				bound[p.Name] = cty.ObjectVal(rest)
			}
			continue
		}

		if kv, ok := keywords[p.Name]; ok {
			if p.Kind == sig.Positional {
				return nil, &ArityError{Callee: callee, BadKeyword: p.Name}
			}
			bound[p.Name] = kv
			delete(keywords, p.Name)
			continue
		}
		if p.Kind != sig.KeywordOnly && len(positional) > 0 {
			bound[p.Name] = positional[0]
			positional = positional[1:]
			continue
		}
		if p.HasDefault {
			v, err := defaultOf(p.Name)
			if err != nil {
				return nil, fmt.Errorf("%s: default for %q: %w", callee, p.Name, err)
			}
			bound[p.Name] = v
			continue
		}
		missing = append(missing, p.Name)
	}

	if len(missing) > 0 {
		return nil, &ArityError{Callee: callee, Missing: missing}
	}
	if len(positional) > 0 {
		return nil, &ArityError{Callee: callee, Extra: len(positional)}
	}
	for k := range keywords {
		return nil, &ArityError{Callee: callee, BadKeyword: k}
	}
	return bound, nil
}

// staticDefault adapts a precomputed default map into Bind's callback.
func staticDefault(defaults map[string]cty.Value) func(string) (cty.Value, error) {
	return func(name string) (cty.Value, error) {
		v, ok := defaults[name]
		if !ok {
			return cty.NilVal, fmt.Errorf("no default recorded for %q", name)
		}
		return v, nil
	}
}

// NativeFunc is a Go-implemented callable with a full declared signature,
// so the introspector can describe it and the binder can enforce kinds
// and defaults.
type NativeFunc struct {
	name     string
	params   []sig.Parameter
	defaults map[string]cty.Value
	impl     func(ctx context.Context, bound map[string]cty.Value) (cty.Value, error)
}

// NewNative builds a described native callable. Parameters with defaults
// must have a matching entry in defaults.
func NewNative(name string, params []sig.Parameter, defaults map[string]cty.Value, impl func(context.Context, map[string]cty.Value) (cty.Value, error)) *NativeFunc {
	return &NativeFunc{name: name, params: params, defaults: defaults, impl: impl}
}

func (f *NativeFunc) Name() string { return f.name }

// CallableID implements sig.Identified.
func (f *NativeFunc) CallableID() string { return "native:" + f.name }

// DescribeParams implements sig.Describer.
func (f *NativeFunc) DescribeParams() []sig.Parameter { return f.params }

func (f *NativeFunc) Call(ctx context.Context, args Arguments) (cty.Value, error) {
	bound, err := Bind(f.name, f.params, staticDefault(f.defaults), args)
	if err != nil {
		return cty.NilVal, err
	}
	return f.impl(ctx, bound)
}

// OpaqueFunc is a callable with no inspectable signature. The placement
// resolver falls back to pass-as-one for these.
type OpaqueFunc struct {
	name string
	impl func(ctx context.Context, args []cty.Value) (cty.Value, error)
}

// NewOpaque builds an uninspectable positional callable.
func NewOpaque(name string, impl func(context.Context, []cty.Value) (cty.Value, error)) *OpaqueFunc {
	return &OpaqueFunc{name: name, impl: impl}
}

func (f *OpaqueFunc) Name() string { return f.name }

func (f *OpaqueFunc) Call(ctx context.Context, args Arguments) (cty.Value, error) {
	if len(args.Keyword) > 0 {
		for k := range args.Keyword {
			return cty.NilVal, &ArityError{Callee: f.name, BadKeyword: k}
		}
	}
	return f.impl(ctx, args.Positional)
}

// CtyFunc adapts a cty stdlib function. Its signature is derived from the
// function spec: fixed parameters are positional-only and the variadic
// parameter, if any, absorbs the rest.
type CtyFunc struct {
	name string
	fn   function.Function
}

// NewCtyFunc wraps a cty function under the given name.
func NewCtyFunc(name string, fn function.Function) *CtyFunc {
	return &CtyFunc{name: name, fn: fn}
}

func (f *CtyFunc) Name() string { return f.name }

// CallableID implements sig.Identified.
func (f *CtyFunc) CallableID() string { return "builtin:" + f.name }

// CtyFunction exposes the underlying spec to the introspector.
func (f *CtyFunc) CtyFunction() function.Function { return f.fn }

func (f *CtyFunc) Call(ctx context.Context, args Arguments) (cty.Value, error) {
	if len(args.Keyword) > 0 {
		for k := range args.Keyword {
			return cty.NilVal, &ArityError{Callee: f.name, BadKeyword: k}
		}
	}
	// Check arity up front so callers see our error kinds instead of
	// cty's generic call errors.
	fixed := len(f.fn.Params())
	if len(args.Positional) < fixed {
		var missing []string
		for _, p := range f.fn.Params()[len(args.Positional):] {
			missing = append(missing, p.Name)
		}
		return cty.NilVal, &ArityError{Callee: f.name, Missing: missing}
	}
	if len(args.Positional) > fixed && f.fn.VarParam() == nil {
		return cty.NilVal, &ArityError{Callee: f.name, Extra: len(args.Positional) - fixed}
	}
	out, err := f.fn.Call(args.Positional)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%s: %w", f.name, err)
	}
	return out, nil
}
