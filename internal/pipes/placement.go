package pipes

import (
	"github.com/amogorkon/pipeduct/internal/config"
	"github.com/amogorkon/pipeduct/internal/runtime"
	"github.com/amogorkon/pipeduct/internal/sig"
	"github.com/amogorkon/pipeduct/internal/syntax"
)

// Resolver merges an incoming value expression into the next stage's call,
// deciding between placeholder-directed placement, unpacking a statically
// tuple-shaped value, and passing the value as one argument. Stages whose
// callee cannot be introspected fall back to pass-as-one.
type Resolver struct {
	intro   *sig.Introspector
	policy  config.UnpackPolicy
	globals runtime.Resolver
}

// NewResolver creates a placement resolver. globals is consulted to
// introspect named callees; names it cannot resolve are treated as
// uninspectable.
func NewResolver(intro *sig.Introspector, policy config.UnpackPolicy, globals runtime.Resolver) *Resolver {
	return &Resolver{intro: intro, policy: policy, globals: globals}
}

// shape is the static classification of an incoming value expression.
type shape int

const (
	shapeSingle shape = iota
	shapeTuple
	shapeList
	shapeUnknown
)

// callForm is a stage decomposed into callee and supplied arguments. A
// bare callable reference or lambda literal is a call with no arguments.
type callForm struct {
	fn   syntax.Expr
	args []syntax.Arg
	pos  syntax.Pos
}

func splitStage(e syntax.Expr) callForm {
	if call, ok := e.(*syntax.CallExpr); ok {
		return callForm{fn: call.Fn, args: call.Args, pos: call.SrcPos}
	}
	return callForm{fn: e, pos: e.Pos()}
}

// Resolve produces the call expression for one stage fed by incoming.
//
// Decision order: a placeholder in the argument list directs placement
// verbatim and bypasses all unpacking rules; a stage with exactly one open
// slot takes the value as one argument; a first open parameter declared as
// a general sequence takes it as one argument; a statically tuple-shaped
// value spreads positionally with an arity check; anything else is passed
// as one argument, except that a value of unknown shape feeding a
// multi-slot stage defers the spread decision to call time.
func (r *Resolver) Resolve(incoming syntax.Expr, stage syntax.Expr) (syntax.Expr, error) {
	form := splitStage(stage)

	if syntax.ContainsPlaceholder(form.fn) {
		return nil, errAt(StrayPlaceholder, form.pos, "placeholder cannot be the call target")
	}

	switch countPlaceholders(form.args) {
	case 0:
	case 1:
		args := make([]syntax.Arg, len(form.args))
		for i, a := range form.args {
			args[i] = syntax.Arg{Name: a.Name, Value: substitutePlaceholder(a.Value, incoming)}
		}
		return &syntax.CallExpr{Fn: form.fn, Args: args, SrcPos: form.pos}, nil
	default:
		return nil, errAt(MultiplePlaceholders, form.pos, "at most one placeholder is allowed per stage")
	}

	params, known := r.describeCallee(form.fn)
	if !known {
		return passAsOne(form, incoming), nil
	}

	posCount, kwNames := suppliedArgs(form.args)
	open, hasVarPos := openSlots(params, posCount, kwNames)

	if len(open) == 1 && !hasVarPos {
		return passAsOne(form, incoming), nil
	}
	if len(open) > 0 && open[0].Sequence {
		return passAsOne(form, incoming), nil
	}

	switch classifyShape(incoming, r.policy) {
	case shapeTuple:
		elems := staticElems(incoming)
		if err := checkUnpackArity(form, open, hasVarPos, len(elems)); err != nil {
			return nil, err
		}
		return spreadStatic(form, elems), nil
	case shapeUnknown:
		return &syntax.DispatchCall{
			Fn:       form.fn,
			Args:     form.args,
			Incoming: incoming,
			Insert:   posCount,
			SrcPos:   form.pos,
		}, nil
	default:
		return passAsOne(form, incoming), nil
	}
}

func (r *Resolver) describeCallee(fn syntax.Expr) ([]sig.Parameter, bool) {
	if lambda, ok := fn.(*syntax.LambdaExpr); ok {
		return r.intro.Classify(runtime.LambdaParams(lambda)), true
	}
	path, ok := pathOf(fn)
	if !ok {
		return nil, false
	}
	callee, ok := r.globals.ResolveCallable(path)
	if !ok {
		return nil, false
	}
	params, err := r.intro.Describe(callee)
	if err != nil {
		// Covers sig.ErrOpaque and anything else uninspectable.
		return nil, false
	}
	return params, true
}

func pathOf(e syntax.Expr) (string, bool) {
	switch n := e.(type) {
	case *syntax.Name:
		return n.Ident, true
	case *syntax.Attr:
		base, ok := pathOf(n.X)
		if !ok {
			return "", false
		}
		return base + "." + n.Name, true
	}
	return "", false
}

func countPlaceholders(args []syntax.Arg) int {
	count := 0
	for _, a := range args {
		syntax.Walk(a.Value, func(e syntax.Expr) bool {
			if _, ok := e.(*syntax.Placeholder); ok {
				count++
			}
			return true
		})
	}
	return count
}

func substitutePlaceholder(e syntax.Expr, incoming syntax.Expr) syntax.Expr {
	if _, ok := e.(*syntax.Placeholder); ok {
		return incoming
	}
	return syntax.MapChildren(e, func(c syntax.Expr) syntax.Expr {
		return substitutePlaceholder(c, incoming)
	})
}

// suppliedArgs counts the positional arguments already supplied by the
// stage and collects the supplied keyword names.
func suppliedArgs(args []syntax.Arg) (int, map[string]bool) {
	posCount := 0
	kwNames := make(map[string]bool)
	for _, a := range args {
		if a.Name == "" {
			posCount++
		} else {
			kwNames[a.Name] = true
		}
	}
	return posCount, kwNames
}

// openSlots returns the positionally fillable parameters still unfilled
// after the stage's own arguments, and whether a variadic-positional
// parameter absorbs any overflow.
func openSlots(params []sig.Parameter, posCount int, kwNames map[string]bool) ([]sig.Parameter, bool) {
	var fixed []sig.Parameter
	hasVarPos := false
	for _, p := range params {
		switch p.Kind {
		case sig.Positional, sig.PositionalOrKeyword:
			fixed = append(fixed, p)
		case sig.VariadicPositional:
			hasVarPos = true
		}
	}
	if posCount > len(fixed) {
		fixed = nil
	} else {
		fixed = fixed[posCount:]
	}
	var open []sig.Parameter
	for _, p := range fixed {
		if !kwNames[p.Name] {
			open = append(open, p)
		}
	}
	return open, hasVarPos
}

// classifyShape decides, statically, whether the incoming expression is
// tuple-like, some other known shape, or only decidable at call time.
// Under the annotation policy a list literal spreads too: the collection
// kind stops mattering once annotations drive the decision.
func classifyShape(e syntax.Expr, policy config.UnpackPolicy) shape {
	switch n := e.(type) {
	case *syntax.TupleExpr:
		return shapeTuple
	case *syntax.ListExpr:
		if policy == config.PolicyAnnotation {
			return shapeTuple
		}
		return shapeList
	case *syntax.Literal, *syntax.LambdaExpr:
		return shapeSingle
	case *syntax.UnaryExpr:
		return shapeSingle
	case *syntax.BinaryExpr:
		return shapeSingle
	case *syntax.CaptureExpr:
		return classifyShape(n.X, policy)
	default:
		return shapeUnknown
	}
}

func staticElems(e syntax.Expr) []syntax.Expr {
	switch n := e.(type) {
	case *syntax.TupleExpr:
		return n.Elems
	case *syntax.ListExpr:
		return n.Elems
	case *syntax.CaptureExpr:
		return staticElems(n.X)
	}
	return nil
}

// checkUnpackArity validates a static spread against the stage's open
// slots: every open parameter without a default must receive an element,
// and overflow is only legal with a variadic-positional parameter.
// Unpacking is shallow; nested structure inside one element never spreads.
func checkUnpackArity(form callForm, open []sig.Parameter, hasVarPos bool, nElems int) error {
	if nElems > len(open) && !hasVarPos {
		return errAt(ArityMismatch, form.pos,
			"too many arguments: %d values for %d open parameters", nElems, len(open))
	}
	for _, p := range open[min(nElems, len(open)):] {
		if !p.HasDefault {
			return errAt(ArityMismatch, form.pos,
				"missing required argument %q", p.Name)
		}
	}
	return nil
}

// passAsOne binds the whole incoming value to the first unfilled slot,
// which syntactically means inserting it right after the stage's own
// positional arguments.
func passAsOne(form callForm, incoming syntax.Expr) syntax.Expr {
	return spreadStatic(form, []syntax.Expr{incoming})
}

func spreadStatic(form callForm, vals []syntax.Expr) syntax.Expr {
	at := len(form.args)
	for i, a := range form.args {
		if a.Name != "" {
			at = i
			break
		}
	}
	args := make([]syntax.Arg, 0, len(form.args)+len(vals))
	args = append(args, form.args[:at]...)
	for _, v := range vals {
		args = append(args, syntax.Arg{Value: v})
	}
	args = append(args, form.args[at:]...)
	return &syntax.CallExpr{Fn: form.fn, Args: args, SrcPos: form.pos}
}
