package runtime

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/amogorkon/pipeduct/internal/syntax"
)

// Evaluator walks transformed trees and produces cty values. It is
// stateless apart from the global resolver, so one evaluator serves every
// routine of an app instance.
type Evaluator struct {
	Globals Resolver
}

// NewEvaluator creates an evaluator over the given global resolver.
func NewEvaluator(globals Resolver) *Evaluator {
	return &Evaluator{Globals: globals}
}

// EvalStmts evaluates a body statement list in the given scope. The value
// of the last executed statement is the result unless an explicit return
// runs first.
func (ev *Evaluator) EvalStmts(ctx context.Context, sc *Scope, stmts []syntax.Stmt) (cty.Value, error) {
	last := cty.NullVal(cty.DynamicPseudoType)
	for _, s := range stmts {
		switch n := s.(type) {
		case *syntax.AssignStmt:
			v, err := ev.Eval(ctx, sc, n.X)
			if err != nil {
				return cty.NilVal, err
			}
			sc.Define(n.Name, v)
			last = v
		case *syntax.ReturnStmt:
			return ev.Eval(ctx, sc, n.X)
		case *syntax.ExprStmt:
			v, err := ev.Eval(ctx, sc, n.X)
			if err != nil {
				return cty.NilVal, err
			}
			last = v
		default:
			return cty.NilVal, fmt.Errorf("unsupported statement %T", s)
		}
	}
	return last, nil
}

// Eval evaluates one expression.
func (ev *Evaluator) Eval(ctx context.Context, sc *Scope, e syntax.Expr) (cty.Value, error) {
	switch n := e.(type) {
	case *syntax.Literal:
		return n.Value, nil

	case *syntax.Name:
		return ev.evalName(sc, n)

	case *syntax.Attr:
		return ev.evalAttr(n)

	case *syntax.Placeholder:
		return cty.NilVal, fmt.Errorf("placeholder '_' outside a pipe stage at %s", n.SrcPos)

	case *syntax.TupleExpr:
		elems := make([]cty.Value, len(n.Elems))
		for i, elem := range n.Elems {
			v, err := ev.Eval(ctx, sc, elem)
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = v
		}
		return cty.TupleVal(elems), nil

	case *syntax.ListExpr:
		return ev.evalList(ctx, sc, n)

	case *syntax.CallExpr:
		return ev.evalCall(ctx, sc, n)

	case *syntax.DispatchCall:
		return ev.evalDispatch(ctx, sc, n)

	case *syntax.BinaryExpr:
		return ev.evalBinary(ctx, sc, n)

	case *syntax.UnaryExpr:
		return ev.evalUnary(ctx, sc, n)

	case *syntax.CondExpr:
		return ev.evalCond(ctx, sc, n)

	case *syntax.LambdaExpr:
		closure, err := NewClosure(n, sc, ev)
		if err != nil {
			return cty.NilVal, err
		}
		return CallableVal(closure), nil

	case *syntax.CaptureExpr:
		v, err := ev.Eval(ctx, sc, n.X)
		if err != nil {
			return cty.NilVal, err
		}
		sc.Define(n.Name, v)
		return v, nil
	}
	return cty.NilVal, fmt.Errorf("unsupported expression %T", e)
}

func (ev *Evaluator) evalName(sc *Scope, n *syntax.Name) (cty.Value, error) {
	if sc != nil {
		if v, ok := sc.Lookup(n.Ident); ok {
			return v, nil
		}
	}
	if ev.Globals != nil {
		if c, ok := ev.Globals.ResolveCallable(n.Ident); ok {
			return CallableVal(c), nil
		}
	}
	return cty.NilVal, &ScopeError{Name: n.Ident}
}

func (ev *Evaluator) evalAttr(n *syntax.Attr) (cty.Value, error) {
	path, ok := flattenPath(n)
	if !ok {
		return cty.NilVal, fmt.Errorf("unsupported attribute access at %s", n.SrcPos)
	}
	if ev.Globals != nil {
		if c, ok := ev.Globals.ResolveCallable(path); ok {
			return CallableVal(c), nil
		}
	}
	return cty.NilVal, &ScopeError{Name: path}
}

// flattenPath renders a Name/Attr chain as a dotted path.
func flattenPath(e syntax.Expr) (string, bool) {
	switch n := e.(type) {
	case *syntax.Name:
		return n.Ident, true
	case *syntax.Attr:
		prefix, ok := flattenPath(n.X)
		if !ok {
			return "", false
		}
		return prefix + "." + n.Name, true
	}
	return "", false
}

func (ev *Evaluator) evalList(ctx context.Context, sc *Scope, n *syntax.ListExpr) (cty.Value, error) {
	if len(n.Elems) == 0 {
		return cty.ListValEmpty(cty.DynamicPseudoType), nil
	}
	elems := make([]cty.Value, len(n.Elems))
	types := make([]cty.Type, len(n.Elems))
	for i, elem := range n.Elems {
		v, err := ev.Eval(ctx, sc, elem)
		if err != nil {
			return cty.NilVal, err
		}
		elems[i] = v
		types[i] = v.Type()
	}
	unified, convs := convert.UnifyUnsafe(types)
	if unified == cty.NilType {
		return cty.NilVal, fmt.Errorf("list elements have incompatible types at %s", n.SrcPos)
	}
	for i := range elems {
		if convs[i] != nil {
			v, err := convs[i](elems[i])
			if err != nil {
				return cty.NilVal, fmt.Errorf("list element %d: %w", i, err)
			}
			elems[i] = v
		}
	}
	return cty.ListVal(elems), nil
}

// evalCallee resolves the function position of a call to a Callable.
func (ev *Evaluator) evalCallee(ctx context.Context, sc *Scope, fn syntax.Expr) (Callable, error) {
	if lam, ok := fn.(*syntax.LambdaExpr); ok {
		return NewClosure(lam, sc, ev)
	}
	v, err := ev.Eval(ctx, sc, fn)
	if err != nil {
		return nil, err
	}
	c, ok := AsCallable(v)
	if !ok {
		return nil, fmt.Errorf("value of type %s is not callable at %s", v.Type().FriendlyName(), fn.Pos())
	}
	return c, nil
}

func (ev *Evaluator) evalArgs(ctx context.Context, sc *Scope, args []syntax.Arg) (Arguments, error) {
	out := Arguments{Keyword: make(map[string]cty.Value)}
	for _, arg := range args {
		v, err := ev.Eval(ctx, sc, arg.Value)
		if err != nil {
			return Arguments{}, err
		}
		if arg.Name == "" {
			out.Positional = append(out.Positional, v)
		} else {
			out.Keyword[arg.Name] = v
		}
	}
	return out, nil
}

func (ev *Evaluator) evalCall(ctx context.Context, sc *Scope, n *syntax.CallExpr) (cty.Value, error) {
	callee, err := ev.evalCallee(ctx, sc, n.Fn)
	if err != nil {
		return cty.NilVal, err
	}
	args, err := ev.evalArgs(ctx, sc, n.Args)
	if err != nil {
		return cty.NilVal, err
	}
	return callee.Call(ctx, args)
}

// evalDispatch performs the call-time half of the unpacking policy: the
// incoming value's type decides between spreading tuple elements and
// passing the value whole, at the recorded insertion index.
func (ev *Evaluator) evalDispatch(ctx context.Context, sc *Scope, n *syntax.DispatchCall) (cty.Value, error) {
	callee, err := ev.evalCallee(ctx, sc, n.Fn)
	if err != nil {
		return cty.NilVal, err
	}

	in, err := ev.Eval(ctx, sc, n.Incoming)
	if err != nil {
		return cty.NilVal, err
	}
	var incoming []cty.Value
	if in.Type().IsTupleType() {
		it := in.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			incoming = append(incoming, elem)
		}
	} else {
		incoming = []cty.Value{in}
	}

	args, err := ev.evalArgs(ctx, sc, n.Args)
	if err != nil {
		return cty.NilVal, err
	}
	insert := n.Insert
	if insert > len(args.Positional) {
		insert = len(args.Positional)
	}
	merged := make([]cty.Value, 0, len(args.Positional)+len(incoming))
	merged = append(merged, args.Positional[:insert]...)
	merged = append(merged, incoming...)
	merged = append(merged, args.Positional[insert:]...)
	args.Positional = merged
	return callee.Call(ctx, args)
}

// binaryOps maps language operators onto the hclsyntax operation
// implementations, so arithmetic and comparison semantics match HCL.
var binaryOps = map[syntax.Op]*hclsyntax.Operation{
	syntax.OpEq:  hclsyntax.OpEqual,
	syntax.OpNe:  hclsyntax.OpNotEqual,
	syntax.OpLt:  hclsyntax.OpLessThan,
	syntax.OpLe:  hclsyntax.OpLessThanOrEqual,
	syntax.OpGt:  hclsyntax.OpGreaterThan,
	syntax.OpGe:  hclsyntax.OpGreaterThanOrEqual,
	syntax.OpAdd: hclsyntax.OpAdd,
	syntax.OpSub: hclsyntax.OpSubtract,
	syntax.OpMul: hclsyntax.OpMultiply,
	syntax.OpDiv: hclsyntax.OpDivide,
	syntax.OpMod: hclsyntax.OpModulo,
}

func (ev *Evaluator) evalBinary(ctx context.Context, sc *Scope, n *syntax.BinaryExpr) (cty.Value, error) {
	switch n.Op {
	case syntax.OpPipe:
		return cty.NilVal, fmt.Errorf("untransformed pipe operator at %s", n.SrcPos)

	case syntax.OpAnd, syntax.OpOr:
		lhs, err := ev.Eval(ctx, sc, n.LHS)
		if err != nil {
			return cty.NilVal, err
		}
		b, err := boolOf(lhs, n.LHS.Pos())
		if err != nil {
			return cty.NilVal, err
		}
		// Short-circuit; the RHS is not evaluated when the LHS decides.
		if n.Op == syntax.OpAnd && !b {
			return cty.False, nil
		}
		if n.Op == syntax.OpOr && b {
			return cty.True, nil
		}
		rhs, err := ev.Eval(ctx, sc, n.RHS)
		if err != nil {
			return cty.NilVal, err
		}
		rb, err := boolOf(rhs, n.RHS.Pos())
		if err != nil {
			return cty.NilVal, err
		}
		return cty.BoolVal(rb), nil

	case syntax.OpPow:
		lhs, err := ev.Eval(ctx, sc, n.LHS)
		if err != nil {
			return cty.NilVal, err
		}
		rhs, err := ev.Eval(ctx, sc, n.RHS)
		if err != nil {
			return cty.NilVal, err
		}
		out, err := stdlib.Pow(lhs, rhs)
		if err != nil {
			return cty.NilVal, fmt.Errorf("operator '^' at %s: %w", n.SrcPos, err)
		}
		return out, nil
	}

	op, ok := binaryOps[n.Op]
	if !ok {
		return cty.NilVal, fmt.Errorf("unsupported operator %q at %s", n.Op, n.SrcPos)
	}
	lhs, err := ev.Eval(ctx, sc, n.LHS)
	if err != nil {
		return cty.NilVal, err
	}
	rhs, err := ev.Eval(ctx, sc, n.RHS)
	if err != nil {
		return cty.NilVal, err
	}
	out, err := op.Impl.Call([]cty.Value{lhs, rhs})
	if err != nil {
		return cty.NilVal, fmt.Errorf("operator %q at %s: %w", n.Op, n.SrcPos, err)
	}
	return out, nil
}

func (ev *Evaluator) evalUnary(ctx context.Context, sc *Scope, n *syntax.UnaryExpr) (cty.Value, error) {
	x, err := ev.Eval(ctx, sc, n.X)
	if err != nil {
		return cty.NilVal, err
	}
	op := hclsyntax.OpNegate
	if n.Op == syntax.OpNot {
		op = hclsyntax.OpLogicalNot
	}
	out, err := op.Impl.Call([]cty.Value{x})
	if err != nil {
		return cty.NilVal, fmt.Errorf("operator %q at %s: %w", n.Op, n.SrcPos, err)
	}
	return out, nil
}

func (ev *Evaluator) evalCond(ctx context.Context, sc *Scope, n *syntax.CondExpr) (cty.Value, error) {
	cond, err := ev.Eval(ctx, sc, n.Cond)
	if err != nil {
		return cty.NilVal, err
	}
	b, err := boolOf(cond, n.Cond.Pos())
	if err != nil {
		return cty.NilVal, err
	}
	if b {
		return ev.Eval(ctx, sc, n.Then)
	}
	return ev.Eval(ctx, sc, n.Else)
}

func boolOf(v cty.Value, pos syntax.Pos) (bool, error) {
	if v.IsNull() || !v.Type().Equals(cty.Bool) {
		return false, fmt.Errorf("condition at %s is not a boolean", pos)
	}
	return v.True(), nil
}
