package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/amogorkon/pipeduct/internal/runtime"
	"github.com/amogorkon/pipeduct/internal/sig"
	"github.com/amogorkon/pipeduct/internal/syntax"
)

// stubResolver exposes a fixed callable table for name resolution.
type stubResolver struct {
	callables map[string]runtime.Callable
}

func (r *stubResolver) ResolveCallable(path string) (runtime.Callable, bool) {
	c, ok := r.callables[path]
	return c, ok
}

func (r *stubResolver) IsNamespace(string) bool { return false }

func doubleFunc() runtime.Callable {
	return runtime.NewNative("double",
		[]sig.Parameter{{Name: "x", Kind: sig.PositionalOrKeyword}}, nil,
		func(_ context.Context, bound map[string]cty.Value) (cty.Value, error) {
			return bound["x"].Multiply(cty.NumberIntVal(2)), nil
		})
}

func subtractFunc() runtime.Callable {
	return runtime.NewNative("subtract",
		[]sig.Parameter{
			{Name: "a", Kind: sig.PositionalOrKeyword},
			{Name: "b", Kind: sig.PositionalOrKeyword},
		}, nil,
		func(_ context.Context, bound map[string]cty.Value) (cty.Value, error) {
			return bound["a"].Subtract(bound["b"]), nil
		})
}

func evalSrc(t *testing.T, ev *runtime.Evaluator, sc *runtime.Scope, src string) (cty.Value, error) {
	t.Helper()
	e, err := syntax.ParseExpression(src)
	require.NoError(t, err)
	return ev.Eval(context.Background(), sc, e)
}

func TestEval_Expressions(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	sc := runtime.NewScope(nil)
	sc.Define("x", num(4))

	cases := []struct {
		src  string
		want cty.Value
	}{
		{"1 + 2 * 3", cty.NumberIntVal(7)},
		{"10 - x", cty.NumberIntVal(6)},
		{"7 % 4", cty.NumberIntVal(3)},
		{"2 ^ 3 ^ 2", cty.NumberIntVal(512)},
		{"-x", cty.NumberIntVal(-4)},
		{"3 > 2", cty.True},
		{"x == 4", cty.True},
		{"x != 4", cty.False},
		{"1 < 2 ? 10 : 20", cty.NumberIntVal(10)},
		{"1 > 2 ? 10 : 20", cty.NumberIntVal(20)},
		{`"a" == "a"`, cty.True},
		{"(1, 2)", cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)})},
		{"[1, 2]", cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)})},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			got, err := evalSrc(t, ev, sc, tc.src)
			require.NoError(t, err)
			require.True(t, tc.want.RawEquals(got), "want %#v, got %#v", tc.want, got)
		})
	}
}

func TestEval_ShortCircuit(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	sc := runtime.NewScope(nil)

	// The right side names nothing resolvable, so it must not run.
	got, err := evalSrc(t, ev, sc, "false && missing")
	require.NoError(t, err)
	require.Equal(t, cty.False, got)

	got, err = evalSrc(t, ev, sc, "true || missing")
	require.NoError(t, err)
	require.Equal(t, cty.True, got)

	_, err = evalSrc(t, ev, sc, "true && missing")
	var scope *runtime.ScopeError
	require.ErrorAs(t, err, &scope)
	require.Equal(t, "missing", scope.Name)
}

func TestEval_UnknownName(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	_, err := evalSrc(t, ev, runtime.NewScope(nil), "nobody")
	var scope *runtime.ScopeError
	require.ErrorAs(t, err, &scope)
	require.Equal(t, "nobody", scope.Name)
}

func TestEval_ScopeShadowing(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	parent := runtime.NewScope(nil)
	parent.Define("x", num(1))
	child := parent.Child()
	child.Define("x", num(2))

	got, err := evalSrc(t, ev, child, "x")
	require.NoError(t, err)
	require.Equal(t, num(2), got)

	got, err = evalSrc(t, ev, parent, "x")
	require.NoError(t, err)
	require.Equal(t, num(1), got)
}

func TestEval_Call(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{callables: map[string]runtime.Callable{
		"double":   doubleFunc(),
		"subtract": subtractFunc(),
	}})
	sc := runtime.NewScope(nil)

	got, err := evalSrc(t, ev, sc, "double(5)")
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(10).RawEquals(got))

	got, err = evalSrc(t, ev, sc, "subtract(b = 3, a = 10)")
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(7).RawEquals(got))
}

func TestEval_CaptureDefines(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	sc := runtime.NewScope(nil)

	got, err := evalSrc(t, ev, sc, "(y := 5) + 1")
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(6).RawEquals(got))

	y, ok := sc.Lookup("y")
	require.True(t, ok)
	require.True(t, cty.NumberIntVal(5).RawEquals(y))
}

func TestEval_LambdaClosure(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	sc := runtime.NewScope(nil)
	sc.Define("base", num(10))

	v, err := evalSrc(t, ev, sc, `\x, k = base -> x + k`)
	require.NoError(t, err)
	fn, ok := runtime.AsCallable(v)
	require.True(t, ok)

	// The default for k is evaluated in the defining scope at call time.
	got, err := fn.Call(context.Background(), runtime.Arguments{Positional: []cty.Value{num(1)}})
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(11).RawEquals(got))

	sc.Define("base", num(100))
	got, err = fn.Call(context.Background(), runtime.Arguments{Positional: []cty.Value{num(1)}})
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(101).RawEquals(got))

	// An explicit argument overrides the default.
	got, err = fn.Call(context.Background(), runtime.Arguments{Positional: []cty.Value{num(1), num(2)}})
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(3).RawEquals(got))
}

func TestEval_UntransformedPipe(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	_, err := evalSrc(t, ev, runtime.NewScope(nil), "5 |> double")
	require.Error(t, err)
	require.Contains(t, err.Error(), "untransformed pipe")
}

func TestEval_StrayPlaceholder(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	_, err := evalSrc(t, ev, runtime.NewScope(nil), "_")
	require.Error(t, err)
	require.Contains(t, err.Error(), "placeholder")
}

func TestEval_DispatchSpreadsTuples(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{callables: map[string]runtime.Callable{
		"subtract": subtractFunc(),
		"double":   doubleFunc(),
	}})
	sc := runtime.NewScope(nil)
	pos := syntax.Pos{Line: 1, Column: 1}

	// A tuple incoming value spreads into separate arguments.
	sc.Define("in", cty.TupleVal([]cty.Value{num(10), num(3)}))
	dispatch := &syntax.DispatchCall{
		Fn:       &syntax.Name{Ident: "subtract", SrcPos: pos},
		Incoming: &syntax.Name{Ident: "in", SrcPos: pos},
		SrcPos:   pos,
	}
	got, err := ev.Eval(context.Background(), sc, dispatch)
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(7).RawEquals(got))

	// A scalar passes through whole.
	sc.Define("in", num(6))
	single := &syntax.DispatchCall{
		Fn:       &syntax.Name{Ident: "double", SrcPos: pos},
		Incoming: &syntax.Name{Ident: "in", SrcPos: pos},
		SrcPos:   pos,
	}
	got, err = ev.Eval(context.Background(), sc, single)
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(12).RawEquals(got))
}

func TestEval_DispatchInsertIndex(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{callables: map[string]runtime.Callable{
		"subtract": subtractFunc(),
	}})
	sc := runtime.NewScope(nil)
	sc.Define("in", num(3))
	pos := syntax.Pos{Line: 1, Column: 1}

	// One supplied argument and Insert 1 puts the incoming value second.
	dispatch := &syntax.DispatchCall{
		Fn:       &syntax.Name{Ident: "subtract", SrcPos: pos},
		Args:     []syntax.Arg{{Value: &syntax.Literal{Value: num(10), SrcPos: pos}}},
		Incoming: &syntax.Name{Ident: "in", SrcPos: pos},
		Insert:   1,
		SrcPos:   pos,
	}
	got, err := ev.Eval(context.Background(), sc, dispatch)
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(7).RawEquals(got))
}

func TestEvalStmts_ReturnShortCircuits(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	sc := runtime.NewScope(nil)

	stmts, err := syntax.ParseBody("r = 1 + 2\nreturn r * 2\nr + 100", syntax.GroupLeft)
	require.NoError(t, err)
	got, err := ev.EvalStmts(context.Background(), sc, stmts)
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(6).RawEquals(got))
}

func TestEvalStmts_LastValue(t *testing.T) {
	ev := runtime.NewEvaluator(&stubResolver{})
	sc := runtime.NewScope(nil)

	stmts, err := syntax.ParseBody("a = 5\na * 3", syntax.GroupLeft)
	require.NoError(t, err)
	got, err := ev.EvalStmts(context.Background(), sc, stmts)
	require.NoError(t, err)
	require.True(t, cty.NumberIntVal(15).RawEquals(got))
}
