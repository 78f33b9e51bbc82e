package pipes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amogorkon/pipeduct/internal/config"
	"github.com/amogorkon/pipeduct/internal/pipes"
	"github.com/amogorkon/pipeduct/internal/registry"
	"github.com/amogorkon/pipeduct/internal/runtime"
	"github.com/amogorkon/pipeduct/internal/sig"
	"github.com/amogorkon/pipeduct/internal/syntax"
)

func newTransformer(t *testing.T, reg *registry.Registry) *pipes.Transformer {
	t.Helper()
	intro := sig.New(sig.NewClassifier(config.DefaultSequenceMarkers))
	return pipes.New(intro, config.PolicyShape, reg)
}

func makeRoutine(t *testing.T, reg *registry.Registry, fullName string, params []string, body string) *runtime.Routine {
	t.Helper()
	decls, err := syntax.ParseParams(params)
	require.NoError(t, err)
	stmts, err := syntax.ParseBody(body, syntax.GroupLeft)
	require.NoError(t, err)
	ev := runtime.NewEvaluator(reg)
	r, err := runtime.NewRoutine(context.Background(), fullName, fullName, decls, stmts, runtime.NewScope(nil), ev)
	require.NoError(t, err)
	return r
}

func TestTransform_Routine(t *testing.T) {
	reg := testGlobals(t)
	r := makeRoutine(t, reg, "pipeline", []string{"x"}, "x |> double |> addk(k = 1)")

	require.NoError(t, newTransformer(t, reg).Apply(context.Background(), r))
	require.True(t, r.Transformed())
	require.Equal(t, "addk(double(x), k = 1)", syntax.StringStmts(r.Body()))
	require.True(t, reg.Transformed(r.CallableID()))
}

func TestTransform_AtMostOnce(t *testing.T) {
	reg := testGlobals(t)
	r := makeRoutine(t, reg, "pipeline", []string{"x"}, "x |> double")
	tr := newTransformer(t, reg)

	require.NoError(t, tr.Apply(context.Background(), r))
	body := syntax.StringStmts(r.Body())

	// A second application is a no-op, not a double rewrite and not an
	// error about the finalized body.
	require.NoError(t, tr.Apply(context.Background(), r))
	require.Equal(t, body, syntax.StringStmts(r.Body()))
}

func TestTransform_BadTarget(t *testing.T) {
	reg := testGlobals(t)
	err := newTransformer(t, reg).Apply(context.Background(), "not a routine")
	var terr *pipes.TransformError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, pipes.BadTarget, terr.Kind)
}

func TestTransform_UnresolvableNameFailsEarly(t *testing.T) {
	reg := testGlobals(t)
	r := makeRoutine(t, reg, "broken", []string{"x"}, "x |> nonexistent_stage")

	err := newTransformer(t, reg).Apply(context.Background(), r)
	var scope *runtime.ScopeError
	require.ErrorAs(t, err, &scope)
	require.Equal(t, "nonexistent_stage", scope.Name)
	require.Equal(t, "broken", scope.Within)

	// The failed routine keeps its original body.
	require.False(t, r.Transformed())
	require.Equal(t, "(x |> nonexistent_stage)", syntax.StringStmts(r.Body()))
}

func TestTransform_ErrorAbortsBeforeReplacingBody(t *testing.T) {
	reg := testGlobals(t)
	r := makeRoutine(t, reg, "broken", []string{"x"}, "x |> subtract(_, _)")

	err := newTransformer(t, reg).Apply(context.Background(), r)
	var terr *pipes.TransformError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, pipes.MultiplePlaceholders, terr.Kind)
	require.False(t, r.Transformed())
}

func TestTransform_ModuleRecursesIntoChildren(t *testing.T) {
	reg := testGlobals(t)
	outer := runtime.NewModule("outer", "outer", "")
	inner := runtime.NewModule("inner", "outer.inner", "")
	require.NoError(t, outer.AddChild(inner))

	a := makeRoutine(t, reg, "outer.a", []string{"x"}, "x |> double")
	b := makeRoutine(t, reg, "outer.inner.b", []string{"x"}, "x |> addk(k = 1)")
	require.NoError(t, outer.AddRoutine(a))
	require.NoError(t, inner.AddRoutine(b))

	require.NoError(t, newTransformer(t, reg).Apply(context.Background(), outer))
	require.Equal(t, "double(x)", syntax.StringStmts(a.Body()))
	require.Equal(t, "addk(x, k = 1)", syntax.StringStmts(b.Body()))
}

func TestTransform_ExtendedBaseTransformsOnce(t *testing.T) {
	reg := testGlobals(t)
	base := runtime.NewModule("base", "base", "")
	area := makeRoutine(t, reg, "base.area", []string{"x"}, "x |> double")
	require.NoError(t, base.AddRoutine(area))

	derived := runtime.NewModule("derived", "derived", "base")
	derived.SetBase(base)
	tr := newTransformer(t, reg)

	require.NoError(t, tr.Apply(context.Background(), base))
	// Transforming the derived module must not touch inherited routines;
	// they already belong to the base and stay transformed exactly once.
	require.NoError(t, tr.Apply(context.Background(), derived))
	require.Equal(t, "double(x)", syntax.StringStmts(area.Body()))
}
