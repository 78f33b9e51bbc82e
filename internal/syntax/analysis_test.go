package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amogorkon/pipeduct/internal/syntax"
)

func mustBody(t *testing.T, src string) []syntax.Stmt {
	t.Helper()
	stmts, err := syntax.ParseBody(src, syntax.GroupLeft)
	require.NoError(t, err)
	return stmts
}

func TestContainer_FreeNames(t *testing.T) {
	c := syntax.NewContainer("x")
	c.Add(mustBody(t, "r = double(x)\nr + offset")...)

	require.Equal(t, []string{"double", "offset"}, c.FreeNames())
}

func TestContainer_CapturesAndLocalsBind(t *testing.T) {
	c := syntax.NewContainer()
	// y is bound by the capture, r by the assignment; a use before the
	// binding statement still counts as bound in the flat routine scope.
	c.Add(mustBody(t, "total = r + y\nr = (y := f(1)) + 1\ntotal")...)

	require.Equal(t, []string{"f"}, c.FreeNames())
}

func TestContainer_LambdaScope(t *testing.T) {
	c := syntax.NewContainer("n")
	c.Add(mustBody(t, `apply(\x, k = base -> x + k + n)`)...)

	// x and k are lambda parameters; base is free because defaults are
	// evaluated in the enclosing scope.
	require.Equal(t, []string{"apply", "base"}, c.FreeNames())
}

func TestContainer_DottedRootOnly(t *testing.T) {
	c := syntax.NewContainer()
	c.Add(mustBody(t, "geometry.area(2, 3)")...)
	require.Equal(t, []string{"geometry"}, c.FreeNames())
}

func TestContainer_StableAcrossCalls(t *testing.T) {
	c := syntax.NewContainer()
	c.Add(mustBody(t, "f(g(x))")...)
	first := c.FreeNames()
	require.Equal(t, first, c.FreeNames())
	require.Equal(t, []string{"f", "g", "x"}, first)
}
