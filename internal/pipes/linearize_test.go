package pipes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amogorkon/pipeduct/internal/pipes"
	"github.com/amogorkon/pipeduct/internal/syntax"
)

func parsePipe(t *testing.T, src string, grouping syntax.PipeGrouping) *syntax.BinaryExpr {
	t.Helper()
	stmts, err := syntax.ParseBody(src, grouping)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	b, ok := stmts[0].(*syntax.ExprStmt).X.(*syntax.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, syntax.OpPipe, b.Op)
	return b
}

func stageStrings(chain *pipes.Chain) []string {
	out := make([]string, len(chain.Stages))
	for i, s := range chain.Stages {
		out[i] = syntax.String(s.Expr)
	}
	return out
}

func TestLinearize_FlattensBothGroupings(t *testing.T) {
	for _, grouping := range []syntax.PipeGrouping{syntax.GroupLeft, syntax.GroupRight} {
		chain := pipes.Linearize(parsePipe(t, "5 |> f |> g |> h", grouping))
		require.Equal(t, "5", syntax.String(chain.Initial))
		require.Equal(t, []string{"f", "g", "h"}, stageStrings(chain))
		for _, s := range chain.Stages {
			require.Empty(t, s.Captures)
		}
	}
}

func TestLinearize_ParenthesizedPipeJoinsTheChain(t *testing.T) {
	// Explicit grouping on the right still flattens into one spine, so
	// evaluation order is positional, not lexical.
	chain := pipes.Linearize(parsePipe(t, "a |> (f |> g)", syntax.GroupLeft))
	require.Equal(t, "a", syntax.String(chain.Initial))
	require.Equal(t, []string{"f", "g"}, stageStrings(chain))
}

func TestLinearize_PeelsCaptures(t *testing.T) {
	chain := pipes.Linearize(parsePipe(t, "5 |> (y := f) |> g", syntax.GroupLeft))
	require.Equal(t, []string{"f", "g"}, stageStrings(chain))
	require.Equal(t, []string{"y"}, chain.Stages[0].Captures)
	require.Empty(t, chain.Stages[1].Captures)
}

func TestLinearize_NestedCapturesInnermostFirst(t *testing.T) {
	chain := pipes.Linearize(parsePipe(t, "5 |> (a := (b := f))", syntax.GroupLeft))
	require.Equal(t, []string{"f"}, stageStrings(chain))
	require.Equal(t, []string{"b", "a"}, chain.Stages[0].Captures)
}

func TestLinearize_StageCallsKeepArguments(t *testing.T) {
	chain := pipes.Linearize(parsePipe(t, "5 |> addk(k = 1) |> subtract(10, _)", syntax.GroupLeft))
	require.Equal(t, []string{"addk(k = 1)", "subtract(10, _)"}, stageStrings(chain))
}
