package pipes

import "github.com/amogorkon/pipeduct/internal/syntax"

// Stage is one link of a linearized chain: the expression to the right of
// a pipe operator, with any capture wrappers already peeled off.
type Stage struct {
	// Expr is the stage expression proper: a call, a bare callable
	// reference, or a lambda literal.
	Expr syntax.Expr
	// Captures holds the names bound to this stage's result, innermost
	// first. Empty for an uncaptured stage.
	Captures []string
}

// Chain is an ordered pipe chain: the initial value followed by at least
// one stage, in left-to-right evaluation order.
type Chain struct {
	Initial syntax.Expr
	Stages  []Stage
}

// Linearize flattens a pipe expression into a Chain. The parser folds the
// operator per the configured grouping, so the tree may lean either way;
// flattening the spine left-to-right recovers the same evaluation order
// for both.
func Linearize(root *syntax.BinaryExpr) *Chain {
	var parts []syntax.Expr
	flattenPipes(root, &parts)

	chain := &Chain{Initial: parts[0]}
	for _, part := range parts[1:] {
		inner, names := splitCapture(part)
		chain.Stages = append(chain.Stages, Stage{Expr: inner, Captures: names})
	}
	return chain
}

func flattenPipes(e syntax.Expr, out *[]syntax.Expr) {
	if b, ok := e.(*syntax.BinaryExpr); ok && b.Op == syntax.OpPipe {
		flattenPipes(b.LHS, out)
		flattenPipes(b.RHS, out)
		return
	}
	*out = append(*out, e)
}
