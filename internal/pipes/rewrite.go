package pipes

import (
	"github.com/amogorkon/pipeduct/internal/syntax"
)

// Rewriter walks a routine body and replaces every pipe chain with its
// resolved nested-call tree. Chains nested inside a stage's own arguments,
// lambda bodies, or conditional branches are rewritten first, so the outer
// chain always sees already-transformed sub-expressions.
type Rewriter struct {
	res *Resolver
}

// NewRewriter creates a rewriter over the given placement resolver.
func NewRewriter(res *Resolver) *Rewriter {
	return &Rewriter{res: res}
}

// RewriteStmts rewrites a whole body. Statements without pipe operators
// come back structurally unchanged, so re-running the rewriter over an
// already-transformed body is a no-op.
func (rw *Rewriter) RewriteStmts(stmts []syntax.Stmt) ([]syntax.Stmt, error) {
	out := make([]syntax.Stmt, len(stmts))
	for i, s := range stmts {
		switch n := s.(type) {
		case *syntax.AssignStmt:
			x, err := rw.RewriteExpr(n.X)
			if err != nil {
				return nil, err
			}
			out[i] = &syntax.AssignStmt{Name: n.Name, X: x, SrcPos: n.SrcPos}
		case *syntax.ExprStmt:
			x, err := rw.RewriteExpr(n.X)
			if err != nil {
				return nil, err
			}
			out[i] = &syntax.ExprStmt{X: x, SrcPos: n.SrcPos}
		case *syntax.ReturnStmt:
			x, err := rw.RewriteExpr(n.X)
			if err != nil {
				return nil, err
			}
			out[i] = &syntax.ReturnStmt{X: x, SrcPos: n.SrcPos}
		default:
			out[i] = s
		}
	}
	return out, nil
}

// RewriteExpr rewrites one expression tree, innermost chains first.
func (rw *Rewriter) RewriteExpr(e syntax.Expr) (syntax.Expr, error) {
	if b, ok := e.(*syntax.BinaryExpr); ok && b.Op == syntax.OpPipe {
		return rw.rewriteChain(b)
	}

	var err error
	out := syntax.MapChildren(e, func(c syntax.Expr) syntax.Expr {
		if err != nil {
			return c
		}
		rewritten, rerr := rw.RewriteExpr(c)
		if rerr != nil {
			err = rerr
			return c
		}
		return rewritten
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (rw *Rewriter) rewriteChain(root *syntax.BinaryExpr) (syntax.Expr, error) {
	chain := Linearize(root)

	if syntax.ContainsPlaceholder(chain.Initial) {
		return nil, errAt(PlaceholderInitialValue, chain.Initial.Pos(),
			"the chain's starting value cannot contain the placeholder")
	}

	acc, err := rw.RewriteExpr(chain.Initial)
	if err != nil {
		return nil, err
	}

	for _, stage := range chain.Stages {
		// Rewrite chains nested inside the stage's own arguments before
		// resolving placement; the stage node itself keeps its shape so
		// placeholders and partial applications stay visible.
		var rerr error
		inner := syntax.MapChildren(stage.Expr, func(c syntax.Expr) syntax.Expr {
			if rerr != nil {
				return c
			}
			rewritten, e := rw.RewriteExpr(c)
			if e != nil {
				rerr = e
				return c
			}
			return rewritten
		})
		if rerr != nil {
			return nil, rerr
		}

		call, err := rw.res.Resolve(acc, inner)
		if err != nil {
			return nil, err
		}
		acc = rewrapCaptures(call, stage.Captures)
	}
	return acc, nil
}
