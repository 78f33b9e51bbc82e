package pipes

import "github.com/amogorkon/pipeduct/internal/syntax"

// splitCapture peels capture wrappers off a stage expression. It returns
// the innermost stage expression and the capture names from innermost to
// outermost. A stage like (a := (b := f)) yields f with names [b, a].
func splitCapture(e syntax.Expr) (syntax.Expr, []string) {
	var names []string
	for {
		cap, ok := e.(*syntax.CaptureExpr)
		if !ok {
			return e, names
		}
		names = append([]string{cap.Name}, names...)
		e = cap.X
	}
}

// rewrapCaptures wraps a resolved stage call back into its capture
// bindings so each name receives the call's result rather than the
// callable reference the source text wrapped. Ordinary capture semantics
// would bind the right-hand expression itself; a pipe stage special-cases
// this to bind the post-call value, and the chain keeps flowing that same
// value forward.
func rewrapCaptures(call syntax.Expr, names []string) syntax.Expr {
	for _, name := range names {
		call = &syntax.CaptureExpr{Name: name, X: call, SrcPos: call.Pos()}
	}
	return call
}
