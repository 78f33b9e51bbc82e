package syntax

// Walk visits e and every sub-expression in pre-order. visit returning
// false prunes the subtree.
func Walk(e Expr, visit func(Expr) bool) {
	if e == nil || !visit(e) {
		return
	}
	switch n := e.(type) {
	case *Attr:
		Walk(n.X, visit)
	case *TupleExpr:
		for _, elem := range n.Elems {
			Walk(elem, visit)
		}
	case *ListExpr:
		for _, elem := range n.Elems {
			Walk(elem, visit)
		}
	case *CallExpr:
		Walk(n.Fn, visit)
		for _, arg := range n.Args {
			Walk(arg.Value, visit)
		}
	case *DispatchCall:
		Walk(n.Fn, visit)
		for _, arg := range n.Args {
			Walk(arg.Value, visit)
		}
		Walk(n.Incoming, visit)
	case *BinaryExpr:
		Walk(n.LHS, visit)
		Walk(n.RHS, visit)
	case *UnaryExpr:
		Walk(n.X, visit)
	case *CondExpr:
		Walk(n.Cond, visit)
		Walk(n.Then, visit)
		Walk(n.Else, visit)
	case *LambdaExpr:
		for _, p := range n.Params {
			if p.Default != nil {
				Walk(p.Default, visit)
			}
		}
		Walk(n.Body, visit)
	case *CaptureExpr:
		Walk(n.X, visit)
	}
}

// WalkStmts visits every expression of every statement in pre-order.
func WalkStmts(stmts []Stmt, visit func(Expr) bool) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *AssignStmt:
			Walk(n.X, visit)
		case *ExprStmt:
			Walk(n.X, visit)
		case *ReturnStmt:
			Walk(n.X, visit)
		}
	}
}

// MapChildren returns a copy of e with f applied to each direct
// sub-expression. Nodes without children are returned unchanged. This is
// the building block of the rewriter's recursion.
func MapChildren(e Expr, f func(Expr) Expr) Expr {
	switch n := e.(type) {
	case *Attr:
		return &Attr{X: f(n.X), Name: n.Name, SrcPos: n.SrcPos}
	case *TupleExpr:
		return &TupleExpr{Elems: mapExprs(n.Elems, f), SrcPos: n.SrcPos}
	case *ListExpr:
		return &ListExpr{Elems: mapExprs(n.Elems, f), SrcPos: n.SrcPos}
	case *CallExpr:
		return &CallExpr{Fn: f(n.Fn), Args: mapArgs(n.Args, f), SrcPos: n.SrcPos}
	case *DispatchCall:
		return &DispatchCall{
			Fn:       f(n.Fn),
			Args:     mapArgs(n.Args, f),
			Incoming: f(n.Incoming),
			Insert:   n.Insert,
			SrcPos:   n.SrcPos,
		}
	case *BinaryExpr:
		return &BinaryExpr{Op: n.Op, LHS: f(n.LHS), RHS: f(n.RHS), SrcPos: n.SrcPos}
	case *UnaryExpr:
		return &UnaryExpr{Op: n.Op, X: f(n.X), SrcPos: n.SrcPos}
	case *CondExpr:
		return &CondExpr{Cond: f(n.Cond), Then: f(n.Then), Else: f(n.Else), SrcPos: n.SrcPos}
	case *LambdaExpr:
		params := make([]ParamDecl, len(n.Params))
		copy(params, n.Params)
		for i := range params {
			if params[i].Default != nil {
				params[i].Default = f(params[i].Default)
			}
		}
		return &LambdaExpr{Params: params, Body: f(n.Body), SrcPos: n.SrcPos}
	case *CaptureExpr:
		return &CaptureExpr{Name: n.Name, X: f(n.X), SrcPos: n.SrcPos}
	default:
		return e
	}
}

func mapExprs(elems []Expr, f func(Expr) Expr) []Expr {
	if elems == nil {
		return nil
	}
	out := make([]Expr, len(elems))
	for i, e := range elems {
		out[i] = f(e)
	}
	return out
}

func mapArgs(args []Arg, f func(Expr) Expr) []Arg {
	if args == nil {
		return nil
	}
	out := make([]Arg, len(args))
	for i, a := range args {
		out[i] = Arg{Name: a.Name, Value: f(a.Value)}
	}
	return out
}

// ContainsPlaceholder reports whether the `_` token occurs anywhere in e.
func ContainsPlaceholder(e Expr) bool {
	found := false
	Walk(e, func(x Expr) bool {
		if _, ok := x.(*Placeholder); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// ContainsPipe reports whether an untransformed pipe operator remains in e.
func ContainsPipe(e Expr) bool {
	found := false
	Walk(e, func(x Expr) bool {
		if b, ok := x.(*BinaryExpr); ok && b.Op == OpPipe {
			found = true
			return false
		}
		return true
	})
	return found
}
