package syntax

import (
	"sort"
	"sync"
)

// Container is a thread-safe helper that gathers statements and provides
// analysis results over them, currently the set of free names. It is used
// by the rewriter to surface unresolvable references at transform time.
type Container struct {
	// analyzeOnce ensures the extraction logic runs exactly once per set
	// of added statements.
	analyzeOnce sync.Once

	mu    sync.RWMutex
	stmts []Stmt
	bound map[string]bool

	free []string
}

// NewContainer creates a container. The given names (typically routine
// parameters) are treated as bound.
func NewContainer(bound ...string) *Container {
	c := &Container{bound: make(map[string]bool, len(bound))}
	for _, name := range bound {
		c.bound[name] = true
	}
	return c
}

// Add appends statements for analysis. Adding resets the cached analysis;
// all Adds are expected to happen before the first getter call.
func (c *Container) Add(stmts ...Stmt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyzeOnce = sync.Once{}
	c.stmts = append(c.stmts, stmts...)
}

// FreeNames returns the sorted set of names referenced by the statements
// that are neither parameters, locals assigned anywhere in the body,
// capture targets, nor lambda parameters in their own bodies.
func (c *Container) FreeNames() []string {
	c.analyzeOnce.Do(func() {
		c.mu.RLock()
		stmts, bound := c.stmts, c.bound
		c.mu.RUnlock()

		free := collectFreeNames(stmts, bound)

		c.mu.Lock()
		c.free = free
		c.mu.Unlock()
	})
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.free
}

func collectFreeNames(stmts []Stmt, bound map[string]bool) []string {
	scope := make(map[string]bool, len(bound))
	for name := range bound {
		scope[name] = true
	}

	// Locals and captures bind for the whole body: a routine body is one
	// flat scope, so a use before the binding statement still resolves
	// (to null) rather than escaping the routine.
	WalkStmts(stmts, func(e Expr) bool {
		if cap, ok := e.(*CaptureExpr); ok {
			scope[cap.Name] = true
		}
		return true
	})
	for _, s := range stmts {
		if a, ok := s.(*AssignStmt); ok {
			scope[a.Name] = true
		}
	}

	seen := make(map[string]bool)
	for _, s := range stmts {
		switch n := s.(type) {
		case *AssignStmt:
			freeInExpr(n.X, scope, seen)
		case *ExprStmt:
			freeInExpr(n.X, scope, seen)
		case *ReturnStmt:
			freeInExpr(n.X, scope, seen)
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func freeInExpr(e Expr, scope map[string]bool, seen map[string]bool) {
	switch n := e.(type) {
	case nil:
		return
	case *Name:
		if !scope[n.Ident] {
			seen[n.Ident] = true
		}
	case *Attr:
		// Only the root of a dotted path is a name reference; the
		// attribute itself resolves against whatever the root is.
		freeInExpr(n.X, scope, seen)
	case *LambdaExpr:
		inner := make(map[string]bool, len(scope)+len(n.Params))
		for name := range scope {
			inner[name] = true
		}
		for _, p := range n.Params {
			if p.Default != nil {
				freeInExpr(p.Default, scope, seen)
			}
			inner[p.Name] = true
		}
		// A capture inside the lambda body binds in the lambda's scope.
		Walk(n.Body, func(x Expr) bool {
			if cap, ok := x.(*CaptureExpr); ok {
				inner[cap.Name] = true
			}
			return true
		})
		freeInExpr(n.Body, inner, seen)
	case *CaptureExpr:
		freeInExpr(n.X, scope, seen)
	case *TupleExpr:
		for _, elem := range n.Elems {
			freeInExpr(elem, scope, seen)
		}
	case *ListExpr:
		for _, elem := range n.Elems {
			freeInExpr(elem, scope, seen)
		}
	case *CallExpr:
		freeInExpr(n.Fn, scope, seen)
		for _, arg := range n.Args {
			freeInExpr(arg.Value, scope, seen)
		}
	case *DispatchCall:
		freeInExpr(n.Fn, scope, seen)
		for _, arg := range n.Args {
			freeInExpr(arg.Value, scope, seen)
		}
		freeInExpr(n.Incoming, scope, seen)
	case *BinaryExpr:
		freeInExpr(n.LHS, scope, seen)
		freeInExpr(n.RHS, scope, seen)
	case *UnaryExpr:
		freeInExpr(n.X, scope, seen)
	case *CondExpr:
		freeInExpr(n.Cond, scope, seen)
		freeInExpr(n.Then, scope, seen)
		freeInExpr(n.Else, scope, seen)
	}
}
