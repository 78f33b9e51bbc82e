package pipes

import (
	"context"

	"github.com/amogorkon/pipeduct/internal/config"
	"github.com/amogorkon/pipeduct/internal/ctxlog"
	"github.com/amogorkon/pipeduct/internal/runtime"
	"github.com/amogorkon/pipeduct/internal/sig"
	"github.com/amogorkon/pipeduct/internal/syntax"
)

// Registry is the transform-side view of the callable registry: name
// resolution for the placement resolver and scope check, plus the
// insert-if-absent table that keeps each routine transformed at most once.
type Registry interface {
	runtime.Resolver
	BeginTransform(id string) bool
}

// Transformer rewrites the pipe chains of compiled routines. It is
// stateless across routines; all shared state lives in the injected
// registry.
type Transformer struct {
	rw  *Rewriter
	reg Registry
}

// New creates a transformer using the given introspector, unpack policy,
// and registry.
func New(intro *sig.Introspector, policy config.UnpackPolicy, reg Registry) *Transformer {
	return &Transformer{
		rw:  NewRewriter(NewResolver(intro, policy, reg)),
		reg: reg,
	}
}

// Apply transforms one routine or one module of routines in place. Module
// transformation covers every routine defined directly on the module and
// on modules nested within it; routines reachable only through an extends
// base are left to their defining module. Anything else is a BadTarget
// error. Transform errors abort the target entirely; a routine that failed
// to transform keeps its original body and the error propagates.
func (t *Transformer) Apply(ctx context.Context, target any) error {
	switch n := target.(type) {
	case *runtime.Routine:
		return t.transformRoutine(ctx, n)
	case *runtime.Module:
		return t.transformModule(ctx, n)
	default:
		return errAt(BadTarget, syntax.Pos{}, "cannot transform %T, want a routine or a module", target)
	}
}

func (t *Transformer) transformModule(ctx context.Context, m *runtime.Module) error {
	for _, r := range m.Routines() {
		if err := t.transformRoutine(ctx, r); err != nil {
			return err
		}
	}
	for _, child := range m.Children() {
		if err := t.transformModule(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transformer) transformRoutine(ctx context.Context, r *runtime.Routine) error {
	log := ctxlog.FromContext(ctx)

	if !t.reg.BeginTransform(r.CallableID()) {
		log.Debug("Routine already transformed, skipping", "routine", r.FullName())
		return nil
	}

	if err := t.checkScope(r); err != nil {
		return err
	}

	body, err := t.rw.RewriteStmts(r.Body())
	if err != nil {
		return err
	}
	if err := r.ReplaceBody(body); err != nil {
		return err
	}

	log.Debug("Routine transformed", "routine", r.FullName())
	return nil
}

// checkScope surfaces unresolvable free names at transform time instead of
// letting them fail deep inside a rewritten chain. Names bound by
// parameters, locals, captures, or lambda parameters are fine; everything
// else must resolve through the registry.
func (t *Transformer) checkScope(r *runtime.Routine) error {
	c := syntax.NewContainer(r.ParamNames()...)
	c.Add(r.Body()...)
	for _, name := range c.FreeNames() {
		if _, ok := t.reg.ResolveCallable(name); ok {
			continue
		}
		if t.reg.IsNamespace(name) {
			continue
		}
		return &runtime.ScopeError{Name: name, Within: r.FullName()}
	}
	return nil
}
