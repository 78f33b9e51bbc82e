package runtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"

	"github.com/amogorkon/pipeduct/internal/sig"
	"github.com/amogorkon/pipeduct/internal/syntax"
)

// Closure is an inline anonymous function closed over its defining scope.
// Parameter defaults are evaluated at call time in that scope, so a
// default may reference routine locals visible where the lambda was
// written.
type Closure struct {
	id     string
	params []sig.Parameter
	decl   *syntax.LambdaExpr
	scope  *Scope
	ev     *Evaluator
}

// LambdaParams converts a lambda literal's declarations into parameter
// descriptors without evaluating defaults. The placement resolver uses
// this at transform time, before any closure value exists.
func LambdaParams(decl *syntax.LambdaExpr) []sig.Parameter {
	params := make([]sig.Parameter, 0, len(decl.Params))
	for _, d := range decl.Params {
		p := sig.Parameter{
			Name:       d.Name,
			Marker:     d.Marker,
			Type:       sig.MarkerType(d.Marker),
			HasDefault: d.Default != nil,
		}
		switch {
		case d.VariadicPos:
			p.Kind = sig.VariadicPositional
		case d.VariadicKW:
			p.Kind = sig.VariadicKeyword
		case d.KeywordOnly:
			p.Kind = sig.KeywordOnly
		default:
			p.Kind = sig.PositionalOrKeyword
		}
		params = append(params, p)
	}
	return params
}

// NewClosure captures a lambda literal together with its defining scope.
func NewClosure(decl *syntax.LambdaExpr, scope *Scope, ev *Evaluator) (*Closure, error) {
	params := LambdaParams(decl)
	return &Closure{
		id:     "lambda-" + uuid.NewString()[:8],
		params: params,
		decl:   decl,
		scope:  scope,
		ev:     ev,
	}, nil
}

func (c *Closure) Name() string { return c.id }

// CallableID implements sig.Identified.
func (c *Closure) CallableID() string { return "closure:" + c.id }

// DescribeParams implements sig.Describer.
func (c *Closure) DescribeParams() []sig.Parameter { return c.params }

// Decl exposes the lambda literal; the placement resolver introspects it
// directly at transform time, before any closure exists.
func (c *Closure) Decl() *syntax.LambdaExpr { return c.decl }

func (c *Closure) Call(ctx context.Context, args Arguments) (cty.Value, error) {
	defaultOf := func(name string) (cty.Value, error) {
		for _, d := range c.decl.Params {
			if d.Name == name && d.Default != nil {
				return c.ev.Eval(ctx, c.scope, d.Default)
			}
		}
		return cty.NilVal, fmt.Errorf("no default declared for %q", name)
	}
	bound, err := Bind(c.id, c.params, defaultOf, args)
	if err != nil {
		return cty.NilVal, err
	}
	frame := c.scope.Child()
	for name, v := range bound {
		frame.Define(name, v)
	}
	return c.ev.Eval(ctx, frame, c.decl.Body)
}
