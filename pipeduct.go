// Package pipeduct compiles routine documents whose bodies use the |>
// pipe operator and rewrites every pipe chain into an equivalent nested
// call tree before the routines become callable. Documents are HCL files
// of routine and module blocks; the transformed routines are invoked by
// name with expression arguments.
package pipeduct

import (
	"context"
	"io"

	"github.com/zclconf/go-cty/cty"

	"github.com/amogorkon/pipeduct/internal/app"
	"github.com/amogorkon/pipeduct/internal/config"
	"github.com/amogorkon/pipeduct/internal/loader"
	"github.com/amogorkon/pipeduct/internal/pipes"
	"github.com/amogorkon/pipeduct/internal/runtime"
)

// TransformError is the distinguished error kind for structural pipe
// violations: multiple placeholders in one stage, a placeholder on the
// chain's initial value, or a statically decidable arity mismatch.
type TransformError = pipes.TransformError

// ArityError reports a call whose arguments cannot be bound to the
// callee's parameters at call time.
type ArityError = runtime.ArityError

// ScopeError reports a name that resolves in no scope.
type ScopeError = runtime.ScopeError

// Options configures document loading.
type Options struct {
	// LogOutput receives structured logs; nil discards them.
	LogOutput io.Writer
	// LogLevel is one of debug, info, warn, error. Empty means info.
	LogLevel string
	// LogFormat is text or json. Empty means text.
	LogFormat string
}

// Pipeline wraps a compiled and transformed document set.
type Pipeline struct {
	app *app.App
}

// Load compiles and transforms every routine document reachable from the
// given paths (files or directories).
func Load(paths ...string) (*Pipeline, error) {
	return LoadWithOptions(Options{}, paths...)
}

// LoadWithOptions compiles and transforms with explicit configuration.
func LoadWithOptions(opts Options, paths ...string) (*Pipeline, error) {
	out := opts.LogOutput
	if out == nil {
		out = io.Discard
	}
	appConfig := &app.Config{
		DocPaths:  paths,
		LogLevel:  opts.LogLevel,
		LogFormat: opts.LogFormat,
	}
	a, err := app.NewApp(out, appConfig, loader.NewLoader())
	if err != nil {
		return nil, err
	}
	return &Pipeline{app: a}, nil
}

// Call invokes a routine by (possibly dotted) name. Each argument is an
// expression evaluated before the call, so "5", "(2, 3)", and
// `"Alice"` are all valid argument strings.
func (p *Pipeline) Call(ctx context.Context, routine string, args ...string) (cty.Value, error) {
	return p.app.CallRoutine(ctx, routine, args...)
}

// UnpackPolicy returns the effective unpacking policy after settings
// blocks were applied.
func (p *Pipeline) UnpackPolicy() string {
	if p.app.Options().Policy == config.PolicyAnnotation {
		return "annotation"
	}
	return "shape"
}
