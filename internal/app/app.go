// Package app wires the application together: it loads routine documents,
// compiles them into callable routines, runs the pipe transform over every
// body, and exposes the resulting callable set.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/amogorkon/pipeduct/internal/config"
	"github.com/amogorkon/pipeduct/internal/ctxlog"
	"github.com/amogorkon/pipeduct/internal/registry"
	"github.com/amogorkon/pipeduct/internal/runtime"
	"github.com/amogorkon/pipeduct/internal/sig"
	"github.com/amogorkon/pipeduct/internal/syntax"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// DocPaths are .hcl files or directories of routine documents.
	DocPaths []string
	// Call names the routine to invoke; empty lists the compiled routines.
	Call string
	// Args are duct expressions evaluated into the call's positional
	// arguments.
	Args []string

	LogFormat string
	LogLevel  string
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle. Each instance carries its own isolated logger and registry.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	options *config.Options

	registry *registry.Registry
	intro    *sig.Introspector
	ev       *runtime.Evaluator
	globals  *runtime.Scope

	routines []*runtime.Routine
	modules  []*runtime.Module
}

// NewApp loads, compiles, and transforms every document reachable from the
// configured paths. A returned error means some document failed to load,
// parse, or transform; no partially transformed App is ever returned.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.DocPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	logger.Debug("Documents loaded and translated into unified model.")

	a := &App{
		outW:     outW,
		logger:   logger,
		options:  model.Options,
		registry: registry.New(),
		intro:    sig.New(sig.NewClassifier(model.Options.SequenceMarkers)),
	}
	a.ev = runtime.NewEvaluator(a.registry)
	a.globals = runtime.NewScope(nil)

	if err := a.registry.RegisterBuiltins(); err != nil {
		return nil, err
	}
	if err := a.compile(ctx, model); err != nil {
		return nil, err
	}
	logger.Debug("All routines compiled and registered.",
		"routines", len(a.routines), "modules", len(a.modules))

	if err := a.transform(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Pipe transform complete.")

	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Options returns the effective option set after settings blocks applied.
func (a *App) Options() *config.Options {
	return a.options
}

// Run executes the configured action: invoke one routine and print its
// result, or list the compiled routines when no call was requested.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if appConfig.Call == "" {
		for _, r := range a.routines {
			fmt.Fprintln(a.outW, r.FullName())
		}
		for _, m := range a.modules {
			listModule(a.outW, m)
		}
		return nil
	}

	result, err := a.CallRoutine(ctx, appConfig.Call, appConfig.Args...)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.outW, formatValue(result))
	return nil
}

// CallRoutine invokes a compiled routine by (possibly dotted) name. Each
// argument is a duct expression evaluated against the global callables.
func (a *App) CallRoutine(ctx context.Context, name string, args ...string) (cty.Value, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	callee, ok := a.registry.ResolveCallable(name)
	if !ok {
		return cty.NilVal, &runtime.ScopeError{Name: name}
	}

	callArgs := runtime.Arguments{}
	for _, src := range args {
		expr, err := syntax.ParseExpression(src)
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid argument %q: %w", src, err)
		}
		val, err := a.ev.Eval(ctx, runtime.NewScope(nil), expr)
		if err != nil {
			return cty.NilVal, fmt.Errorf("evaluating argument %q: %w", src, err)
		}
		callArgs.Positional = append(callArgs.Positional, val)
	}

	return callee.Call(ctx, callArgs)
}

func listModule(w io.Writer, m *runtime.Module) {
	for _, r := range m.Routines() {
		fmt.Fprintln(w, r.FullName())
	}
	for _, child := range m.Children() {
		listModule(w, child)
	}
}

func formatValue(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() {
		return "null"
	}
	out, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		// Capsule values and other unserializable shapes.
		return v.Type().FriendlyName()
	}
	return string(out)
}
