package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/amogorkon/pipeduct/internal/config"
	"github.com/amogorkon/pipeduct/internal/pipes"
	"github.com/amogorkon/pipeduct/internal/runtime"
	"github.com/amogorkon/pipeduct/internal/syntax"
)

func groupingFor(assoc config.Associativity) syntax.PipeGrouping {
	if assoc == config.AssocRight {
		return syntax.GroupRight
	}
	return syntax.GroupLeft
}

// compile turns every routine and module definition of the model into
// runtime objects and registers them. Extends references are resolved in a
// second pass so a base module may be declared after its extension.
func (a *App) compile(ctx context.Context, model *config.Model) error {
	grouping := groupingFor(a.options.Associativity)

	for _, def := range model.Routines {
		r, err := a.compileRoutine(ctx, def, def.Name, grouping)
		if err != nil {
			return err
		}
		if err := a.registry.RegisterCallable(def.Name, r); err != nil {
			return err
		}
		a.routines = append(a.routines, r)
	}

	type pendingBase struct {
		mod  *runtime.Module
		path string
	}
	var pending []pendingBase

	var compileModule func(def *config.ModuleDefinition, fullName string) (*runtime.Module, error)
	compileModule = func(def *config.ModuleDefinition, fullName string) (*runtime.Module, error) {
		m := runtime.NewModule(def.Name, fullName, def.Extends)
		if def.Extends != "" {
			pending = append(pending, pendingBase{mod: m, path: def.Extends})
		}
		for _, rdef := range def.Routines {
			r, err := a.compileRoutine(ctx, rdef, fullName+"."+rdef.Name, grouping)
			if err != nil {
				return nil, err
			}
			if err := m.AddRoutine(r); err != nil {
				return nil, err
			}
		}
		for _, cdef := range def.Modules {
			child, err := compileModule(cdef, fullName+"."+cdef.Name)
			if err != nil {
				return nil, err
			}
			if err := m.AddChild(child); err != nil {
				return nil, err
			}
		}
		return m, nil
	}

	for _, def := range model.Modules {
		m, err := compileModule(def, def.Name)
		if err != nil {
			return err
		}
		if err := a.registry.RegisterModule(m); err != nil {
			return err
		}
		a.modules = append(a.modules, m)
	}

	for _, p := range pending {
		base, ok := a.resolveModulePath(p.path)
		if !ok {
			return fmt.Errorf("module %s extends unknown module %q", p.mod.FullName(), p.path)
		}
		p.mod.SetBase(base)
	}
	return nil
}

func (a *App) compileRoutine(ctx context.Context, def *config.RoutineDefinition, fullName string, grouping syntax.PipeGrouping) (*runtime.Routine, error) {
	decls, err := syntax.ParseParams(def.Params)
	if err != nil {
		return nil, fmt.Errorf("routine %s: %w", fullName, err)
	}
	body, err := syntax.ParseBody(def.Body, grouping)
	if err != nil {
		return nil, fmt.Errorf("routine %s: %w", fullName, err)
	}
	r, err := runtime.NewRoutine(ctx, def.Name, fullName, decls, body, a.globals, a.ev)
	if err != nil {
		return nil, fmt.Errorf("routine %s: %w", fullName, err)
	}
	return r, nil
}

func (a *App) resolveModulePath(path string) (*runtime.Module, bool) {
	parts := strings.Split(path, ".")
	m, ok := a.registry.Module(parts[0])
	if !ok {
		return nil, false
	}
	for _, part := range parts[1:] {
		member, ok := m.Lookup(part)
		if !ok {
			return nil, false
		}
		m, ok = member.(*runtime.Module)
		if !ok {
			return nil, false
		}
	}
	return m, true
}

// transform applies the pipe rewrite to every compiled routine, top level
// first, then module members. A single failure aborts the whole app.
func (a *App) transform(ctx context.Context) error {
	t := pipes.New(a.intro, a.options.Policy, a.registry)
	for _, r := range a.routines {
		if err := t.Apply(ctx, r); err != nil {
			return err
		}
	}
	for _, m := range a.modules {
		if err := t.Apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
