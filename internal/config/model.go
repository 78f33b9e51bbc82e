package config

import "context"

// Model is the unified, format-agnostic representation of everything loaded
// from a set of routine documents: top-level routines, module aggregates,
// and the transformer options.
type Model struct {
	Options  *Options
	Routines []*RoutineDefinition
	Modules  []*ModuleDefinition
}

// RoutineDefinition is one `routine` block, still in source form. Params
// are raw declaration strings ("name", "name: marker", "name: marker = 1",
// "*rest"); Body is the un-parsed duct expression source.
type RoutineDefinition struct {
	Name        string
	Description string
	Params      []string
	Body        string
}

// ModuleDefinition is one `module` block: an aggregate of routines and
// nested modules. Extends optionally names a base module whose routines
// remain visible through lookup but are never re-transformed.
type ModuleDefinition struct {
	Name     string
	Extends  string
	Routines []*RoutineDefinition
	Modules  []*ModuleDefinition
}

// Loader is the interface for a format-specific document loader.
type Loader interface {
	// Load reads routine documents from the given paths (files or
	// directories) and translates them into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
