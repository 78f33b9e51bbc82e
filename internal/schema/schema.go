// Package schema defines the HCL shapes of routine documents. These
// structs are decode targets only; the loader translates them into the
// format-agnostic model in the config package.
package schema

import "github.com/hashicorp/hcl/v2"

// Settings represents the optional `settings` block tuning the
// transformer. Later files override earlier ones field by field.
type Settings struct {
	PipeAssociativity string   `hcl:"pipe_associativity,optional"`
	UnpackPolicy      string   `hcl:"unpack_policy,optional"`
	SequenceMarkers   []string `hcl:"sequence_markers,optional"`
}

// Routine represents a `routine` block: a named, parameterized duct
// expression body awaiting compilation and transformation.
type Routine struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Params      []string `hcl:"params,optional"`
	Body        string   `hcl:"body"`
}

// Module represents a `module` block: an aggregate of routines and nested
// modules, optionally extending a base module by name.
type Module struct {
	Name     string     `hcl:"name,label"`
	Extends  string     `hcl:"extends,optional"`
	Routines []*Routine `hcl:"routine,block"`
	Modules  []*Module  `hcl:"module,block"`
}

// Document represents the top-level structure of one routine document
// file; any combination of blocks may appear in any file.
type Document struct {
	Settings *Settings  `hcl:"settings,block"`
	Routines []*Routine `hcl:"routine,block"`
	Modules  []*Module  `hcl:"module,block"`
	Remain   hcl.Body   `hcl:",remain"`
}
