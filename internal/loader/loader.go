// Package loader provides the concrete HCL implementation of the
// config.Loader interface: file discovery, parsing, and translation of
// routine documents into the format-agnostic model.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/amogorkon/pipeduct/internal/config"
	"github.com/amogorkon/pipeduct/internal/ctxlog"
	"github.com/amogorkon/pipeduct/internal/schema"
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL document loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every .hcl file reachable from the given paths, decodes the
// routine documents, and merges them into one model. Files are processed
// in sorted path order so settings overrides are deterministic.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findDocumentFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered document files.", "count", len(files))

	model := &config.Model{Options: config.Default()}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse document %s: %w", file, diags)
		}

		var doc schema.Document
		diags = gohcl.DecodeBody(hclFile.Body, nil, &doc)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode document %s: %w", file, diags)
		}

		if doc.Settings != nil {
			if err := applySettings(model.Options, doc.Settings); err != nil {
				return nil, fmt.Errorf("invalid settings in %s: %w", file, err)
			}
		}
		for _, r := range doc.Routines {
			model.Routines = append(model.Routines, translateRoutine(r))
		}
		for _, m := range doc.Modules {
			model.Modules = append(model.Modules, translateModule(m))
		}
	}

	logger.Debug("HCL loading complete.",
		"routines", len(model.Routines), "modules", len(model.Modules))
	return model, nil
}

// findDocumentFiles walks all given paths and returns a sorted, deduplicated
// list of .hcl files. A path that does not exist is an error; an existing
// directory containing no documents is not.
func (l *Loader) findDocumentFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, dup := seen[p]; !dup {
			files = append(files, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func applySettings(opts *config.Options, s *schema.Settings) error {
	if s.PipeAssociativity != "" {
		assoc, err := config.ParseAssociativity(s.PipeAssociativity)
		if err != nil {
			return err
		}
		opts.Associativity = assoc
	}
	if s.UnpackPolicy != "" {
		policy, err := config.ParseUnpackPolicy(s.UnpackPolicy)
		if err != nil {
			return err
		}
		opts.Policy = policy
	}
	if len(s.SequenceMarkers) > 0 {
		opts.SequenceMarkers = s.SequenceMarkers
	}
	return nil
}

func translateRoutine(r *schema.Routine) *config.RoutineDefinition {
	return &config.RoutineDefinition{
		Name:        r.Name,
		Description: r.Description,
		Params:      r.Params,
		Body:        r.Body,
	}
}

func translateModule(m *schema.Module) *config.ModuleDefinition {
	out := &config.ModuleDefinition{
		Name:    m.Name,
		Extends: m.Extends,
	}
	for _, r := range m.Routines {
		out.Routines = append(out.Routines, translateRoutine(r))
	}
	for _, child := range m.Modules {
		out.Modules = append(out.Modules, translateModule(child))
	}
	return out
}
