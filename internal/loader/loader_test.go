package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amogorkon/pipeduct/internal/config"
	"github.com/amogorkon/pipeduct/internal/loader"
)

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestLoad_Routines(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"pipeline.hcl": `
routine "double" {
  description = "Doubles a number."
  params      = ["x"]
  body        = "x * 2"
}

routine "process" {
  params = ["x"]
  body   = "x |> double |> double"
}
`,
	})

	model, err := loader.NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Routines, 2)
	require.Equal(t, "double", model.Routines[0].Name)
	require.Equal(t, "Doubles a number.", model.Routines[0].Description)
	require.Equal(t, []string{"x"}, model.Routines[0].Params)
	require.Equal(t, "x |> double |> double", model.Routines[1].Body)

	// No settings block leaves the defaults in place.
	require.Equal(t, config.AssocLeft, model.Options.Associativity)
	require.Equal(t, config.PolicyShape, model.Options.Policy)
	require.Equal(t, config.DefaultSequenceMarkers, model.Options.SequenceMarkers)
}

func TestLoad_Modules(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"geometry.hcl": `
module "geometry" {
  routine "area" {
    params = ["w", "h"]
    body   = "w * h"
  }

  module "planar" {
    routine "perimeter" {
      params = ["w", "h"]
      body   = "(w + h) * 2"
    }
  }
}

module "geometry3d" {
  extends = "geometry"

  routine "volume" {
    params = ["w", "h", "d"]
    body   = "w * h * d"
  }
}
`,
	})

	model, err := loader.NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Modules, 2)

	geometry := model.Modules[0]
	require.Equal(t, "geometry", geometry.Name)
	require.Empty(t, geometry.Extends)
	require.Len(t, geometry.Routines, 1)
	require.Len(t, geometry.Modules, 1)
	require.Equal(t, "perimeter", geometry.Modules[0].Routines[0].Name)

	require.Equal(t, "geometry", model.Modules[1].Extends)
}

func TestLoad_SettingsOverrideInPathOrder(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"a_settings.hcl": `
settings {
  pipe_associativity = "right"
  unpack_policy      = "annotation"
}
`,
		"b_settings.hcl": `
settings {
  pipe_associativity = "left"
  sequence_markers   = ["vector"]
}
`,
	})

	model, err := loader.NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	// The later file overrides associativity and markers but leaves the
	// policy from the earlier file untouched.
	require.Equal(t, config.AssocLeft, model.Options.Associativity)
	require.Equal(t, config.PolicyAnnotation, model.Options.Policy)
	require.Equal(t, []string{"vector"}, model.Options.SequenceMarkers)
}

func TestLoad_MergesMultiplePathsAndSkipsOtherFiles(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"docs/one.hcl":   `routine "a" { body = "1" }`,
		"docs/two.hcl":   `routine "b" { body = "2" }`,
		"docs/notes.txt": "not a document",
	})
	single := writeDocs(t, map[string]string{
		"three.hcl": `routine "c" { body = "3" }`,
	})

	model, err := loader.NewLoader().Load(context.Background(),
		filepath.Join(dir, "docs"), filepath.Join(single, "three.hcl"))
	require.NoError(t, err)
	require.Len(t, model.Routines, 3)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("nonexistent path", func(t *testing.T) {
		_, err := loader.NewLoader().Load(context.Background(), "/does/not/exist")
		require.Error(t, err)
		require.Contains(t, err.Error(), "error accessing path")
	})

	t.Run("malformed document", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{
			"broken.hcl": `routine "x" {`,
		})
		_, err := loader.NewLoader().Load(context.Background(), dir)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse document")
	})

	t.Run("missing required attribute", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{
			"nobody.hcl": `routine "x" { params = ["x"] }`,
		})
		_, err := loader.NewLoader().Load(context.Background(), dir)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to decode document")
	})

	t.Run("invalid settings value", func(t *testing.T) {
		dir := writeDocs(t, map[string]string{
			"settings.hcl": `settings { unpack_policy = "sideways" }`,
		})
		_, err := loader.NewLoader().Load(context.Background(), dir)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid unpack_policy")
	})
}
