package integration_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amogorkon/pipeduct/internal/runtime"
	"github.com/amogorkon/pipeduct/internal/testutil"
)

const geometryDocs = `
module "geometry" {
  routine "area" {
    params = ["w", "h"]
    body   = "w * h"
  }

  routine "perimeter" {
    params = ["w", "h"]
    body   = "(w + h) * 2"
  }
}

module "geometry3d" {
  extends = "geometry"

  routine "volume" {
    params = ["w", "h", "d"]
    body   = "geometry.area(w, h) * d"
  }
}
`

func TestModules_DottedCalls(t *testing.T) {
	t.Parallel()

	files := map[string]string{"geometry.hcl": geometryDocs}

	_, got := testutil.MustCall(t, files, "geometry.area", "2", "3")
	require.Equal(t, "6", got)

	_, got = testutil.MustCall(t, files, "geometry.perimeter", "2", "3")
	require.Equal(t, "10", got)
}

func TestModules_ExtendsInheritsRoutines(t *testing.T) {
	t.Parallel()

	files := map[string]string{"geometry.hcl": geometryDocs}

	// area is inherited from the base module through extends.
	_, got := testutil.MustCall(t, files, "geometry3d.area", "2", "3")
	require.Equal(t, "6", got)

	_, got = testutil.MustCall(t, files, "geometry3d.volume", "2", "3", "4")
	require.Equal(t, "24", got)
}

func TestModules_RoutinesJoinPipeChains(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"geometry.hcl": geometryDocs,
		"main.hcl": `
routine "doubled_area" {
  params = ["w", "h"]
  body   = "(w, h) |> geometry.area |> (\\a -> a * 2)"
}
`,
	}

	_, got := testutil.MustCall(t, files, "doubled_area", "2", "3")
	require.Equal(t, "12", got)
}

func TestModules_NestedModules(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"shapes.hcl": `
module "shapes" {
  module "round" {
    routine "scale" {
      params = ["r", "k = 2"]
      body   = "r * k"
    }
  }
}
`,
	}

	_, got := testutil.MustCall(t, files, "shapes.round.scale", "5")
	require.Equal(t, "10", got)
}

func TestModules_ModuleBodiesAreTransformed(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"math.hcl": mathDocs,
		"ops.hcl": `
module "ops" {
  routine "bump_twice" {
    params = ["x"]
    body   = "x |> add_one |> add_one"
  }
}
`,
	}

	_, got := testutil.MustCall(t, files, "ops.bump_twice", "5")
	require.Equal(t, "7", got)
}

func TestModules_ExtendingUnknownModuleFails(t *testing.T) {
	t.Parallel()

	result := testutil.CompileDocs(t, map[string]string{
		"broken.hcl": `
module "derived" {
  extends = "never_declared"
}
`,
	})
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "extends unknown module")
}

func TestModules_UnresolvableNameFailsAtStartup(t *testing.T) {
	t.Parallel()

	result := testutil.CompileDocs(t, map[string]string{
		"broken.hcl": `
routine "broken" {
  params = ["x"]
  body   = "x |> vanished"
}
`,
	})
	var scope *runtime.ScopeError
	require.ErrorAs(t, result.Err, &scope)
	require.Equal(t, "vanished", scope.Name)
	require.Equal(t, "broken", scope.Within)
}

func TestModules_CallingUnknownRoutine(t *testing.T) {
	t.Parallel()

	result := testutil.CompileDocs(t, map[string]string{"geometry.hcl": geometryDocs})
	require.NoError(t, result.Err)

	_, err := result.App.CallRoutine(context.Background(), "geometry.vanished")
	var scope *runtime.ScopeError
	require.ErrorAs(t, err, &scope)
	require.Equal(t, "geometry.vanished", scope.Name)
}
