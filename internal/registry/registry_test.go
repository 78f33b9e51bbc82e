package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/amogorkon/pipeduct/internal/registry"
	"github.com/amogorkon/pipeduct/internal/runtime"
)

func opaque(name string) runtime.Callable {
	return runtime.NewOpaque(name, func(_ context.Context, args []cty.Value) (cty.Value, error) {
		return cty.NilVal, nil
	})
}

func TestRegisterCallable(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterCallable("double", opaque("double")))

	c, ok := reg.ResolveCallable("double")
	require.True(t, ok)
	require.Equal(t, "double", c.Name())

	err := reg.RegisterCallable("double", opaque("double"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
}

func TestRegisterBuiltins(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterBuiltins())

	for _, name := range []string{"abs", "pow", "format", "length", "upper"} {
		_, ok := reg.ResolveCallable(name)
		require.True(t, ok, "builtin %s not registered", name)
	}
}

func TestResolveDottedPaths(t *testing.T) {
	reg := registry.New()

	geometry := runtime.NewModule("geometry", "geometry", "")
	ev := runtime.NewEvaluator(reg)
	area, err := runtime.NewRoutine(context.Background(), "area", "geometry.area", nil, nil, runtime.NewScope(nil), ev)
	require.NoError(t, err)
	require.NoError(t, geometry.AddRoutine(area))

	nested := runtime.NewModule("planar", "geometry.planar", "")
	perimeter, err := runtime.NewRoutine(context.Background(), "perimeter", "geometry.planar.perimeter", nil, nil, runtime.NewScope(nil), ev)
	require.NoError(t, err)
	require.NoError(t, nested.AddRoutine(perimeter))
	require.NoError(t, geometry.AddChild(nested))

	require.NoError(t, reg.RegisterModule(geometry))

	c, ok := reg.ResolveCallable("geometry.area")
	require.True(t, ok)
	require.Equal(t, "area", c.Name())

	c, ok = reg.ResolveCallable("geometry.planar.perimeter")
	require.True(t, ok)
	require.Equal(t, "perimeter", c.Name())

	_, ok = reg.ResolveCallable("geometry.volume")
	require.False(t, ok)
	_, ok = reg.ResolveCallable("space.area")
	require.False(t, ok)
	// The module itself is a namespace, not a callable.
	_, ok = reg.ResolveCallable("geometry")
	require.False(t, ok)
}

func TestResolveThroughBaseChain(t *testing.T) {
	reg := registry.New()
	ev := runtime.NewEvaluator(reg)

	base := runtime.NewModule("geometry", "geometry", "")
	area, err := runtime.NewRoutine(context.Background(), "area", "geometry.area", nil, nil, runtime.NewScope(nil), ev)
	require.NoError(t, err)
	require.NoError(t, base.AddRoutine(area))

	derived := runtime.NewModule("geometry3d", "geometry3d", "geometry")
	derived.SetBase(base)

	require.NoError(t, reg.RegisterModule(base))
	require.NoError(t, reg.RegisterModule(derived))

	c, ok := reg.ResolveCallable("geometry3d.area")
	require.True(t, ok)
	require.Equal(t, "area", c.Name())
}

func TestIsNamespace(t *testing.T) {
	reg := registry.New()
	geometry := runtime.NewModule("geometry", "geometry", "")
	nested := runtime.NewModule("planar", "geometry.planar", "")
	require.NoError(t, geometry.AddChild(nested))
	require.NoError(t, reg.RegisterModule(geometry))
	require.NoError(t, reg.RegisterCallable("double", opaque("double")))

	require.True(t, reg.IsNamespace("geometry"))
	require.True(t, reg.IsNamespace("geometry.planar"))
	require.False(t, reg.IsNamespace("geometry.missing"))
	require.False(t, reg.IsNamespace("double"))
}

func TestModuleNameCollisions(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterCallable("geometry", opaque("geometry")))

	err := reg.RegisterModule(runtime.NewModule("geometry", "geometry", ""))
	require.Error(t, err)
	require.Contains(t, err.Error(), "collides")

	require.NoError(t, reg.RegisterModule(runtime.NewModule("shapes", "shapes", "")))
	err = reg.RegisterModule(runtime.NewModule("shapes", "shapes", ""))
	require.Error(t, err)
}

func TestBeginTransform(t *testing.T) {
	reg := registry.New()
	require.False(t, reg.Transformed("routine:f"))
	require.True(t, reg.BeginTransform("routine:f"))
	require.False(t, reg.BeginTransform("routine:f"))
	require.True(t, reg.Transformed("routine:f"))

	// Distinct identities are tracked independently.
	require.True(t, reg.BeginTransform("routine:g"))
}
