package runtime

import (
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Builtins returns the standard callable set, adapters over the cty
// stdlib. Every entry is introspectable through its function spec; the
// fixed parameters are positional-only and variadic specs absorb the
// rest, which is exactly how the placement resolver treats them.
func Builtins() []Callable {
	return []Callable{
		NewCtyFunc("abs", stdlib.AbsoluteFunc),
		NewCtyFunc("ceil", stdlib.CeilFunc),
		NewCtyFunc("floor", stdlib.FloorFunc),
		NewCtyFunc("int", stdlib.IntFunc),
		NewCtyFunc("pow", stdlib.PowFunc),
		NewCtyFunc("min", stdlib.MinFunc),
		NewCtyFunc("max", stdlib.MaxFunc),

		NewCtyFunc("upper", stdlib.UpperFunc),
		NewCtyFunc("lower", stdlib.LowerFunc),
		NewCtyFunc("reverse", stdlib.ReverseFunc),
		NewCtyFunc("strlen", stdlib.StrlenFunc),
		NewCtyFunc("format", stdlib.FormatFunc),

		NewCtyFunc("length", stdlib.LengthFunc),
		NewCtyFunc("range", stdlib.RangeFunc),
	}
}
