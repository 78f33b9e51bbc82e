// Package sig is the signature introspector: it turns a callable into an
// ordered parameter descriptor list the placement resolver can reason
// about, caching the result per distinct callable.
package sig

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Kind classifies how a parameter may be filled.
type Kind int

const (
	Positional Kind = iota // positional-only
	PositionalOrKeyword
	KeywordOnly
	VariadicPositional
	VariadicKeyword
)

func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case PositionalOrKeyword:
		return "positional-or-keyword"
	case KeywordOnly:
		return "keyword-only"
	case VariadicPositional:
		return "variadic-positional"
	case VariadicKeyword:
		return "variadic-keyword"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Parameter is one entry of a callable's ordered parameter list.
type Parameter struct {
	Name       string
	Kind       Kind
	HasDefault bool
	// Marker is the declared type marker ("list", "num", ...) or "" when
	// the declaration carries none.
	Marker string
	// Type is the cty type constraint, cty.NilType when unconstrained.
	Type cty.Type
	// Sequence is set by the classifier when the declaration marks the
	// parameter as a general sequence.
	Sequence bool
}

// Describer is implemented by callables that expose their own parameter
// list (compiled routines, lambdas, registered natives).
type Describer interface {
	DescribeParams() []Parameter
}

// Identified is implemented by callables with a stable identity usable as
// a cache key. Callables without one are still described, just not cached.
type Identified interface {
	CallableID() string
}

// ErrOpaque reports a callable whose signature cannot be inspected. The
// resolver treats this as "pass the value as one argument".
var ErrOpaque = errors.New("callable signature is not inspectable")

// Classifier decides whether a parameter declaration marks a general
// sequence. It sees the declared marker (possibly empty) and the cty type
// constraint (possibly NilType).
type Classifier func(marker string, ty cty.Type) bool

// NewClassifier builds the default marker-set classifier: a parameter is a
// sequence when its marker is in the set or its cty constraint is a list,
// set, or tuple type. The marker set is configuration, not a hard-coded
// name list.
func NewClassifier(markers []string) Classifier {
	set := make(map[string]bool, len(markers))
	for _, m := range markers {
		set[m] = true
	}
	return func(marker string, ty cty.Type) bool {
		if set[marker] {
			return true
		}
		if ty == cty.NilType {
			return false
		}
		return ty.IsListType() || ty.IsSetType() || ty.IsTupleType()
	}
}

// MarkerType maps a scalar declaration marker onto its cty constraint.
// Sequence markers deliberately map to NilType: whether they mean
// "sequence" is the classifier's call, not a type constraint.
func MarkerType(marker string) cty.Type {
	switch marker {
	case "num":
		return cty.Number
	case "str":
		return cty.String
	case "bool":
		return cty.Bool
	default:
		return cty.NilType
	}
}

// Introspector computes and caches parameter descriptors.
type Introspector struct {
	classify Classifier

	mu    sync.Mutex
	cache map[string][]Parameter
}

// New creates an introspector with the given classifier. A nil classifier
// falls back to marker-free classification (cty types only).
func New(classify Classifier) *Introspector {
	if classify == nil {
		classify = NewClassifier(nil)
	}
	return &Introspector{
		classify: classify,
		cache:    make(map[string][]Parameter),
	}
}

// Describe returns the ordered parameter list for a callable, with the
// Sequence flag applied by the classifier. Results are cached for
// callables with a stable identity. Opaque callables yield ErrOpaque.
func (in *Introspector) Describe(callable any) ([]Parameter, error) {
	id := ""
	if ident, ok := callable.(Identified); ok {
		id = ident.CallableID()
		in.mu.Lock()
		if cached, hit := in.cache[id]; hit {
			in.mu.Unlock()
			return cached, nil
		}
		in.mu.Unlock()
	}

	params, err := in.describe(callable)
	if err != nil {
		return nil, err
	}

	if id != "" {
		in.mu.Lock()
		in.cache[id] = params
		in.mu.Unlock()
	}
	return params, nil
}

func (in *Introspector) describe(callable any) ([]Parameter, error) {
	switch c := callable.(type) {
	case Describer:
		return in.classified(c.DescribeParams()), nil
	case interface{ CtyFunction() function.Function }:
		return in.classified(fromCtyFunction(c.CtyFunction())), nil
	case function.Function:
		return in.classified(fromCtyFunction(c)), nil
	case *function.Function:
		return in.classified(fromCtyFunction(*c)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrOpaque, callable)
	}
}

// Classify applies the sequence classifier to a parameter list obtained
// outside the Describe path, such as a lambda literal's declared
// parameters during transform.
func (in *Introspector) Classify(params []Parameter) []Parameter {
	return in.classified(params)
}

func (in *Introspector) classified(params []Parameter) []Parameter {
	out := make([]Parameter, len(params))
	copy(out, params)
	for i := range out {
		out[i].Sequence = in.classify(out[i].Marker, out[i].Type)
	}
	return out
}

// fromCtyFunction derives descriptors from a cty function spec: fixed
// parameters are positional-only (cty has no keyword calling convention),
// the variadic parameter maps to a variadic-positional entry.
func fromCtyFunction(fn function.Function) []Parameter {
	var out []Parameter
	for _, p := range fn.Params() {
		out = append(out, Parameter{
			Name: p.Name,
			Kind: Positional,
			Type: p.Type,
		})
	}
	if vp := fn.VarParam(); vp != nil {
		out = append(out, Parameter{
			Name: vp.Name,
			Kind: VariadicPositional,
			Type: vp.Type,
		})
	}
	return out
}
