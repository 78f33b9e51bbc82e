package config

import "fmt"

// Associativity selects how the parser groups chained pipe operators.
type Associativity int

const (
	// AssocLeft groups a |> b |> c as ((a |> b) |> c). This is the default
	// and matches left-to-right data flow.
	AssocLeft Associativity = iota
	// AssocRight groups a |> b |> c as (a |> (b |> c)). The linearizer
	// flattens either grouping into the same left-to-right stage order.
	AssocRight
)

// UnpackPolicy selects which variant of the unpacking decision the
// placement resolver applies.
type UnpackPolicy int

const (
	// PolicyShape is the tuple/list + arity driven policy: statically
	// tuple-shaped values unpack, list-shaped values pass as one, unknown
	// shapes defer the decision to call time.
	PolicyShape UnpackPolicy = iota
	// PolicyAnnotation is the older annotation-driven variant: any
	// statically sequence-shaped value (tuple or list) unpacks into a
	// multi-parameter stage unless the receiving parameter is declared as
	// a sequence.
	PolicyAnnotation
)

// DefaultSequenceMarkers is the closed set of type markers the default
// classifier treats as "general sequence" declarations.
var DefaultSequenceMarkers = []string{"list", "tuple", "seq"}

// Options carries every tunable of the transformer. The zero value is not
// usable; call Default.
type Options struct {
	Associativity   Associativity
	Policy          UnpackPolicy
	SequenceMarkers []string

	LogLevel  string
	LogFormat string
}

// Default returns the canonical option set: left-associative pipes, the
// shape-driven unpacking policy, and the default sequence-marker set.
func Default() *Options {
	return &Options{
		Associativity:   AssocLeft,
		Policy:          PolicyShape,
		SequenceMarkers: DefaultSequenceMarkers,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// ParseAssociativity maps a settings string onto an Associativity.
func ParseAssociativity(s string) (Associativity, error) {
	switch s {
	case "", "left":
		return AssocLeft, nil
	case "right":
		return AssocRight, nil
	default:
		return AssocLeft, fmt.Errorf("invalid pipe_associativity %q: must be 'left' or 'right'", s)
	}
}

// ParseUnpackPolicy maps a settings string onto an UnpackPolicy.
func ParseUnpackPolicy(s string) (UnpackPolicy, error) {
	switch s {
	case "", "shape":
		return PolicyShape, nil
	case "annotation":
		return PolicyAnnotation, nil
	default:
		return PolicyShape, fmt.Errorf("invalid unpack_policy %q: must be 'shape' or 'annotation'", s)
	}
}
