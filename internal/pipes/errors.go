package pipes

import (
	"fmt"

	"github.com/amogorkon/pipeduct/internal/syntax"
)

// ErrorKind discriminates the structural violations a transform can hit.
type ErrorKind int

const (
	// MultiplePlaceholders marks a stage whose argument list contains the
	// placeholder token more than once.
	MultiplePlaceholders ErrorKind = iota
	// PlaceholderInitialValue marks a placeholder used as, or inside, the
	// chain's leftmost value.
	PlaceholderInitialValue
	// ArityMismatch marks a statically decidable unpack that cannot fill
	// the stage's required parameters, or overfills them.
	ArityMismatch
	// BadTarget marks a transform applied to something that is neither a
	// routine nor a module of routines.
	BadTarget
	// StrayPlaceholder marks the placeholder token outside a stage's call
	// arguments, where no insertion point exists for it.
	StrayPlaceholder
)

func (k ErrorKind) String() string {
	switch k {
	case MultiplePlaceholders:
		return "multiple placeholders"
	case PlaceholderInitialValue:
		return "placeholder on initial value"
	case ArityMismatch:
		return "arity mismatch"
	case BadTarget:
		return "bad transform target"
	case StrayPlaceholder:
		return "stray placeholder"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// TransformError is the single distinguished error kind raised for
// structural violations found while rewriting pipe chains. A transform
// error aborts the whole compilation of the routine that triggered it.
type TransformError struct {
	Kind ErrorKind
	Msg  string
	Pos  syntax.Pos
}

func (e *TransformError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("pipe transform: %s: %s (at %d:%d)", e.Kind, e.Msg, e.Pos.Line, e.Pos.Column)
	}
	return fmt.Sprintf("pipe transform: %s: %s", e.Kind, e.Msg)
}

func errAt(kind ErrorKind, pos syntax.Pos, format string, args ...any) *TransformError {
	return &TransformError{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}
