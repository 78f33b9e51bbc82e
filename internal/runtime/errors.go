package runtime

import (
	"fmt"
	"strings"
)

// ArityError reports a call whose arguments cannot be bound to the
// callee's parameters: required parameters left unfilled, excess
// positional arguments with no variadic parameter to absorb them, or an
// argument keyword matching no parameter.
type ArityError struct {
	Callee     string
	Missing    []string // unfilled required parameter names
	Extra      int      // count of excess positional arguments
	BadKeyword string
}

func (e *ArityError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("%s: missing required arguments: %s",
			e.Callee, strings.Join(e.Missing, ", "))
	case e.Extra > 0:
		return fmt.Sprintf("%s: too many arguments (%d excess)", e.Callee, e.Extra)
	case e.BadKeyword != "":
		return fmt.Sprintf("%s: unexpected keyword argument %q", e.Callee, e.BadKeyword)
	}
	return fmt.Sprintf("%s: arguments do not match parameters", e.Callee)
}

// ScopeError reports a name that resolves in no lexical scope and is not
// a registered global.
type ScopeError struct {
	Name   string
	Within string // routine or context the name was referenced from
}

func (e *ScopeError) Error() string {
	if e.Within == "" {
		return fmt.Sprintf("name %q is not defined", e.Name)
	}
	return fmt.Sprintf("name %q is not defined in %s", e.Name, e.Within)
}
