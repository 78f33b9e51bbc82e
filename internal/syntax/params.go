package syntax

import (
	"fmt"
	"strings"
)

// ParseParams turns the raw parameter declaration strings of a routine
// block into ParamDecls. Each entry declares one parameter, for example
// "x", "xs: list", "k = 1", "*rest" or "**extra". The bare entries "/" and
// "*" are separators in the conventional sense: parameters before "/" are
// positional-only, parameters after "*" are keyword-only.
func ParseParams(raw []string) ([]ParamDecl, error) {
	var (
		decls       []ParamDecl
		keywordOnly bool
		posOnlyUpTo = -1
	)
	for _, entry := range raw {
		trimmed := strings.TrimSpace(entry)
		switch trimmed {
		case "":
			return nil, fmt.Errorf("empty parameter declaration")
		case "/":
			posOnlyUpTo = len(decls)
			continue
		case "*":
			keywordOnly = true
			continue
		}

		p, err := newParser(trimmed, GroupLeft)
		if err != nil {
			return nil, err
		}
		decl, err := p.parseParamDecl()
		if err != nil {
			return nil, fmt.Errorf("invalid parameter declaration %q: %w", entry, err)
		}
		if p.tok.Type != TokenEOF {
			return nil, fmt.Errorf("invalid parameter declaration %q: trailing %s", entry, p.tok.Type)
		}
		if decl.VariadicPos {
			keywordOnly = true
		}
		if keywordOnly && !decl.VariadicPos && !decl.VariadicKW {
			decl.KeywordOnly = true
		}
		decls = append(decls, decl)
	}
	for i := 0; i < posOnlyUpTo && i < len(decls); i++ {
		decls[i].PositionalOnly = true
	}
	if err := validateParams(decls); err != nil {
		return nil, err
	}
	return decls, nil
}

func validateParams(decls []ParamDecl) error {
	seen := make(map[string]bool, len(decls))
	varPos, varKW := false, false
	for _, d := range decls {
		if seen[d.Name] {
			return fmt.Errorf("duplicate parameter %q", d.Name)
		}
		seen[d.Name] = true
		if d.VariadicPos {
			if varPos {
				return fmt.Errorf("multiple variadic positional parameters")
			}
			varPos = true
		}
		if d.VariadicKW {
			if varKW {
				return fmt.Errorf("multiple variadic keyword parameters")
			}
			varKW = true
		}
	}
	return nil
}
