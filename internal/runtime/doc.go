// Package runtime executes transformed routine bodies over cty values.
//
// It provides the callable abstraction (compiled routines, inline
// closures, registered natives, and adapters over cty stdlib functions),
// the argument binder that enforces parameter kinds and defaults, the
// explicit lexical scope chain, and the tree-walking evaluator. Binary and
// unary operators delegate to the hclsyntax operation implementations so
// arithmetic behaves exactly as it does in HCL expressions.
package runtime
