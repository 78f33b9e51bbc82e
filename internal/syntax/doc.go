// Package syntax implements the duct expression language: the tokenizer,
// the recursive descent parser, the tagged-node expression/statement tree,
// a canonical printer, and the tree-walking utilities the transformer is
// built on.
//
// A routine body is a sequence of statements separated by newlines or
// semicolons. The value of the last executed statement is the routine's
// result unless an explicit `return` runs first. Expressions carry cty
// literals; all evaluation happens elsewhere. This package is purely
// structural.
package syntax
