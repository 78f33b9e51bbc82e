// Package pipes implements the pipe-chain transform: it linearizes chains
// of the |> operator inside a routine body, decides per stage how the
// incoming value is placed into the next call (placeholder-directed,
// unpacked, or passed as one argument), rewires capture bindings to the
// post-call result, and substitutes the resulting nested-call tree for the
// original body. The transform runs once per routine, at load time, and is
// a pure tree-to-tree computation.
package pipes
