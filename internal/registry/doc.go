// Package registry provides the central glue between names appearing in
// routine documents and the compiled callables behind them.
//
// The Registry stores the named callable table (builtins, compiled
// routines, module namespaces) and the transformed-routine table that
// guarantees each routine is rewritten at most once. It is an explicit
// value with a clear lifecycle (created per app instance, entries
// inserted at most once, never deleted) and is injected wherever it is
// needed so tests can use isolated registries.
package registry
