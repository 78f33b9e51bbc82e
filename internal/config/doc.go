// Package config defines the format-agnostic configuration model for the
// transformer, along with the Loader interface for reading routine
// documents from various sources.
//
// The config.Model is the single source of truth for the app wiring: it
// carries the parsed routine and module definitions plus the transformer
// options (pipe associativity, unpacking policy, sequence markers). The
// concrete HCL implementation of the Loader interface lives in the loader
// package.
package config
