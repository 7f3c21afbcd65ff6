// Package definition holds the constant definition model, the loaders that
// populate it from declarative files, and the read-only store handed to the
// rest of the pipeline.
//
// Definitions arrive in two syntaxes: native HCL `constant` blocks, and the
// per-constant JSON files produced by the legacy data pipeline. Both decode
// into the same Constant model, so everything downstream of the loader is
// syntax-agnostic.
package definition
