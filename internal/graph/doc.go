// Package graph builds and validates the dependency DAG over constant
// definition ids, and produces the deterministic topological closures the
// artifact generator consumes.
//
// A definition declaring an unknown dependency is excluded from the graph
// along with its transitive dependents; asking for such a definition's
// topological order reports the exclusion cause, and unrelated definitions
// are unaffected. Only the store-wide faults abort construction: a
// dependency cycle among computable definitions, or a store with no
// fundamental definitions.
package graph
