// Package registry holds the immutable set of named pure functions a formula
// may invoke: the fixed mathematical whitelist, the theory's helper functions
// (cascade VEVs), and the correction factors applied on top of tree-level
// values.
//
// The registry is constructed once from the fundamental parameters and
// injected into the compiler and executor. There is no global state and no
// way to register anything after construction: a name either resolves here
// or compilation fails.
package registry
