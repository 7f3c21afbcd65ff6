// Package artifact assembles self-contained computation units.
//
// One artifact covers the full transitive closure of one target definition,
// from axioms upward, plus an embedded accuracy-comparison stage. An
// artifact references nothing outside its own step list and the fixed
// registry function whitelist: no other artifact's runtime state, no
// network, no definition store. Generating the same target twice yields a
// byte-identical artifact with an equal fingerprint.
package artifact
