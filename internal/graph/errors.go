package graph

import (
	"fmt"
	"strings"
)

// UnknownDependencyError reports a declared dependency id that resolves to
// no definition in the store.
type UnknownDependencyError struct {
	Constant string
	Missing  string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("constant %q depends on unknown constant %q", e.Constant, e.Missing)
}

// CycleError reports a dependency cycle. Path holds the offending cycle in
// order, with the first id repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// NoFundamentalConstantsError reports a definition store in which every
// definition has dependencies, leaving the graph without axioms.
type NoFundamentalConstantsError struct{}

func (e *NoFundamentalConstantsError) Error() string {
	return "no fundamental constants: every definition declares dependencies"
}
