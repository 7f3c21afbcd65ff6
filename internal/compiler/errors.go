package compiler

import "fmt"

// UnresolvedSymbolError reports an identifier in a formula that is neither a
// declared dependency, an earlier step, a registry function, nor a
// whitelisted mathematical function.
type UnresolvedSymbolError struct {
	Constant string
	Symbol   string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("constant %q: unresolved symbol %q", e.Constant, e.Symbol)
}
