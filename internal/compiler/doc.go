// Package compiler translates a definition's formula text into a typed
// sequence of computation steps.
//
// Formula text is normalized (caret exponentiation and unicode superscripts
// rewritten into the whitelisted pow function), parsed into an HCL expression
// AST, and then every identifier in the AST is classified: a declared
// dependency id, an earlier explicit step, a registry helper or correction
// factor, or a whitelisted mathematical function. An identifier matching none
// of these fails compilation with UnresolvedSymbolError; there is no silent
// fallthrough to an undefined reference.
//
// Compilation is deterministic: the same (formula, dependencies) input
// produces an identical Program on every call.
package compiler
