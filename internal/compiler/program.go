package compiler

import (
	"fmt"
	"strings"
)

// Step is one typed computation step: evaluate Source and bind the result to
// ID. InputIDs lists every previously-computed value the source reads, in
// lexical order.
type Step struct {
	ID       string
	Source   string
	InputIDs []string
}

// Program is the compiled form of one definition: its ordered steps plus the
// audit list of correction factors it applies.
type Program struct {
	ConstantID string

	// Steps run strictly in order. Intermediate steps bind local names; the
	// final step binds the constant's value under ConstantID.
	Steps []Step

	// Corrections records which correction factors the program invokes,
	// declared ones first in declaration order, then any invoked directly
	// from formula text in lexical order.
	Corrections []string
}

// FinalStep returns the step producing the constant's value.
func (p *Program) FinalStep() Step {
	return p.Steps[len(p.Steps)-1]
}

// Encode renders the program in its canonical one-line-per-step form. Two
// compilations of the same input encode identically, which is what artifact
// fingerprinting relies on.
func (p *Program) Encode() string {
	var b strings.Builder
	for _, s := range p.Steps {
		fmt.Fprintf(&b, "%s := %s [inputs: %s]\n", s.ID, s.Source, strings.Join(s.InputIDs, ","))
	}
	if len(p.Corrections) > 0 {
		fmt.Fprintf(&b, "corrections: %s\n", strings.Join(p.Corrections, ","))
	}
	return b.String()
}
