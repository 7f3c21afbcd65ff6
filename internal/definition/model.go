package definition

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// idPattern constrains definition ids to lowercase slugs. Digits are allowed
// because the physics corpus uses ids like "c_3" and "phi_0".
var idPattern = regexp.MustCompile(`^[a-z][a-z_0-9]*$`)

// Constant is one declaratively defined constant: what it is, how to compute
// it, and what experimental reference to judge the computation against.
type Constant struct {
	ID     string `validate:"required"`
	Symbol string `validate:"required"`
	Name   string `validate:"required"`

	// Formula is the expression computing this constant. Axioms use a
	// numeric literal. Empty only when Steps is non-empty.
	Formula string

	// Steps is the explicit ordered step list escape hatch. When present it
	// replaces Formula; the last step's value is the constant's value.
	Steps []Step

	// Dependencies lists the ids whose computed values the formula reads.
	// Order is preserved from the definition file.
	Dependencies []string

	Category string
	Unit     string

	// CorrectionFactors names registry entries multiplied onto the
	// tree-level value, in declaration order.
	CorrectionFactors []string

	ExperimentalValue       float64
	ExperimentalUncertainty float64 `validate:"gte=0"`
	AccuracyTarget          float64 `validate:"gte=0"`
}

// Step is one named stage of an explicit step list.
type Step struct {
	Name    string
	Formula string
}

// IsAxiom reports whether the constant is a fundamental definition, i.e. a
// DAG leaf with no dependencies.
func (c *Constant) IsAxiom() bool {
	return len(c.Dependencies) == 0
}

var structValidator = validator.New()

// Validate checks the structural invariants of a single definition record.
// Cross-definition invariants (dependency resolution, acyclicity) belong to
// the graph builder.
func (c *Constant) Validate() error {
	if !idPattern.MatchString(c.ID) {
		return fmt.Errorf("invalid constant id %q: must match %s", c.ID, idPattern)
	}
	if c.Formula == "" && len(c.Steps) == 0 {
		return fmt.Errorf("constant %q: either a formula or a step list is required", c.ID)
	}
	if c.Formula != "" && len(c.Steps) > 0 {
		return fmt.Errorf("constant %q: formula and step list are mutually exclusive", c.ID)
	}
	if len(c.Steps) > 0 {
		deps := make(map[string]struct{}, len(c.Dependencies))
		for _, dep := range c.Dependencies {
			deps[dep] = struct{}{}
		}
		names := make(map[string]struct{}, len(c.Steps))
		for _, s := range c.Steps {
			if s.Name == "" || s.Formula == "" {
				return fmt.Errorf("constant %q: every step needs a name and a formula", c.ID)
			}
			// A colliding step name would silently shadow the other value
			// inside the execution scope.
			if s.Name == c.ID {
				return fmt.Errorf("constant %q: step %q reuses the constant's own id", c.ID, s.Name)
			}
			if _, taken := deps[s.Name]; taken {
				return fmt.Errorf("constant %q: step %q shadows a declared dependency", c.ID, s.Name)
			}
			if _, taken := names[s.Name]; taken {
				return fmt.Errorf("constant %q: duplicate step name %q", c.ID, s.Name)
			}
			names[s.Name] = struct{}{}
		}
	}
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("constant %q: %w", c.ID, err)
	}
	return nil
}
