package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/vk/topoconst/internal/definition"
	"github.com/vk/topoconst/internal/registry"
)

// builtinVariables are identifiers bound by the executor itself rather than
// by a dependency value.
var builtinVariables = map[string]struct{}{
	"pi": {},
}

// Compiler turns definitions into Programs. The correction-factor registry
// is injected at construction and never mutated afterwards.
type Compiler struct {
	reg *registry.Registry
}

// New returns a Compiler over the given registry.
func New(reg *registry.Registry) *Compiler {
	return &Compiler{reg: reg}
}

// Compile translates one definition into a Program. Every identifier in the
// formula must classify as a declared dependency, an earlier explicit step,
// a registry function, or a whitelisted mathematical function; anything else
// fails with UnresolvedSymbolError.
func (c *Compiler) Compile(def *definition.Constant) (*Program, error) {
	prog := &Program{ConstantID: def.ID}

	for _, name := range def.CorrectionFactors {
		if !c.reg.IsCorrection(name) {
			return nil, &UnresolvedSymbolError{Constant: def.ID, Symbol: name}
		}
		prog.Corrections = append(prog.Corrections, name)
	}

	known := make(map[string]struct{}, len(def.Dependencies))
	for _, dep := range def.Dependencies {
		known[dep] = struct{}{}
	}

	invoked := make(map[string]struct{})

	if len(def.Steps) > 0 {
		locals := make(map[string]struct{}, len(def.Steps))
		for i, s := range def.Steps {
			step, err := c.compileStep(def.ID, s.Name, s.Formula, known, locals, invoked)
			if err != nil {
				return nil, err
			}
			if i == len(def.Steps)-1 {
				// The last step's value is the constant's value.
				step = c.applyCorrections(def, Step{ID: def.ID, Source: step.Source, InputIDs: step.InputIDs})
			} else {
				locals[s.Name] = struct{}{}
			}
			prog.Steps = append(prog.Steps, step)
		}
	} else {
		step, err := c.compileStep(def.ID, def.ID, def.Formula, known, nil, invoked)
		if err != nil {
			return nil, err
		}
		prog.Steps = append(prog.Steps, c.applyCorrections(def, step))
	}

	// Directly-invoked correction factors join the audit list after the
	// declared ones, deduplicated, in lexical order.
	declared := make(map[string]struct{}, len(prog.Corrections))
	for _, name := range prog.Corrections {
		declared[name] = struct{}{}
	}
	var extra []string
	for name := range invoked {
		if _, ok := declared[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	prog.Corrections = append(prog.Corrections, extra...)

	return prog, nil
}

// compileStep normalizes, parses, and classifies a single formula.
func (c *Compiler) compileStep(constantID, stepID, formula string, deps, locals map[string]struct{}, invoked map[string]struct{}) (Step, error) {
	src := Normalize(formula)

	expr, diags := hclsyntax.ParseExpression([]byte(src), constantID+"/"+stepID, hcl.InitialPos)
	if diags.HasErrors() {
		return Step{}, fmt.Errorf("constant %q: parsing formula for %q: %w", constantID, stepID, diags)
	}

	inputs := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		name := traversal.RootName()
		if len(traversal) > 1 {
			return Step{}, &UnresolvedSymbolError{Constant: constantID, Symbol: traversalString(traversal)}
		}
		if _, ok := builtinVariables[name]; ok {
			continue
		}
		if _, ok := deps[name]; ok {
			inputs[name] = struct{}{}
			continue
		}
		if locals != nil {
			if _, ok := locals[name]; ok {
				inputs[name] = struct{}{}
				continue
			}
		}
		return Step{}, &UnresolvedSymbolError{Constant: constantID, Symbol: name}
	}

	for _, name := range functionCalls(expr) {
		if !c.reg.HasFunction(name) {
			return Step{}, &UnresolvedSymbolError{Constant: constantID, Symbol: name}
		}
		if c.reg.IsCorrection(name) {
			invoked[name] = struct{}{}
		}
	}

	step := Step{ID: stepID, Source: src}
	for name := range inputs {
		step.InputIDs = append(step.InputIDs, name)
	}
	sort.Strings(step.InputIDs)
	return step, nil
}

// applyCorrections rewrites the final step so the declared correction
// factors multiply the tree-level value in declaration order. The rewrite is
// textual and goes through the same parser as everything else, so a bogus
// correction name can never slip past classification.
func (c *Compiler) applyCorrections(def *definition.Constant, step Step) Step {
	if len(def.CorrectionFactors) == 0 {
		return step
	}
	var b strings.Builder
	fmt.Fprintf(&b, "(%s)", step.Source)
	for _, name := range def.CorrectionFactors {
		fmt.Fprintf(&b, " * %s()", name)
	}
	return Step{ID: step.ID, Source: b.String(), InputIDs: step.InputIDs}
}

// funcCollector gathers function call names from an expression AST.
type funcCollector struct {
	names map[string]struct{}
}

func (w *funcCollector) Enter(node hclsyntax.Node) hcl.Diagnostics {
	if call, ok := node.(*hclsyntax.FunctionCallExpr); ok {
		w.names[call.Name] = struct{}{}
	}
	return nil
}

func (w *funcCollector) Exit(node hclsyntax.Node) hcl.Diagnostics {
	return nil
}

// functionCalls returns every function name invoked anywhere in the
// expression, in lexical order.
func functionCalls(expr hcl.Expression) []string {
	syntaxExpr, ok := expr.(hclsyntax.Expression)
	if !ok {
		return nil
	}
	w := &funcCollector{names: make(map[string]struct{})}
	hclsyntax.Walk(syntaxExpr, w)

	out := make([]string, 0, len(w.names))
	for name := range w.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func traversalString(t hcl.Traversal) string {
	var b strings.Builder
	for _, part := range t {
		switch p := part.(type) {
		case hcl.TraverseRoot:
			b.WriteString(p.Name)
		case hcl.TraverseAttr:
			b.WriteString("." + p.Name)
		}
	}
	return b.String()
}
