package executor

import (
	"context"
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/topoconst/internal/artifact"
)

// runArtifact interprets an artifact's units strictly in their generated
// topological order. A value is always computed before anything reads it;
// that is enforced at generation time, not re-checked here.
func (e *Executor) runArtifact(ctx context.Context, art *artifact.Artifact) (res Result) {
	res = Result{TargetID: art.TargetID, Corrections: art.Corrections()}

	// The artifact contract: whatever goes wrong inside, exactly one result
	// comes out.
	defer func() {
		if r := recover(); r != nil {
			err := &ArtifactRuntimeError{ID: art.TargetID, Detail: fmt.Sprintf("panic: %v", r)}
			res = Result{
				TargetID:    art.TargetID,
				Status:      StatusFailure,
				Corrections: art.Corrections(),
				Diagnostic:  err.Error(),
			}
		}
	}()

	funcs := e.reg.Functions()
	computed := map[string]cty.Value{
		"pi": cty.NumberFloatVal(math.Pi),
	}

	for _, unit := range art.Units {
		// Each unit evaluates in its own scope: previously computed
		// constants plus the unit's own intermediate steps.
		scope := make(map[string]cty.Value, len(computed)+len(unit.Steps))
		for k, v := range computed {
			scope[k] = v
		}

		for _, step := range unit.Steps {
			if err := ctx.Err(); err != nil {
				return e.failure(art, fmt.Sprintf("canceled at step %q: %v", step.ID, err))
			}

			value, err := evalStep(step.ID, step.Source, scope, funcs)
			if err != nil {
				return e.failure(art, err.Error())
			}
			scope[step.ID] = value
		}

		// The unit's final step is bound under the constant id; locals are
		// discarded with the scope.
		computed[unit.ConstantID] = scope[unit.ConstantID]
	}

	final, ok := computed[art.TargetID]
	if !ok {
		return e.failure(art, "no final value produced")
	}
	v, _ := final.AsBigFloat().Float64()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return e.failure(art, fmt.Sprintf("final value is not finite: %v", v))
	}
	res.Value = &v
	res.Status = StatusSuccess

	// Embedded accuracy stage.
	if art.Accuracy.MeasuredValue != 0 {
		rel := (v - art.Accuracy.MeasuredValue) / art.Accuracy.MeasuredValue
		res.RelativeError = &rel
		res.AccuracyMet = math.Abs(rel) <= art.Accuracy.AccuracyTarget
	} else {
		res.Diagnostic = "no experimental reference value; accuracy not assessed"
	}

	return res
}

func (e *Executor) failure(art *artifact.Artifact, detail string) Result {
	err := &ArtifactRuntimeError{ID: art.TargetID, Detail: detail}
	return Result{
		TargetID:    art.TargetID,
		Status:      StatusFailure,
		Corrections: art.Corrections(),
		Diagnostic:  err.Error(),
	}
}

// evalStep parses and evaluates one step expression against the scope.
func evalStep(id, source string, scope map[string]cty.Value, funcs map[string]function.Function) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(source), id, hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("step %q: parsing: %s", id, diags.Error())
	}

	evalCtx := &hcl.EvalContext{Variables: scope, Functions: funcs}
	value, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("step %q: evaluating: %s", id, diags.Error())
	}
	if value.Type() != cty.Number {
		return cty.NilVal, fmt.Errorf("step %q: produced %s, want number", id, value.Type().FriendlyName())
	}

	f, _ := value.AsBigFloat().Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return cty.NilVal, fmt.Errorf("step %q: value is not finite", id)
	}
	return value, nil
}
