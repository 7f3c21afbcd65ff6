package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/topoconst/internal/compiler"
	"github.com/vk/topoconst/internal/definition"
	"github.com/vk/topoconst/internal/graph"
	"github.com/vk/topoconst/internal/registry"
)

func newGenerator(t *testing.T, defs ...*definition.Constant) *Generator {
	t.Helper()
	for _, def := range defs {
		if def.Symbol == "" {
			def.Symbol = def.ID
		}
		if def.Name == "" {
			def.Name = def.ID
		}
	}
	store, err := definition.NewStore(defs)
	require.NoError(t, err)
	g, err := graph.Build(context.Background(), store)
	require.NoError(t, err)
	return NewGenerator(store, g, compiler.New(registry.New(registry.DefaultFundamentals())))
}

func TestGenerate_ClosureInOrder(t *testing.T) {
	gen := newGenerator(t,
		&definition.Constant{ID: "phi_0", Formula: "0.053171"},
		&definition.Constant{ID: "m_planck", Formula: "1.2209e19"},
		&definition.Constant{
			ID:                 "m_proton",
			Formula:            "m_planck * phi_0^15",
			Dependencies:       []string{"m_planck", "phi_0"},
			ExperimentalValue:  0.93827,
			AccuracyTarget:     0.01,
			Unit:               "GeV",
		},
		&definition.Constant{ID: "unrelated", Formula: "1.0"},
	)

	art, err := gen.Generate(context.Background(), "m_proton")
	require.NoError(t, err)

	require.Len(t, art.Units, 3)
	assert.Equal(t, "m_planck", art.Units[0].ConstantID)
	assert.Equal(t, "phi_0", art.Units[1].ConstantID)
	assert.Equal(t, "m_proton", art.Units[2].ConstantID)
	assert.Same(t, art.Units[2], art.TargetProgram())

	assert.InDelta(t, 0.93827, art.Accuracy.MeasuredValue, 1e-9)
	assert.Equal(t, "GeV", art.Accuracy.Unit)
}

func TestGenerate_UnknownTarget(t *testing.T) {
	gen := newGenerator(t, &definition.Constant{ID: "phi_0", Formula: "0.053171"})
	_, err := gen.Generate(context.Background(), "nope")
	assert.Error(t, err)
}

func TestGenerate_FingerprintStable(t *testing.T) {
	defs := []*definition.Constant{
		{ID: "phi_0", Formula: "0.053171"},
		{ID: "alpha_g", Formula: "phi_0^30", Dependencies: []string{"phi_0"}},
	}

	first, err := newGenerator(t, defs...).Generate(context.Background(), "alpha_g")
	require.NoError(t, err)
	second, err := newGenerator(t, defs...).Generate(context.Background(), "alpha_g")
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
	assert.Len(t, first.Fingerprint(), 64)
}

func TestGenerate_FingerprintSeesFormulaChange(t *testing.T) {
	ctx := context.Background()
	base, err := newGenerator(t,
		&definition.Constant{ID: "phi_0", Formula: "0.053171"},
	).Generate(ctx, "phi_0")
	require.NoError(t, err)

	changed, err := newGenerator(t,
		&definition.Constant{ID: "phi_0", Formula: "0.053172"},
	).Generate(ctx, "phi_0")
	require.NoError(t, err)

	assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())
}

func TestSteps_QualifiesLocals(t *testing.T) {
	gen := newGenerator(t,
		&definition.Constant{ID: "v_higgs", Formula: "246.22"},
		&definition.Constant{
			ID:           "m_tau",
			Dependencies: []string{"v_higgs"},
			Steps: []definition.Step{
				{Name: "v_over_sqrt2", Formula: "v_higgs / sqrt(2)"},
				{Name: "tree", Formula: "v_over_sqrt2 * 0.01"},
			},
		},
	)

	art, err := gen.Generate(context.Background(), "m_tau")
	require.NoError(t, err)

	var ids []string
	for _, s := range art.Steps() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"v_higgs", "m_tau.v_over_sqrt2", "m_tau"}, ids)
}

func TestGenerateAll_UnknownDependencySkipsOnlySubtree(t *testing.T) {
	gen := newGenerator(t,
		&definition.Constant{ID: "phi_0", Formula: "0.053171"},
		&definition.Constant{ID: "orphan", Formula: "ghost * 2", Dependencies: []string{"ghost"}},
		&definition.Constant{ID: "child", Formula: "orphan + 1", Dependencies: []string{"orphan"}},
		&definition.Constant{ID: "good", Formula: "phi_0^2", Dependencies: []string{"phi_0"}},
	)

	artifacts, skipped := gen.GenerateAll(context.Background())

	require.Len(t, skipped, 2)
	for _, sk := range skipped {
		var unknownErr *graph.UnknownDependencyError
		assert.ErrorAs(t, sk.Err, &unknownErr, sk.ID)
	}

	var targets []string
	for _, art := range artifacts {
		targets = append(targets, art.TargetID)
	}
	assert.Equal(t, []string{"good", "phi_0"}, targets)
}

func TestGenerateAll_SkipsOnlyBrokenClosures(t *testing.T) {
	gen := newGenerator(t,
		&definition.Constant{ID: "phi_0", Formula: "0.053171"},
		&definition.Constant{ID: "good", Formula: "phi_0^2", Dependencies: []string{"phi_0"}},
		// Undeclared identifier fails symbol resolution at compile time.
		&definition.Constant{ID: "broken", Formula: "phi_0 * mystery", Dependencies: []string{"phi_0"}},
	)

	artifacts, skipped := gen.GenerateAll(context.Background())

	require.Len(t, skipped, 1)
	assert.Equal(t, "broken", skipped[0].ID)
	var symErr *compiler.UnresolvedSymbolError
	assert.ErrorAs(t, skipped[0].Err, &symErr)

	var targets []string
	for _, art := range artifacts {
		targets = append(targets, art.TargetID)
	}
	assert.Equal(t, []string{"good", "phi_0"}, targets)
}
