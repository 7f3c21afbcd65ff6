package artifact

import (
	"context"
	"fmt"

	"github.com/vk/topoconst/internal/compiler"
	"github.com/vk/topoconst/internal/ctxlog"
	"github.com/vk/topoconst/internal/definition"
	"github.com/vk/topoconst/internal/graph"
)

// Skipped records a definition that could not be compiled into an artifact,
// together with the blocking error. Build-phase failures are fatal to the
// one definition but never to the batch.
type Skipped struct {
	ID  string
	Err error
}

// Generator assembles artifacts from the definition store, the validated
// dependency graph, and the formula compiler.
type Generator struct {
	store    *definition.Store
	graph    *graph.Graph
	compiler *compiler.Compiler

	// compiled caches programs by definition id. Compilation is
	// deterministic, so caching only saves repeated work across targets
	// sharing a closure.
	compiled map[string]*compiler.Program
}

// NewGenerator returns a Generator over the given collaborators.
func NewGenerator(store *definition.Store, g *graph.Graph, c *compiler.Compiler) *Generator {
	return &Generator{
		store:    store,
		graph:    g,
		compiler: c,
		compiled: make(map[string]*compiler.Program),
	}
}

// Generate emits the self-contained artifact for one target definition,
// covering its full topological closure from axioms upward.
func (g *Generator) Generate(ctx context.Context, targetID string) (*Artifact, error) {
	def, ok := g.store.ByID(targetID)
	if !ok {
		return nil, fmt.Errorf("unknown constant %q", targetID)
	}

	order, err := g.graph.TopologicalOrder(targetID)
	if err != nil {
		return nil, err
	}

	art := &Artifact{
		TargetID: targetID,
		Accuracy: AccuracyStage{
			MeasuredValue:  def.ExperimentalValue,
			Uncertainty:    def.ExperimentalUncertainty,
			AccuracyTarget: def.AccuracyTarget,
			Unit:           def.Unit,
		},
	}

	for _, id := range order {
		prog, err := g.program(id)
		if err != nil {
			return nil, err
		}
		art.Units = append(art.Units, prog)
	}

	ctxlog.FromContext(ctx).Debug("Artifact generated.",
		"target", targetID, "units", len(art.Units), "fingerprint", art.Fingerprint()[:12])
	return art, nil
}

// GenerateAll emits an artifact for every definition in the store. A
// definition whose closure fails to compile lands on the skip list;
// unrelated definitions still generate.
func (g *Generator) GenerateAll(ctx context.Context) ([]*Artifact, []Skipped) {
	logger := ctxlog.FromContext(ctx)

	var artifacts []*Artifact
	var skipped []Skipped
	for _, id := range g.store.IDs() {
		art, err := g.Generate(ctx, id)
		if err != nil {
			logger.Warn("Skipping constant: artifact generation failed.", "constant", id, "error", err)
			skipped = append(skipped, Skipped{ID: id, Err: err})
			continue
		}
		artifacts = append(artifacts, art)
	}

	logger.Info("Artifact generation finished.", "generated", len(artifacts), "skipped", len(skipped))
	return artifacts, skipped
}

func (g *Generator) program(id string) (*compiler.Program, error) {
	if prog, ok := g.compiled[id]; ok {
		return prog, nil
	}
	def, ok := g.store.ByID(id)
	if !ok {
		return nil, fmt.Errorf("unknown constant %q", id)
	}
	prog, err := g.compiler.Compile(def)
	if err != nil {
		return nil, err
	}
	g.compiled[id] = prog
	return prog, nil
}
