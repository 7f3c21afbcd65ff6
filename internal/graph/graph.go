package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/topoconst/internal/ctxlog"
	"github.com/vk/topoconst/internal/definition"
)

// Graph is the validated dependency DAG over definition ids. Edges point
// from a dependency to its dependents. A Graph is immutable once built.
type Graph struct {
	nodes map[string]*node

	// excluded maps definitions dropped at build time (unknown dependency,
	// directly or through a dependency) to the blocking error.
	excluded map[string]error
}

type node struct {
	id string
	// deps holds the ids this node depends on (predecessors).
	deps map[string]struct{}
	// dependents holds the ids that depend on this node (successors).
	dependents map[string]struct{}
}

// Build constructs the dependency graph from every definition in the store.
// A definition declaring an unknown dependency is excluded from the graph
// together with its transitive dependents; TopologicalOrder reports the
// exclusion cause for those ids, and the rest of the store still builds.
// Build itself fails only on the store-wide faults: a missing axiom set or a
// dependency cycle among the computable definitions.
func Build(ctx context.Context, store *definition.Store) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	// Checked first: a store where every definition has dependencies
	// necessarily contains a cycle, and the missing-axioms diagnosis is the
	// more useful one.
	if store.Len() > 0 && len(store.Axioms()) == 0 {
		return nil, &NoFundamentalConstantsError{}
	}

	excluded := excludeUnresolvable(ctx, store)

	g := &Graph{
		nodes:    make(map[string]*node, store.Len()-len(excluded)),
		excluded: excluded,
	}
	for _, id := range store.IDs() {
		if _, drop := excluded[id]; drop {
			continue
		}
		g.nodes[id] = &node{
			id:         id,
			deps:       make(map[string]struct{}),
			dependents: make(map[string]struct{}),
		}
	}

	for _, id := range store.IDs() {
		if _, drop := excluded[id]; drop {
			continue
		}
		def, _ := store.ByID(id)
		for _, depID := range def.Dependencies {
			g.nodes[id].deps[depID] = struct{}{}
			g.nodes[depID].dependents[id] = struct{}{}
		}
	}
	logger.Debug("Build: Node linking complete.", "node_count", len(g.nodes), "excluded", len(excluded))

	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	logger.Debug("Build: Cycle detection passed.")

	logger.Debug("Build: Graph construction successful.")
	return g, nil
}

// excludeUnresolvable collects every definition declaring a dependency id
// absent from the store, then closes the set over dependents: a definition
// depending on an excluded one cannot be computed either. Exclusion is fatal
// to those definitions only, never to the batch.
func excludeUnresolvable(ctx context.Context, store *definition.Store) map[string]error {
	logger := ctxlog.FromContext(ctx)
	excluded := make(map[string]error)

	for _, id := range store.IDs() {
		def, _ := store.ByID(id)
		for _, depID := range def.Dependencies {
			if _, ok := store.ByID(depID); !ok {
				excluded[id] = &UnknownDependencyError{Constant: id, Missing: depID}
				logger.Warn("Excluding constant: unknown dependency.", "constant", id, "missing", depID)
				break
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, id := range store.IDs() {
			if _, done := excluded[id]; done {
				continue
			}
			def, _ := store.ByID(id)
			for _, depID := range def.Dependencies {
				cause, ok := excluded[depID]
				if !ok {
					continue
				}
				excluded[id] = fmt.Errorf("dependency %q cannot be computed: %w", depID, cause)
				logger.Warn("Excluding constant: dependency excluded.", "constant", id, "dependency", depID)
				changed = true
				break
			}
		}
	}
	return excluded
}

// Dependencies returns the ids the given node depends on, in lexical order.
func (g *Graph) Dependencies(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return sortedKeys(n.deps)
}

// Dependents returns the ids that depend on the given node, in lexical order.
func (g *Graph) Dependents(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return sortedKeys(n.dependents)
}

// Len returns the number of computable nodes in the graph, not counting
// definitions excluded at build time.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// detectCycles runs a depth-first search with a recursion stack. Nodes are
// visited in lexical order so the reported cycle is stable across runs.
func (g *Graph) detectCycles() error {
	permanent := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(id string) *CycleError
	visit = func(id string) *CycleError {
		if permanent[id] {
			return nil
		}
		if onStack[id] {
			// Slice the recursion stack from the first occurrence of id to
			// enumerate the cycle itself, not the path leading into it.
			for i, sid := range stack {
				if sid == id {
					path := append(append([]string{}, stack[i:]...), id)
					return &CycleError{Path: path}
				}
			}
			return &CycleError{Path: []string{id, id}}
		}

		onStack[id] = true
		stack = append(stack, id)

		for _, depID := range sortedKeys(g.nodes[id].deps) {
			if err := visit(depID); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, id)
		permanent[id] = true
		return nil
	}

	for _, id := range sortedKeys(g.nodes) {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
