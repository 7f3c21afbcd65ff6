package graph

import "fmt"

// TopologicalOrder returns every transitive dependency of targetID followed
// by targetID itself, each exactly once, dependency-first. Ties are broken
// by lexical id so regenerated artifacts are byte-for-byte reproducible.
func (g *Graph) TopologicalOrder(targetID string) ([]string, error) {
	if err, ok := g.excluded[targetID]; ok {
		return nil, err
	}
	if _, ok := g.nodes[targetID]; !ok {
		return nil, fmt.Errorf("unknown constant %q", targetID)
	}

	visited := make(map[string]bool)
	var order []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, depID := range sortedKeys(g.nodes[id].deps) {
			visit(depID)
		}
		order = append(order, id)
	}
	visit(targetID)

	return order, nil
}
