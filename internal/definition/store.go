package definition

import (
	"fmt"
	"sort"
)

// Store is the read-only collection of constant definitions the pipeline
// computes from. It is fully populated at load time and never mutated after.
type Store struct {
	byID  map[string]*Constant
	order []string
}

// NewStore builds a store from the given definitions. Each definition is
// structurally validated; duplicate ids are rejected.
func NewStore(constants []*Constant) (*Store, error) {
	s := &Store{byID: make(map[string]*Constant, len(constants))}
	for _, c := range constants {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, exists := s.byID[c.ID]; exists {
			return nil, fmt.Errorf("duplicate definition for constant %q", c.ID)
		}
		s.byID[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	sort.Strings(s.order)
	return s, nil
}

// ByID returns the definition for the given id, or false if none exists.
func (s *Store) ByID(id string) (*Constant, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// IDs returns every definition id in lexical order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Axioms returns the ids of all fundamental definitions, in lexical order.
func (s *Store) Axioms() []string {
	var out []string
	for _, id := range s.order {
		if s.byID[id].IsAxiom() {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of definitions in the store.
func (s *Store) Len() int {
	return len(s.order)
}
