package pattern

import (
	"graphstore/pkg/dberr"
	"graphstore/pkg/node"
	"graphstore/pkg/types"
)

// Lookup resolves the node storage backing a class, so Match can walk
// relations and fetch endpoint values without depending on a particular
// catalog or database type.
type Lookup interface {
	Storage(class types.Class) (node.Storage, error)
}

// Binding pairs a bound pattern vertex with the node it matched.
type Binding struct {
	Class types.Class
	Id    types.Id
	Value types.Object
}

// Tuple is one complete match: one Binding per pattern vertex, root first,
// then each edge's target in the order it was added to the pattern (depth-
// first).
type Tuple []Binding

// Match enumerates every tuple satisfying p against the data reachable
// through lookup. For each root node it tries to extend with one binding
// per edge; an edge with no satisfying relation+target drops that root
// node's candidacy entirely (every edge in a pattern is required).
func Match(lookup Lookup, p *Pattern) ([]Tuple, error) {
	rootStore, err := lookup.Storage(p.root)
	if err != nil {
		return nil, err
	}

	var results []Tuple
	err = rootStore.VisitNodes(func(id uint64, data types.Object) (bool, error) {
		tails, err := matchEdges(lookup, p, id, data)
		if err != nil {
			return false, err
		}
		for _, tail := range tails {
			tuple := make(Tuple, 0, len(tail)+1)
			tuple = append(tuple, Binding{Class: p.root, Id: id, Value: data})
			tuple = append(tuple, tail...)
			results = append(results, tuple)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// matchEdges returns, for every way to satisfy all of p's outgoing edges
// from the vertex (id, data), the flat slice of descendant bindings for
// that combination (root's own binding is added by the caller). A pattern
// with no edges has exactly one (empty) combination.
func matchEdges(lookup Lookup, p *Pattern, id uint64, data types.Object) ([]Tuple, error) {
	combos := []Tuple{{}}

	for _, e := range p.edges {
		options, err := matchEdge(lookup, e, id, data)
		if err != nil {
			return nil, err
		}
		if len(options) == 0 {
			return nil, nil
		}
		combos = crossProduct(combos, options)
	}
	return combos, nil
}

// matchEdge finds every target node reachable from (id, data) across e's
// relation class whose predicate holds, and for each, the flattened
// bindings contributed by that target and everything below it.
func matchEdge(lookup Lookup, e edge, id uint64, data types.Object) ([]Tuple, error) {
	relStore, err := lookup.Storage(e.relation)
	if err != nil {
		return nil, err
	}
	targetStore, err := lookup.Storage(e.child.root)
	if err != nil {
		return nil, err
	}

	var options []Tuple
	err = relStore.VisitNodes(func(_ uint64, relData types.Object) (bool, error) {
		rel, ok := relData.(*types.Relation)
		if !ok {
			return false, dberr.Patternf("relation class %q did not decode to a relation value", e.relation.Name())
		}
		if rel.IngressId() != id {
			return true, nil
		}
		target, found, err := targetStore.Get(rel.EgressId())
		if err != nil {
			return false, err
		}
		if !found {
			return true, nil
		}
		if !e.predicate(data, target) {
			return true, nil
		}

		tails, err := matchEdges(lookup, e.child, rel.EgressId(), target)
		if err != nil {
			return false, err
		}
		for _, tail := range tails {
			bound := make(Tuple, 0, len(tail)+1)
			bound = append(bound, Binding{Class: e.child.root, Id: rel.EgressId(), Value: target})
			bound = append(bound, tail...)
			options = append(options, bound)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return options, nil
}

// crossProduct combines every combination in a with every option in b by
// concatenation.
func crossProduct(a, b []Tuple) []Tuple {
	out := make([]Tuple, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			combo := make(Tuple, 0, len(x)+len(y))
			combo = append(combo, x...)
			combo = append(combo, y...)
			out = append(out, combo)
		}
	}
	return out
}
