// Package pattern implements graph pattern matching over relations: a
// rooted tree of class vertices connected by typed, predicate-filtered
// relation edges, and the enumeration of every node tuple that satisfies
// it.
package pattern

import (
	"graphstore/pkg/dberr"
	"graphstore/pkg/types"
)

// Predicate decides whether a relation between from and to satisfies an
// edge, given the two endpoint values.
type Predicate func(from, to types.Object) bool

// edge is one outgoing relation from a pattern vertex: the relation class
// that must connect it to the child vertex, the predicate the two endpoint
// values must satisfy, and the child subpattern rooted
// at the relation's egress class.
type edge struct {
	relation  *types.RelationClass
	predicate Predicate
	child     *Pattern
}

// Pattern is a vertex in a rooted tree of classes connected by outgoing
// relation edges. Only DAG-shaped patterns are meaningful; a pattern built
// with a cycle back to an ancestor's class produces unspecified matches.
type Pattern struct {
	root  types.Class
	edges []edge
}

// New starts a pattern rooted at root.
func New(root types.Class) *Pattern {
	return &Pattern{root: root}
}

// Root returns the class this vertex matches.
func (p *Pattern) Root() types.Class { return p.root }

// AddRelation attaches a new outgoing edge somewhere in the tree: directly
// on p if relation's ingress class matches p's root, or recursively on
// whichever existing descendant's root matches. A pattern may carry more
// than one edge of the same relation class to the same child class, each
// with its own predicate and its own subtree — the star scenario (two
// distinct outgoing edges from the same root) depends on this.
//
// Returns the (possibly newly created) child pattern rooted at the
// relation's egress class, so callers can chain further AddRelation calls
// to extend the tree below it.
func (p *Pattern) AddRelation(relation *types.RelationClass, predicate Predicate) (*Pattern, error) {
	if relation.IngressClass().Serialize() == p.root.Serialize() {
		child := New(relation.EgressClass())
		p.edges = append(p.edges, edge{relation: relation, predicate: predicate, child: child})
		return child, nil
	}
	for i := range p.edges {
		if child, err := p.edges[i].child.AddRelation(relation, predicate); err == nil {
			return child, nil
		}
	}
	return nil, dberr.Patternf("no vertex in this pattern matches relation %q's ingress class %q", relation.Name(), relation.IngressClass().Name())
}
