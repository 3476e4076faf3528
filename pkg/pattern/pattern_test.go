package pattern

import (
	"testing"

	"graphstore/pkg/catalog"
	"graphstore/pkg/node"
	"graphstore/pkg/page"
	"graphstore/pkg/storage"
	"graphstore/pkg/types"
)

// lookup is a minimal pattern.Lookup over a fixed set of classes, enough
// to drive these tests without pulling in the database facade.
type lookup struct {
	cat      *catalog.Catalog
	storages map[string]node.Storage
}

func newLookup(cat *catalog.Catalog) *lookup {
	return &lookup{cat: cat, storages: make(map[string]node.Storage)}
}

func (l *lookup) Storage(class types.Class) (node.Storage, error) {
	key := class.Serialize()
	if s, ok := l.storages[key]; ok {
		return s, nil
	}
	s, err := node.Open(l.cat, class)
	if err != nil {
		return nil, err
	}
	l.storages[key] = s
	return s, nil
}

// TestPatternStarSeedScenario is the literal "Pattern star" seed scenario:
// 100 points labeled 0..99, edges 0->i and i->0 for i in [1,100). A
// pattern with two outgoing edge relations from point-0, each constrained
// to a distinct target value, must return exactly one tuple.
func TestPatternStarSeedScenario(t *testing.T) {
	f := storage.OpenMemory()
	sb, err := page.InitSuperblock(f)
	if err != nil {
		t.Fatal(err)
	}
	cat := catalog.Open(f, page.OpenAllocator(f, sb))

	valueClass, err := types.NewPrimitiveClass(types.KindInt32, "value")
	if err != nil {
		t.Fatal(err)
	}
	pointClass, err := types.NewStructClass("point", valueClass)
	if err != nil {
		t.Fatal(err)
	}
	edgeClass, err := types.NewRelationClass("edge", pointClass, pointClass, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cat.AddClass(pointClass); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.AddClass(edgeClass); err != nil {
		t.Fatal(err)
	}

	l := newLookup(cat)
	points, err := l.Storage(pointClass)
	if err != nil {
		t.Fatal(err)
	}
	edges, err := l.Storage(edgeClass)
	if err != nil {
		t.Fatal(err)
	}

	pointIDs := make([]uint64, 100)
	for v := 0; v < 100; v++ {
		value := types.NewPrimitive[int32](valueClass, int32(v))
		id, err := points.AddNode(types.NewStruct(pointClass, value))
		if err != nil {
			t.Fatalf("AddNode point %d: %v", v, err)
		}
		pointIDs[v] = id
	}

	for v := 1; v < 100; v++ {
		out, err := types.NewRelation(edgeClass, pointIDs[0], pointIDs[v], nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := edges.AddNode(out); err != nil {
			t.Fatalf("AddNode edge 0->%d: %v", v, err)
		}
		in, err := types.NewRelation(edgeClass, pointIDs[v], pointIDs[0], nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := edges.AddNode(in); err != nil {
			t.Fatalf("AddNode edge %d->0: %v", v, err)
		}
	}

	pointValue := func(obj types.Object) int32 {
		return obj.(*types.Struct).Fields()[0].(*types.Primitive[int32]).Value()
	}

	for _, pair := range [][2]int32{{1, 2}, {17, 42}, {98, 3}} {
		i, j := pair[0], pair[1]
		p := New(pointClass)
		if _, err := p.AddRelation(edgeClass, func(_, to types.Object) bool { return pointValue(to) == i }); err != nil {
			t.Fatalf("AddRelation i: %v", err)
		}
		if _, err := p.AddRelation(edgeClass, func(_, to types.Object) bool { return pointValue(to) == j }); err != nil {
			t.Fatalf("AddRelation j: %v", err)
		}

		tuples, err := Match(l, p)
		if err != nil {
			t.Fatalf("Match(%d,%d): %v", i, j, err)
		}
		if len(tuples) != 1 {
			t.Fatalf("Match(%d,%d) returned %d tuples, want 1: %v", i, j, len(tuples), tuples)
		}
	}
}

func TestAddRelationNoAnchor(t *testing.T) {
	valueClass, err := types.NewPrimitiveClass(types.KindInt32, "value")
	if err != nil {
		t.Fatal(err)
	}
	pointClass, err := types.NewStructClass("point", valueClass)
	if err != nil {
		t.Fatal(err)
	}
	otherClass, err := types.NewPrimitiveClass(types.KindInt32, "other")
	if err != nil {
		t.Fatal(err)
	}
	unrelated, err := types.NewRelationClass("unrelated", otherClass, otherClass, nil)
	if err != nil {
		t.Fatal(err)
	}

	p := New(pointClass)
	if _, err := p.AddRelation(unrelated, func(_, _ types.Object) bool { return true }); err == nil {
		t.Fatalf("AddRelation with no matching anchor: expected error, got none")
	}
}
