package node

import (
	"testing"

	"graphstore/pkg/catalog"
	"graphstore/pkg/page"
	"graphstore/pkg/storage"
	"graphstore/pkg/types"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	f := storage.OpenMemory()
	sb, err := page.InitSuperblock(f)
	if err != nil {
		t.Fatalf("InitSuperblock: %v", err)
	}
	return catalog.Open(f, page.OpenAllocator(f, sb))
}

func coordsClass(t *testing.T) *types.StructClass {
	t.Helper()
	lat, err := types.NewPrimitiveClass(types.KindFloat64, "lat")
	if err != nil {
		t.Fatal(err)
	}
	lon, err := types.NewPrimitiveClass(types.KindFloat64, "lon")
	if err != nil {
		t.Fatal(err)
	}
	sc, err := types.NewStructClass("coords", lat, lon)
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func newCoords(class *types.StructClass, lat, lon float64) *types.Struct {
	fields := class.Fields()
	return types.NewStruct(class,
		types.NewPrimitive[float64](fields[0].(*types.PrimitiveClass), lat),
		types.NewPrimitive[float64](fields[1].(*types.PrimitiveClass), lon))
}

// TestFixedStoreSeedScenario is the literal "Fixed store" seed scenario:
// add 10 (13,46) and 10 (60,15) alternately, keep the even ids on
// iteration.
func TestFixedStoreSeedScenario(t *testing.T) {
	cat := newTestCatalog(t)
	class := coordsClass(t)
	if _, err := cat.AddClass(class); err != nil {
		t.Fatal(err)
	}
	s, err := OpenConstSizeStorage(cat, class)
	if err != nil {
		t.Fatalf("OpenConstSizeStorage: %v", err)
	}

	for i := 0; i < 10; i++ {
		if _, err := s.AddNode(newCoords(class, 13, 46)); err != nil {
			t.Fatalf("AddNode (13,46) #%d: %v", i, err)
		}
		if _, err := s.AddNode(newCoords(class, 60, 15)); err != nil {
			t.Fatalf("AddNode (60,15) #%d: %v", i, err)
		}
	}

	var gotIDs []uint64
	err = s.VisitNodes(func(id uint64, data types.Object) (bool, error) {
		if id%2 == 0 {
			gotIDs = append(gotIDs, id)
		}
		return true, nil
	})
	if err != nil {
		t.Fatalf("VisitNodes: %v", err)
	}

	want := []uint64{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}
	if len(gotIDs) != len(want) {
		t.Fatalf("got %d even ids, want %d: %v", len(gotIDs), len(want), gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("ids[%d] = %d, want %d (full: %v)", i, gotIDs[i], want[i], gotIDs)
		}
	}
}

// TestPredicateSelectSeedScenario is the literal "Predicate select" seed
// scenario: rows (10i, 1000-i) for i in [0,100), select lat>lon, expect
// the 52 rows with i>=48.
func TestPredicateSelectSeedScenario(t *testing.T) {
	cat := newTestCatalog(t)
	class := coordsClass(t)
	if _, err := cat.AddClass(class); err != nil {
		t.Fatal(err)
	}
	s, err := OpenConstSizeStorage(cat, class)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 100; i++ {
		lat := float64(10 * i)
		lon := float64(1000 - i)
		if _, err := s.AddNode(newCoords(class, lat, lon)); err != nil {
			t.Fatalf("AddNode #%d: %v", i, err)
		}
	}

	var matches int
	err = s.VisitNodes(func(id uint64, data types.Object) (bool, error) {
		st := data.(*types.Struct)
		lat := st.Fields()[0].(*types.Primitive[float64]).Value()
		lon := st.Fields()[1].(*types.Primitive[float64]).Value()
		if lat > lon {
			matches++
		}
		return true, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if matches != 52 {
		t.Fatalf("matches = %d, want 52", matches)
	}
}

// TestVarStoreReclamation is the literal "Var store with reclamation" seed
// scenario: add 1000 20-byte strings, remove them all, and expect the file
// to shrink back to at most one class page larger than before the adds.
func TestVarStoreReclamation(t *testing.T) {
	cat := newTestCatalog(t)
	nameClass, err := types.NewStringClass("name")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cat.AddClass(nameClass); err != nil {
		t.Fatal(err)
	}
	s, err := OpenVarSizeStorage(cat, nameClass)
	if err != nil {
		t.Fatalf("OpenVarSizeStorage: %v", err)
	}

	sizeBefore := cat.File().GetSize()

	value := "abcdefghijklmnopqrst" // 20 bytes
	if len(value) != 20 {
		t.Fatalf("test fixture string is %d bytes, want 20", len(value))
	}
	for i := 0; i < 1000; i++ {
		if _, err := s.AddNode(types.NewString(nameClass, value)); err != nil {
			t.Fatalf("AddNode #%d: %v", i, err)
		}
	}

	if err := s.RemoveNodesIf(func(uint64, types.Object) bool { return true }); err != nil {
		t.Fatalf("RemoveNodesIf: %v", err)
	}

	sizeAfter := cat.File().GetSize()
	if sizeAfter > sizeBefore+page.Size {
		t.Fatalf("file size after reclamation = %d, want at most %d (before %d + one page)", sizeAfter, sizeBefore+page.Size, sizeBefore)
	}

	var remaining int
	if err := s.VisitNodes(func(uint64, types.Object) (bool, error) { remaining++; return true, nil }); err != nil {
		t.Fatal(err)
	}
	if remaining != 0 {
		t.Fatalf("remaining live nodes = %d, want 0", remaining)
	}
}

func TestConstSizeFreeSlotReuse(t *testing.T) {
	cat := newTestCatalog(t)
	class := coordsClass(t)
	if _, err := cat.AddClass(class); err != nil {
		t.Fatal(err)
	}
	s, err := OpenConstSizeStorage(cat, class)
	if err != nil {
		t.Fatal(err)
	}

	var ids []uint64
	for i := 0; i < 4; i++ {
		id, err := s.AddNode(newCoords(class, float64(i), float64(i)))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	if err := s.RemoveNodesIf(func(id uint64, _ types.Object) bool { return id == ids[1] }); err != nil {
		t.Fatalf("RemoveNodesIf: %v", err)
	}

	reusedID, err := s.AddNode(newCoords(class, 99, 99))
	if err != nil {
		t.Fatal(err)
	}
	if reusedID != ids[1] {
		t.Fatalf("AddNode after free reused id %d, want %d", reusedID, ids[1])
	}

	data, ok, err := s.Get(reusedID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("Get(%d): node not found", reusedID)
	}
	got := data.(*types.Struct)
	if got.Fields()[0].(*types.Primitive[float64]).Value() != 99 {
		t.Fatalf("reused slot holds stale data: %s", got.String())
	}
}
