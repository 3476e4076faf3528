package types

import (
	"testing"

	"graphstore/pkg/storage"
)

// TestValueRoundTrip covers property 2: writing a value at an offset and
// reading it back (into a freshly zeroed object of the same class)
// reproduces it, for every variant.
func TestValueRoundTrip(t *testing.T) {
	f := storage.OpenMemory()
	if err := f.Extend(4096); err != nil {
		t.Fatal(err)
	}

	latClass, err := NewPrimitiveClass(KindFloat64, "lat")
	if err != nil {
		t.Fatal(err)
	}
	lonClass, err := NewPrimitiveClass(KindFloat64, "lon")
	if err != nil {
		t.Fatal(err)
	}
	coords, err := NewStructClass("coords", latClass, lonClass)
	if err != nil {
		t.Fatal(err)
	}
	strClass, err := NewStringClass("label")
	if err != nil {
		t.Fatal(err)
	}
	relClass, err := NewRelationClass("edge", coords, coords, nil)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		offset int64
		value  Object
	}{
		{"primitive", 0, NewPrimitive[float64](latClass, 46.5)},
		{"string", 64, NewString(strClass, "hello, graphstore")},
		{"struct", 256, NewStruct(coords, NewPrimitive[float64](latClass, 13), NewPrimitive[float64](lonClass, 46))},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.value.Write(f, c.offset); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := NewZeroObject(c.value.Class())
			if err != nil {
				t.Fatalf("NewZeroObject: %v", err)
			}
			if err := got.Read(f, c.offset); err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got.String() != c.value.String() {
				t.Fatalf("round trip mismatch: got %q, want %q", got.String(), c.value.String())
			}
		})
	}

	rel, err := NewRelation(relClass, 7, 9, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := rel.Write(f, 512); err != nil {
		t.Fatalf("Write relation: %v", err)
	}
	gotObj, err := NewZeroObject(relClass)
	if err != nil {
		t.Fatal(err)
	}
	if err := gotObj.Read(f, 512); err != nil {
		t.Fatalf("Read relation: %v", err)
	}
	got := gotObj.(*Relation)
	if got.IngressId() != 7 || got.EgressId() != 9 {
		t.Fatalf("relation round trip mismatch: got (%d, %d), want (7, 9)", got.IngressId(), got.EgressId())
	}
}
