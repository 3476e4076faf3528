package types

import "testing"

func buildPersonStruct(t *testing.T) *StructClass {
	t.Helper()
	name, err := NewStringClass("name")
	if err != nil {
		t.Fatalf("NewStringClass(name): %v", err)
	}
	surname, err := NewStringClass("surname")
	if err != nil {
		t.Fatalf("NewStringClass(surname): %v", err)
	}
	age, err := NewPrimitiveClass(KindInt32, "age")
	if err != nil {
		t.Fatalf("NewPrimitiveClass(age): %v", err)
	}
	money, err := NewPrimitiveClass(KindUint64, "money")
	if err != nil {
		t.Fatalf("NewPrimitiveClass(money): %v", err)
	}
	sc, err := NewStructClass("person", name, surname, age, money)
	if err != nil {
		t.Fatalf("NewStructClass(person): %v", err)
	}
	return sc
}

func TestStructSerialize(t *testing.T) {
	sc := buildPersonStruct(t)
	got := sc.Serialize()
	want := "_struct@person_<_string@name__string@surname__int@age__unsignedlong@money_>_"
	if got != want {
		t.Fatalf("Serialize() = %q, want %q", got, want)
	}
}

// TestSerializationRoundTrip covers property 1: parse(serialize(c)) is
// equal to c by serialization, for every supported class shape.
func TestSerializationRoundTrip(t *testing.T) {
	prim, err := NewPrimitiveClass(KindFloat64, "lat")
	if err != nil {
		t.Fatal(err)
	}
	str, err := NewStringClass("label")
	if err != nil {
		t.Fatal(err)
	}
	structClass := buildPersonStruct(t)
	rel, err := NewRelationClass("edge", structClass, prim, nil)
	if err != nil {
		t.Fatal(err)
	}
	attrRel, err := NewRelationClass("weighted", prim, str, prim)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range []Class{prim, str, structClass, rel, attrRel} {
		serialized := c.Serialize()
		parsed, err := Parse(serialized)
		if err != nil {
			t.Fatalf("Parse(%q): %v", serialized, err)
		}
		if parsed.Serialize() != serialized {
			t.Fatalf("round trip mismatch: got %q, want %q", parsed.Serialize(), serialized)
		}
	}
}

func TestNameValidation(t *testing.T) {
	for _, bad := range []string{"", "a@b", "a_b", "a<b", "a>b"} {
		if _, err := NewStringClass(bad); err == nil {
			t.Errorf("NewStringClass(%q): expected error, got none", bad)
		}
	}
}
