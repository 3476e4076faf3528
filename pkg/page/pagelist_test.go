package page

import (
	"testing"

	"graphstore/pkg/storage"
)

// TestPageListCountInvariant covers property 6: the count stored next to
// a list's sentinel always equals the number of pages reachable from it.
func TestPageListCountInvariant(t *testing.T) {
	f := storage.OpenMemory()
	sb, err := InitSuperblock(f)
	if err != nil {
		t.Fatal(err)
	}
	alloc := OpenAllocator(f, sb)
	list := alloc.ClassList()

	assertCount := func(want uint64) {
		t.Helper()
		got, err := list.Count()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("list.Count() = %d, want %d", got, want)
		}
	}
	assertCount(0)

	var indexes []uint64
	for i := 0; i < 5; i++ {
		h, err := alloc.Allocate(KindClassHeader)
		if err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
		if err := list.PushBack(h.Index); err != nil {
			t.Fatalf("PushBack #%d: %v", i, err)
		}
		indexes = append(indexes, h.Index)
		assertCount(uint64(i + 1))
	}

	if err := list.Unlink(indexes[2]); err != nil {
		t.Fatalf("Unlink middle: %v", err)
	}
	assertCount(4)

	var walked []uint64
	it, err := list.Begin()
	if err != nil {
		t.Fatal(err)
	}
	for !it.Done() {
		walked = append(walked, it.Index())
		it, err = it.Next()
		if err != nil {
			t.Fatal(err)
		}
	}
	if uint64(len(walked)) != 4 {
		t.Fatalf("walked %d pages, want 4 (count said so)", len(walked))
	}
	for _, idx := range walked {
		if idx == indexes[2] {
			t.Fatalf("unlinked page %d is still reachable from the list", idx)
		}
	}

	for _, idx := range walked {
		if err := list.Unlink(idx); err != nil {
			t.Fatalf("Unlink %d: %v", idx, err)
		}
	}
	assertCount(0)

	empty, err := list.IsEmpty()
	if err != nil {
		t.Fatal(err)
	}
	if !empty {
		t.Fatalf("list not empty after unlinking every member")
	}
}

func TestAllocatorFreeReuse(t *testing.T) {
	f := storage.OpenMemory()
	sb, err := InitSuperblock(f)
	if err != nil {
		t.Fatal(err)
	}
	alloc := OpenAllocator(f, sb)

	h1, err := alloc.Allocate(KindData)
	if err != nil {
		t.Fatal(err)
	}
	if err := alloc.Free(h1.Index, nil); err != nil {
		t.Fatalf("Free: %v", err)
	}

	h2, err := alloc.Allocate(KindData)
	if err != nil {
		t.Fatal(err)
	}
	if h2.Index != h1.Index {
		t.Fatalf("Allocate after Free got index %d, want reused index %d", h2.Index, h1.Index)
	}
}
