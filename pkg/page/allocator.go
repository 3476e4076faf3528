package page

import "graphstore/pkg/storage"

// Allocator hands out and reclaims pages against a superblock's free list,
// growing the file by one page at a time when the free list is exhausted
// and best-effort truncating trailing free pages on free.
type Allocator struct {
	f  *storage.File
	sb Superblock
}

// OpenAllocator wraps an already-read (or freshly-initialized) superblock.
func OpenAllocator(f *storage.File, sb Superblock) *Allocator {
	return &Allocator{f: f, sb: sb}
}

// Superblock returns the allocator's current superblock view. PagesCount is
// tracked in-memory by the Allocator itself; the list sentinels and counts
// are owned by FreeList/ClassList and re-read here so callers never see the
// stale snapshot captured at open time.
func (a *Allocator) Superblock() Superblock {
	sb := a.sb
	if n, err := a.FreeList().Count(); err == nil {
		sb.FreePagesCount = n
	}
	if s, err := a.FreeList().sentinel(); err == nil {
		sb.FreeListSentinel = s
	}
	if n, err := a.ClassList().Count(); err == nil {
		sb.ClassListCount = n
	}
	if s, err := a.ClassList().sentinel(); err == nil {
		sb.ClassListSentinel = s
	}
	return sb
}

// FreeList returns the page list of currently-unused pages.
func (a *Allocator) FreeList() *List {
	return NewList(a.f, freeListSentinelOffset)
}

// ClassList returns the page list of class-header pages.
func (a *Allocator) ClassList() *List {
	return NewList(a.f, classListSentinelOffset)
}

// persist writes back only the fields the Allocator itself owns. The free
// list and class list each maintain their own sentinel and count directly
// on disk (see List), so persisting the Allocator's cached Superblock in
// full here would overwrite whatever the most recent list operation just
// linked in with this snapshot's stale copy.
func (a *Allocator) persist() error {
	return writePagesCount(a.f, a.sb.PagesCount)
}

// Allocate returns a page of the given kind: reused from the free list if
// one is available, otherwise obtained by growing the file by one page.
// The returned page is a standalone singleton (not yet linked into any
// list); the caller links it wherever it belongs.
func (a *Allocator) Allocate(kind Kind) (Header, error) {
	empty, err := a.FreeList().IsEmpty()
	if err != nil {
		return Header{}, err
	}

	if !empty {
		front, err := a.FreeList().Front()
		if err != nil {
			return Header{}, err
		}
		if err := a.FreeList().PopFront(); err != nil {
			return Header{}, err
		}
		h := NewHeader(front)
		h.Kind = kind
		if err := WriteHeader(a.f, h); err != nil {
			return Header{}, err
		}
		return h, nil
	}

	index := a.sb.PagesCount
	if err := a.f.Extend(Size); err != nil {
		return Header{}, err
	}
	h := NewHeader(index)
	h.Kind = kind
	if err := WriteHeader(a.f, h); err != nil {
		return Header{}, err
	}
	a.sb.PagesCount++
	return h, a.persist()
}

// Free reclaims index. If list is non-nil, index is first unlinked from it
// (the caller names the list the page currently belongs to); pass nil for
// a page that isn't currently a member of any list.
func (a *Allocator) Free(index uint64, list *List) error {
	if list != nil {
		if err := list.Unlink(index); err != nil {
			return err
		}
	}

	h, err := ReadHeader(a.f, index)
	if err != nil {
		return err
	}
	h.Kind = KindFree
	h.ActualSize = 0
	h.InitOffset = HeaderSize
	h.FreeOffset = HeaderSize
	if err := WriteHeader(a.f, h); err != nil {
		return err
	}

	if err := a.FreeList().PushFront(index); err != nil {
		return err
	}

	return a.truncateTrailingFree()
}

// truncateTrailingFree drops trailing free pages from the file while it's
// cheap to do so. Best-effort: any error here leaves the file at a larger,
// still-correct size.
func (a *Allocator) truncateTrailingFree() error {
	for a.sb.PagesCount > 0 {
		lastIndex := a.sb.PagesCount - 1
		h, err := ReadHeader(a.f, lastIndex)
		if err != nil {
			return nil
		}
		if h.Kind != KindFree {
			break
		}
		if err := a.FreeList().Unlink(lastIndex); err != nil {
			return nil
		}
		if err := a.f.Truncate(Size); err != nil {
			return nil
		}
		a.sb.PagesCount--
	}
	return a.persist()
}
