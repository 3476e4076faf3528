package page

import (
	"graphstore/pkg/dberr"
	"graphstore/pkg/storage"
)

// List is a circular doubly-linked list of pages sharing a kind, anchored
// by a sentinel record stored at a fixed file offset (inside the
// superblock for the free-page and class-header lists, inside a
// ClassHeader for a per-class node-page list). The live element count is
// stored in the 8 bytes immediately following the sentinel.
type List struct {
	f              *storage.File
	sentinelOffset int64
}

// NewList opens a List anchored at sentinelOffset. The sentinel and count
// must already have been initialized (e.g. by InitSuperblock or
// catalog.Catalog.AddClass).
func NewList(f *storage.File, sentinelOffset int64) *List {
	return &List{f: f, sentinelOffset: sentinelOffset}
}

func (l *List) countOffset() int64 { return l.sentinelOffset + HeaderSize }

// Count returns the number of pages currently reachable from the sentinel.
func (l *List) Count() (uint64, error) {
	n, err := l.f.ReadUint64(l.countOffset())
	if err != nil {
		return 0, dberr.WrapIO(err, "read page list count")
	}
	return n, nil
}

func (l *List) setCount(n uint64) error {
	return l.f.WriteUint64(l.countOffset(), n)
}

// IsEmpty reports whether the list currently holds no pages.
func (l *List) IsEmpty() (bool, error) {
	n, err := l.Count()
	return n == 0, err
}

func (l *List) readHeader(index uint64) (Header, error) {
	if index != SentinelIndex {
		return ReadHeader(l.f, index)
	}
	buf := make([]byte, HeaderSize)
	if err := l.f.ReadAt(l.sentinelOffset, buf); err != nil {
		return Header{}, dberr.WrapIO(err, "read list sentinel")
	}
	return DecodeHeader(buf), nil
}

func (l *List) writeHeader(h Header) error {
	if h.Index != SentinelIndex {
		return WriteHeader(l.f, h)
	}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)
	if err := l.f.WriteAt(l.sentinelOffset, buf); err != nil {
		return dberr.WrapIO(err, "write list sentinel")
	}
	return nil
}

func (l *List) sentinel() (Header, error) { return l.readHeader(SentinelIndex) }

// Front returns the index of the list's front (most recently pushed-front,
// or oldest-pushed-back) page: the sentinel's Prev.
func (l *List) Front() (uint64, error) {
	s, err := l.sentinel()
	if err != nil {
		return 0, err
	}
	return s.Prev, nil
}

// Back returns the index of the list's back page: the sentinel's Next.
func (l *List) Back() (uint64, error) {
	s, err := l.sentinel()
	if err != nil {
		return 0, err
	}
	return s.Next, nil
}

// Iterator is a bidirectional cursor over a List. Its Next() follows the
// chain front-to-back (via the current page's Prev field, matching the
// sentinel convention above); Prev() reverses that.
type Iterator struct {
	list *List
	curr Header
}

// IteratorTo returns an iterator positioned at index, which must currently
// be a member of the list (or be the sentinel).
func (l *List) IteratorTo(index uint64) (Iterator, error) {
	h, err := l.readHeader(index)
	if err != nil {
		return Iterator{}, err
	}
	return Iterator{list: l, curr: h}, nil
}

// Begin returns an iterator at the list's front page.
func (l *List) Begin() (Iterator, error) {
	front, err := l.Front()
	if err != nil {
		return Iterator{}, err
	}
	return l.IteratorTo(front)
}

// End returns an iterator at the sentinel, one past the list's back page.
func (l *List) End() (Iterator, error) {
	return l.IteratorTo(SentinelIndex)
}

// RBegin returns an iterator at the list's back page.
func (l *List) RBegin() (Iterator, error) {
	back, err := l.Back()
	if err != nil {
		return Iterator{}, err
	}
	return l.IteratorTo(back)
}

// Index returns the page index (or SentinelIndex) the iterator currently
// names.
func (it Iterator) Index() uint64 { return it.curr.Index }

// Header returns the full header of the iterator's current page.
func (it Iterator) Header() Header { return it.curr }

// Done reports whether the iterator has reached the sentinel (End()).
func (it Iterator) Done() bool { return it.curr.Index == SentinelIndex }

// Next advances the iterator front-to-back.
func (it Iterator) Next() (Iterator, error) {
	h, err := it.list.readHeader(it.curr.Prev)
	if err != nil {
		return Iterator{}, err
	}
	return Iterator{list: it.list, curr: h}, nil
}

// Prev steps the iterator back-to-front.
func (it Iterator) Prev() (Iterator, error) {
	h, err := it.list.readHeader(it.curr.Next)
	if err != nil {
		return Iterator{}, err
	}
	return Iterator{list: it.list, curr: h}, nil
}

// SetHeader replaces the iterator's in-memory copy of its current page
// header; it does not write anything to the file.
func (it *Iterator) SetHeader(h Header) { it.curr = h }

func (it Iterator) write() error { return it.list.writeHeader(it.curr) }

// Unlink removes index from the list, restoring the sentinel's
// prev==next==SentinelIndex invariant when the list becomes empty.
func (l *List) Unlink(index uint64) error {
	it, err := l.IteratorTo(index)
	if err != nil {
		return err
	}
	if it.curr.Next == it.curr.Index && it.curr.Prev == it.curr.Index {
		return nil
	}

	prev, err := l.IteratorTo(it.curr.Prev)
	if err != nil {
		return err
	}
	next, err := l.IteratorTo(it.curr.Next)
	if err != nil {
		return err
	}

	prev.curr.Next = next.curr.Index
	next.curr.Prev = prev.curr.Index
	it.curr.Prev = it.curr.Index
	it.curr.Next = it.curr.Index

	count, err := l.Count()
	if err != nil {
		return err
	}
	if count == 1 {
		next.curr.Next = next.curr.Index
		next.curr.Prev = next.curr.Index
	}

	if err := it.write(); err != nil {
		return err
	}
	if err := prev.write(); err != nil {
		return err
	}
	if err := next.write(); err != nil {
		return err
	}
	return l.setCount(count - 1)
}

// LinkBefore splices index (which must not currently be in any list) into
// the list immediately before otherIndex (which must already be a member,
// or be the sentinel).
func (l *List) LinkBefore(otherIndex, index uint64) error {
	it, err := l.IteratorTo(index)
	if err != nil {
		return err
	}
	other, err := l.IteratorTo(otherIndex)
	if err != nil {
		return err
	}
	prev, err := l.IteratorTo(other.curr.Prev)
	if err != nil {
		return err
	}

	it.curr.Next = other.curr.Index
	it.curr.Prev = prev.curr.Index
	prev.curr.Next = it.curr.Index
	other.curr.Prev = it.curr.Index

	count, err := l.Count()
	if err != nil {
		return err
	}
	if count == 0 {
		other.curr.Next = it.curr.Index
	}

	if err := it.write(); err != nil {
		return err
	}
	if err := prev.write(); err != nil {
		return err
	}
	if err := other.write(); err != nil {
		return err
	}
	return l.setCount(count + 1)
}

// PushBack links index in as the new back of the list.
func (l *List) PushBack(index uint64) error {
	back, err := l.Back()
	if err != nil {
		return err
	}
	return l.LinkBefore(back, index)
}

// PushFront links index in as the new front of the list.
func (l *List) PushFront(index uint64) error {
	return l.LinkBefore(SentinelIndex, index)
}

// PopBack unlinks the current back page.
func (l *List) PopBack() error {
	back, err := l.Back()
	if err != nil {
		return err
	}
	return l.Unlink(back)
}

// PopFront unlinks the current front page.
func (l *List) PopFront() error {
	front, err := l.Front()
	if err != nil {
		return err
	}
	return l.Unlink(front)
}
