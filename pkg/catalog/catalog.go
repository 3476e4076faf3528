// Package catalog implements the persistent class catalog: a page list of
// ClassHeader pages plus an in-memory cache keyed by canonical class
// serialization.
package catalog

import (
	"hash/fnv"

	"graphstore/pkg/dberr"
	"graphstore/pkg/page"
	"graphstore/pkg/storage"
	"graphstore/pkg/types"
)

// Fixed byte offsets within a ClassHeader page, following its base page
// header: a node-list sentinel header, the 8 bytes immediately after it
// (owned by page.List itself as that list's own page count, per the
// sentinel+count convention — zeroed here once when AddClass creates the
// header, never touched directly otherwise), then this
// class's own counters, then the class's ClassObject bytes.
const (
	nodeListSentinelRelOffset = page.HeaderSize
	nodeListCountRelOffset    = nodeListSentinelRelOffset + page.HeaderSize
	nodeCountRelOffset        = nodeListCountRelOffset + 8
	nextIDRelOffset           = nodeCountRelOffset + 8
	magicRelOffset            = nextIDRelOffset + 8
	freeHeadRelOffset         = magicRelOffset + 8
	classDataRelOffset        = freeHeadRelOffset + 8
)

// NoFreeHead marks an empty freed-slot chain.
const NoFreeHead = ^uint64(0)

// MaxClassSize is the largest a ClassObject may be and still fit in one
// ClassHeader page.
const MaxClassSize = page.Size - classDataRelOffset

// Header is the decoded, fixed-width portion of a ClassHeader page: its
// page index plus the class's own fields (the rest of the base page.Header
// is not carried). The serialized class
// bytes following it are decoded separately as a types.ClassObject.
type Header struct {
	Index            uint64
	NodeListSentinel page.Header
	// NodeCount is the number of live nodes currently stored for this
	// class. It is distinct from the node-page list's own page count
	// (which page.List maintains itself right after the sentinel).
	NodeCount uint64
	NextID    uint64
	Magic            uint64
	// FreeHead is the absolute file offset of the head of this class's
	// freed-slot singly-linked list (threaded through the node storage
	// layer's free frames), or NoFreeHead when no slot is free.
	FreeHead uint64
}

func nodeListSentinelOffset(index uint64) int64 {
	return page.Address(index) + nodeListSentinelRelOffset
}

func readHeader(f *storage.File, index uint64) (Header, error) {
	base, err := page.ReadHeader(f, index)
	if err != nil {
		return Header{}, err
	}
	sentinelBuf := make([]byte, page.HeaderSize)
	if err := f.ReadAt(nodeListSentinelOffset(index), sentinelBuf); err != nil {
		return Header{}, dberr.WrapIO(err, "read class node-list sentinel")
	}
	nodeCount, err := f.ReadUint64(page.Address(index) + nodeCountRelOffset)
	if err != nil {
		return Header{}, err
	}
	nextID, err := f.ReadUint64(page.Address(index) + nextIDRelOffset)
	if err != nil {
		return Header{}, err
	}
	magic, err := f.ReadUint64(page.Address(index) + magicRelOffset)
	if err != nil {
		return Header{}, err
	}
	freeHead, err := f.ReadUint64(page.Address(index) + freeHeadRelOffset)
	if err != nil {
		return Header{}, err
	}
	_ = base
	return Header{
		Index:            index,
		NodeListSentinel: page.DecodeHeader(sentinelBuf),
		NodeCount:        nodeCount,
		NextID:           nextID,
		Magic:            magic,
		FreeHead:         freeHead,
	}, nil
}

func writeHeader(f *storage.File, h Header) error {
	sentinelBuf := make([]byte, page.HeaderSize)
	h.NodeListSentinel.Encode(sentinelBuf)
	if err := f.WriteAt(nodeListSentinelOffset(h.Index), sentinelBuf); err != nil {
		return dberr.WrapIO(err, "write class node-list sentinel")
	}
	if err := f.WriteUint64(page.Address(h.Index)+nodeCountRelOffset, h.NodeCount); err != nil {
		return err
	}
	if err := f.WriteUint64(page.Address(h.Index)+nextIDRelOffset, h.NextID); err != nil {
		return err
	}
	if err := f.WriteUint64(page.Address(h.Index)+magicRelOffset, h.Magic); err != nil {
		return err
	}
	if err := f.WriteUint64(page.Address(h.Index)+freeHeadRelOffset, h.FreeHead); err != nil {
		return err
	}
	return nil
}

func classDataOffset(index uint64) int64 {
	return page.Address(index) + classDataRelOffset
}

// classMagic derives a deterministic, per-class magic value from the
// class's canonical serialization, so re-opening a file reproduces the
// same magic for the same class without persisting a counter.
func classMagic(serialized string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(serialized))
	return h.Sum64()
}

// Mode selects how FindClass consults the catalog.
type Mode int

const (
	// ModeCache consults only the in-memory cache.
	ModeCache Mode = iota
	// ModeFile additionally checks that a cached page still deserializes
	// to the same class (disk coherency).
	ModeFile
)

// Catalog is the persistent class catalog: a page list of ClassHeader
// pages anchored by the superblock's class-list sentinel, plus an
// in-memory cache from serialized class string to page index.
type Catalog struct {
	f     *storage.File
	alloc *page.Allocator
	cache map[string]uint64
}

// Open wraps an allocator with a fresh, empty class cache. The cache fills
// as AddClass/FindClass's disk-scan fallback passes over the class list;
// VisitClasses reads the list without touching the cache.
func Open(f *storage.File, alloc *page.Allocator) *Catalog {
	return &Catalog{f: f, alloc: alloc, cache: make(map[string]uint64)}
}

func (c *Catalog) list() *page.List { return c.alloc.ClassList() }

// AddClass registers class, deduplicating by serialization. It returns the
// page index of the class's header, whether newly created or pre-existing.
func (c *Catalog) AddClass(class types.Class) (uint64, error) {
	co := types.NewClassObject(class)

	if idx, ok := c.cache[co.Serialized()]; ok {
		return idx, nil
	}

	if idx, ok, err := c.scanForMatch(co.Serialized()); err != nil {
		return 0, err
	} else if ok {
		return idx, nil
	}

	if co.Size() > MaxClassSize {
		return 0, dberr.NotImplementedf("class %q serialization too large for a page", class.Name())
	}

	hdr, err := c.alloc.Allocate(page.KindClassHeader)
	if err != nil {
		return 0, err
	}
	hdr.InitOffset = classDataRelOffset + uint32(co.Size())
	hdr.FreeOffset = hdr.InitOffset
	hdr.ActualSize = uint64(co.Size())
	if err := page.WriteHeader(c.f, hdr); err != nil {
		return 0, err
	}

	ch := Header{
		Index:            hdr.Index,
		NodeListSentinel: emptySentinel(),
		NodeCount:        0,
		NextID:           0,
		Magic:            classMagic(co.Serialized()),
		FreeHead:         NoFreeHead,
	}
	if err := writeHeader(c.f, ch); err != nil {
		return 0, err
	}
	if err := c.f.WriteUint64(page.Address(hdr.Index)+nodeListCountRelOffset, 0); err != nil {
		return 0, err
	}
	if err := co.Write(c.f, classDataOffset(hdr.Index)); err != nil {
		return 0, err
	}
	if err := c.list().PushBack(hdr.Index); err != nil {
		return 0, err
	}

	c.cache[co.Serialized()] = hdr.Index
	return hdr.Index, nil
}

func emptySentinel() page.Header {
	h := page.NewHeader(page.SentinelIndex)
	h.Kind = page.KindSentinel
	return h
}

// scanForMatch walks the on-disk class list looking for serialized,
// populating the cache with everything it passes over.
func (c *Catalog) scanForMatch(serialized string) (uint64, bool, error) {
	var found uint64
	var ok bool
	err := c.VisitClasses(func(index uint64, co types.ClassObject) (bool, error) {
		c.cache[co.Serialized()] = index
		if co.Serialized() == serialized {
			found, ok = index, true
			return false, nil
		}
		return true, nil
	})
	return found, ok, err
}

// RemoveClass frees a class's header page and, per this port's resolution
// of the original's dangling-nodes gap, every data page the class's node
// storage had allocated.
func (c *Catalog) RemoveClass(class types.Class) error {
	co := types.NewClassObject(class)
	index, found, err := c.FindClass(class, ModeFile)
	if err != nil {
		return err
	}
	if !found {
		return dberr.BadArgumentf("class %q is not registered", class.Name())
	}

	ch, err := readHeader(c.f, index)
	if err != nil {
		return err
	}

	nodeList := page.NewList(c.f, nodeListSentinelOffset(index))
	if err := freeAllPages(c.alloc, nodeList); err != nil {
		return err
	}

	if err := c.list().Unlink(index); err != nil {
		return err
	}
	if err := c.alloc.Free(index, nil); err != nil {
		return err
	}

	_ = ch
	delete(c.cache, co.Serialized())
	return nil
}

// freeAllPages frees every page currently reachable from list, leaving it
// empty.
func freeAllPages(alloc *page.Allocator, list *page.List) error {
	for {
		empty, err := list.IsEmpty()
		if err != nil {
			return err
		}
		if empty {
			return nil
		}
		front, err := list.Front()
		if err != nil {
			return err
		}
		if err := alloc.Free(front, list); err != nil {
			return err
		}
	}
}

// FindClass looks up class, returning its header page index.
func (c *Catalog) FindClass(class types.Class, mode Mode) (uint64, bool, error) {
	serialized := class.Serialize()

	idx, cached := c.cache[serialized]
	if mode == ModeCache {
		return idx, cached, nil
	}

	if cached {
		ch, err := readHeader(c.f, idx)
		if err == nil {
			co, err := types.ReadClassObject(c.f, classDataOffset(ch.Index))
			if err == nil && co.Serialized() == serialized {
				return idx, true, nil
			}
		}
		delete(c.cache, serialized)
	}

	return c.scanForMatch(serialized)
}

// VisitClasses iterates every registered class's header page index and
// ClassObject, in class-list order, until fn returns false or an error.
func (c *Catalog) VisitClasses(fn func(index uint64, co types.ClassObject) (bool, error)) error {
	list := c.list()
	it, err := list.Begin()
	if err != nil {
		return err
	}
	for !it.Done() {
		co, err := types.ReadClassObject(c.f, classDataOffset(it.Index()))
		if err != nil {
			return dberr.Structuref("unreadable class header at page %d: %v", it.Index(), err)
		}
		cont, err := fn(it.Index(), co)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		it, err = it.Next()
		if err != nil {
			return err
		}
	}
	return nil
}

// Header returns the decoded fixed-width ClassHeader fields for index.
func (c *Catalog) Header(index uint64) (Header, error) {
	return readHeader(c.f, index)
}

// WriteHeader persists changes to a ClassHeader's mutable fields (next id,
// node-page list bookkeeping).
func (c *Catalog) WriteHeader(h Header) error {
	return writeHeader(c.f, h)
}

// NodeList returns the per-class data-page list for the class whose header
// is at index.
func (c *Catalog) NodeList(index uint64) *page.List {
	return page.NewList(c.f, nodeListSentinelOffset(index))
}

// Allocator exposes the shared page allocator for node storage.
func (c *Catalog) Allocator() *page.Allocator { return c.alloc }

// File exposes the underlying byte store for node storage.
func (c *Catalog) File() *storage.File { return c.f }
