package node

import (
	"graphstore/pkg/catalog"
	"graphstore/pkg/dberr"
	"graphstore/pkg/page"
	"graphstore/pkg/types"
)

// VarSizeStorage stores nodes of a class whose encoded size may vary
// instance to instance (a String, or anything that transitively contains
// one). Ids are assigned monotonically from the class header's counter and
// never reused; new nodes always append, and a freed frame's space is
// reclaimed only when its whole page empties out.
type VarSizeStorage struct {
	*base
}

// OpenVarSizeStorage opens node storage for class, which must already be
// registered in cat.
func OpenVarSizeStorage(cat *catalog.Catalog, class types.Class) (*VarSizeStorage, error) {
	b, err := openBase(cat, class)
	if err != nil {
		return nil, err
	}
	return &VarSizeStorage{base: b}, nil
}

// AddNode appends data as a new node, returning its assigned id.
func (s *VarSizeStorage) AddNode(data types.Object) (uint64, error) {
	frameSize := ValidSize(data.Size())
	if frameSize+page.HeaderSize > page.Size {
		return 0, dberr.NotImplementedf("object of %d bytes is too large for a page", data.Size())
	}

	header, err := s.header()
	if err != nil {
		return 0, err
	}

	back, err := s.back()
	if err != nil {
		return 0, err
	}
	if int(back.FreeOffset)+frameSize > page.Size {
		back, err = s.allocatePage()
		if err != nil {
			return 0, err
		}
	}

	// back()/allocatePage() may have just linked a fresh page into this
	// class's node list, which rewrites its on-disk sentinel directly.
	// Re-read so the header we write back below doesn't clobber that with
	// the snapshot taken before the allocation.
	header, err = s.header()
	if err != nil {
		return 0, err
	}

	id := header.NextID
	offset := page.Address(back.Index) + int64(back.FreeOffset)
	if err := WriteValid(s.f, offset, header.Magic, id, data); err != nil {
		return 0, err
	}

	back.FreeOffset += uint32(frameSize)
	if back.FreeOffset > back.InitOffset {
		back.InitOffset = back.FreeOffset
	}
	back.ActualSize += uint64(frameSize)
	if err := page.WriteHeader(s.f, back); err != nil {
		return 0, err
	}

	header.NextID++
	header.NodeCount++
	return id, s.writeHeader(header)
}

// Cursor is a forward-only, state-skipping iterator over a var-size
// class's live nodes.
type Cursor struct {
	s      *VarSizeStorage
	pageIt page.Iterator
	offset int64
	done   bool
}

// Begin returns a cursor at the first live node, skipping past any leading
// free frames.
func (s *VarSizeStorage) Begin() (*Cursor, error) {
	it, err := s.list.Begin()
	if err != nil {
		return nil, err
	}
	c := &Cursor{s: s, pageIt: it, offset: page.HeaderSize}
	if it.Done() {
		c.done = true
		return c, nil
	}
	if err := c.settle(); err != nil {
		return nil, err
	}
	return c, nil
}

// Done reports whether the cursor has run past the class's last node.
func (c *Cursor) Done() bool { return c.done }

// Id, Data return the current node's identity and value. Valid only when
// !Done().
func (c *Cursor) Id() (uint64, error) {
	id, _, err := ReadValid(c.s.f, c.absOffset(), c.s.class)
	return id, err
}

// Data decodes the current node's payload.
func (c *Cursor) Data() (types.Object, error) {
	_, data, err := ReadValid(c.s.f, c.absOffset(), c.s.class)
	return data, err
}

func (c *Cursor) absOffset() int64 { return page.Address(c.pageIt.Index()) + c.offset }

// settle advances the cursor past any run of free or past-initialized
// frames, landing on a valid frame or at Done.
func (c *Cursor) settle() error {
	for {
		ph := c.pageIt.Header()
		if c.offset >= int64(ph.InitOffset) {
			next, err := c.pageIt.Next()
			if err != nil {
				return err
			}
			c.pageIt = next
			c.offset = page.HeaderSize
			if c.pageIt.Done() {
				c.done = true
				return nil
			}
			continue
		}

		header, err := c.s.header()
		if err != nil {
			return err
		}
		state, err := Peek(c.s.f, c.absOffset(), header.Magic)
		if err != nil {
			return err
		}
		switch state {
		case StateValid:
			return nil
		case StateFree:
			capacity, err := ReadFree(c.s.f, c.absOffset())
			if err != nil {
				return err
			}
			c.offset += int64(capacity)
			continue
		default:
			next, err := c.pageIt.Next()
			if err != nil {
				return err
			}
			c.pageIt = next
			c.offset = page.HeaderSize
			if c.pageIt.Done() {
				c.done = true
				return nil
			}
		}
	}
}

// Next advances the cursor to the following live node.
func (c *Cursor) Next() error {
	if c.done {
		return nil
	}
	_, data, err := ReadValid(c.s.f, c.absOffset(), c.s.class)
	if err != nil {
		return err
	}
	c.offset += int64(ValidSize(data.Size()))
	return c.settle()
}

// Get reads the node with id by scanning for it, returning (nil, false,
// nil) if no live node carries that id. Variable-size storage has no
// positional shortcut from id to offset, so lookups are linear.
func (s *VarSizeStorage) Get(id uint64) (types.Object, bool, error) {
	var found types.Object
	err := s.VisitNodes(func(nodeID uint64, data types.Object) (bool, error) {
		if nodeID == id {
			found = data
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return found, found != nil, nil
}

// VisitNodes calls fn for every live node until fn returns false or an
// error occurs.
func (s *VarSizeStorage) VisitNodes(fn func(id uint64, data types.Object) (bool, error)) error {
	cur, err := s.Begin()
	if err != nil {
		return err
	}
	for !cur.Done() {
		id, err := cur.Id()
		if err != nil {
			return err
		}
		data, err := cur.Data()
		if err != nil {
			return err
		}
		cont, err := fn(id, data)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		if err := cur.Next(); err != nil {
			return err
		}
	}
	return nil
}

// RemoveNodesIf deletes every node for which predicate returns true. A page
// that ends up holding no live nodes is freed back to the allocator.
func (s *VarSizeStorage) RemoveNodesIf(predicate func(id uint64, data types.Object) bool) error {
	empty, err := s.list.IsEmpty()
	if err != nil {
		return err
	}
	if empty {
		return nil
	}

	header, err := s.header()
	if err != nil {
		return err
	}

	var removed uint64
	var toFree []uint64
	it, err := s.list.Begin()
	if err != nil {
		return err
	}
	for !it.Done() {
		ph := it.Header()
		offset := int64(page.HeaderSize)
		for offset < int64(ph.InitOffset) {
			abs := page.Address(it.Index()) + offset
			state, err := Peek(s.f, abs, header.Magic)
			if err != nil {
				return err
			}
			if state == StateFree {
				capacity, err := ReadFree(s.f, abs)
				if err != nil {
					return err
				}
				offset += int64(capacity)
				continue
			}
			if state != StateValid {
				break
			}
			id, data, err := ReadValid(s.f, abs, s.class)
			if err != nil {
				return err
			}
			frameSize := ValidSize(data.Size())
			if predicate(id, data) {
				if err := WriteFree(s.f, abs, header.Magic, uint64(frameSize)); err != nil {
					return err
				}
				ph.ActualSize -= uint64(frameSize)
				if err := page.WriteHeader(s.f, ph); err != nil {
					return err
				}
				removed++
			}
			offset += int64(frameSize)
		}
		if ph.ActualSize == 0 {
			toFree = append(toFree, it.Index())
		}
		it, err = it.Next()
		if err != nil {
			return err
		}
	}

	for _, idx := range toFree {
		if err := s.freePage(idx); err != nil {
			return err
		}
	}

	// freePage unlinks pages from this class's node list directly,
	// rewriting its on-disk sentinel; re-read so the header we persist
	// carries that, not the pre-free snapshot taken above.
	fresh, err := s.header()
	if err != nil {
		return err
	}
	fresh.NodeCount = header.NodeCount - removed
	return s.writeHeader(fresh)
}
