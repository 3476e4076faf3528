package node

import (
	"graphstore/pkg/catalog"
	"graphstore/pkg/dberr"
	"graphstore/pkg/page"
	"graphstore/pkg/types"
)

// ConstSizeStorage stores nodes of a class whose encoded size is fixed
// (every primitive, or a struct built entirely from such classes). Ids are
// purely positional: the nth slot ever initialized always holds id n, and a
// freed slot is reused by rewriting its own position rather than by
// threading a separate allocation counter.
type ConstSizeStorage struct {
	*base
	slotSize int
	nodeSize int
	slotsPerPage int
}

// OpenConstSizeStorage opens node storage for class, which must already be
// registered in cat and must have a known (non-string-containing) size.
func OpenConstSizeStorage(cat *catalog.Catalog, class types.Class) (*ConstSizeStorage, error) {
	b, err := openBase(cat, class)
	if err != nil {
		return nil, err
	}
	slotSize, ok := class.Size()
	if !ok {
		return nil, dberr.NotImplementedf("class %q has no fixed size", class.Name())
	}
	nodeSize := ValidSize(slotSize)
	if nodeSize > page.Size-page.HeaderSize {
		return nil, dberr.NotImplementedf("class %q is too large for a page", class.Name())
	}
	return &ConstSizeStorage{
		base:         b,
		slotSize:     slotSize,
		nodeSize:     nodeSize,
		slotsPerPage: (page.Size - page.HeaderSize) / nodeSize,
	}, nil
}

func (s *ConstSizeStorage) pageOffset(index uint64, slot int) int64 {
	return page.Address(index) + page.HeaderSize + int64(slot)*int64(s.nodeSize)
}

// idToOffset translates a positional id to its absolute file offset,
// walking the class's data-page list to its (id/slotsPerPage)th page.
func (s *ConstSizeStorage) idToOffset(id uint64) (int64, error) {
	pageOrdinal := id / uint64(s.slotsPerPage)
	slot := int(id % uint64(s.slotsPerPage))

	it, err := s.list.Begin()
	if err != nil {
		return 0, err
	}
	for i := uint64(0); i < pageOrdinal; i++ {
		if it.Done() {
			return 0, dberr.BadArgumentf("id %d out of range", id)
		}
		it, err = it.Next()
		if err != nil {
			return 0, err
		}
	}
	if it.Done() {
		return 0, dberr.BadArgumentf("id %d out of range", id)
	}
	return s.pageOffset(it.Index(), slot), nil
}

// AddNode appends a node, reusing a freed slot if the class's free chain is
// non-empty.
func (s *ConstSizeStorage) AddNode(data types.Object) (uint64, error) {
	header, err := s.header()
	if err != nil {
		return 0, err
	}

	if header.FreeHead != catalog.NoFreeHead {
		offset := int64(header.FreeHead)
		next, err := ReadFree(s.f, offset)
		if err != nil {
			return 0, err
		}
		id, err := s.offsetToID(offset)
		if err != nil {
			return 0, err
		}
		if err := WriteValid(s.f, offset, header.Magic, id, data); err != nil {
			return 0, err
		}
		header.FreeHead = next
		header.NodeCount++
		return id, s.writeHeader(header)
	}

	back, err := s.back()
	if err != nil {
		return 0, err
	}
	if int(back.InitOffset)+s.nodeSize > page.Size {
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
	offset := page.Address(back.Index) + int64(back.InitOffset)
	if err := WriteValid(s.f, offset, header.Magic, id, data); err != nil {
		return 0, err
	}
	back.InitOffset += uint32(s.nodeSize)
	back.FreeOffset = back.InitOffset
	back.ActualSize += uint64(s.nodeSize)
	if err := page.WriteHeader(s.f, back); err != nil {
		return 0, err
	}

	header.NextID++
	header.NodeCount++
	return id, s.writeHeader(header)
}

func (s *ConstSizeStorage) offsetToID(offset int64) (uint64, error) {
	index := page.IndexOf(offset)
	slot := (offset - page.Address(index) - page.HeaderSize) / int64(s.nodeSize)

	it, err := s.list.Begin()
	if err != nil {
		return 0, err
	}
	var ordinal uint64
	for !it.Done() {
		if it.Index() == index {
			return ordinal*uint64(s.slotsPerPage) + uint64(slot), nil
		}
		it, err = it.Next()
		if err != nil {
			return 0, err
		}
		ordinal++
	}
	return 0, dberr.Structuref("free slot at offset %d is not on the class's page list", offset)
}

// Get reads the node with id, returning (nil, false, nil) if it's absent or
// currently free.
func (s *ConstSizeStorage) Get(id uint64) (types.Object, bool, error) {
	offset, err := s.idToOffset(id)
	if dberr.Is(err, dberr.KindBadArgument) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	header, err := s.header()
	if err != nil {
		return nil, false, err
	}
	state, err := Peek(s.f, offset, header.Magic)
	if err != nil {
		return nil, false, err
	}
	if state != StateValid {
		return nil, false, nil
	}
	_, data, err := ReadValid(s.f, offset, s.class)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// VisitNodes calls fn for every live node in positional order until fn
// returns false or an error occurs.
func (s *ConstSizeStorage) VisitNodes(fn func(id uint64, data types.Object) (bool, error)) error {
	header, err := s.header()
	if err != nil {
		return err
	}

	it, err := s.list.Begin()
	if err != nil {
		return err
	}
	for !it.Done() {
		ph := it.Header()
		slots := (int(ph.InitOffset) - page.HeaderSize) / s.nodeSize
		for slot := 0; slot < slots; slot++ {
			offset := s.pageOffset(it.Index(), slot)
			state, err := Peek(s.f, offset, header.Magic)
			if err != nil {
				return err
			}
			if state != StateValid {
				continue
			}
			id, data, err := ReadValid(s.f, offset, s.class)
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
		}
		it, err = it.Next()
		if err != nil {
			return err
		}
	}
	return nil
}

// RemoveNodesIf deletes every node for which predicate returns true,
// threading freed slots onto the class's free chain.
func (s *ConstSizeStorage) RemoveNodesIf(predicate func(id uint64, data types.Object) bool) error {
	header, err := s.header()
	if err != nil {
		return err
	}

	it, err := s.list.Begin()
	if err != nil {
		return err
	}
	for !it.Done() {
		ph := it.Header()
		slots := (int(ph.InitOffset) - page.HeaderSize) / s.nodeSize
		for slot := 0; slot < slots; slot++ {
			offset := s.pageOffset(it.Index(), slot)
			state, err := Peek(s.f, offset, header.Magic)
			if err != nil {
				return err
			}
			if state != StateValid {
				continue
			}
			id, data, err := ReadValid(s.f, offset, s.class)
			if err != nil {
				return err
			}
			if !predicate(id, data) {
				continue
			}
			if err := WriteFree(s.f, offset, header.Magic, header.FreeHead); err != nil {
				return err
			}
			header.FreeHead = uint64(offset)
			header.NodeCount--
		}
		it, err = it.Next()
		if err != nil {
			return err
		}
	}
	return s.writeHeader(header)
}
