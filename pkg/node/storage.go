package node

import (
	"graphstore/pkg/catalog"
	"graphstore/pkg/dberr"
	"graphstore/pkg/page"
	"graphstore/pkg/storage"
	"graphstore/pkg/types"
)

// base holds everything both node storage flavors need: the backing file,
// the class's catalog entry, the shared allocator, and the class's own
// data-page list.
type base struct {
	f          *storage.File
	cat        *catalog.Catalog
	alloc      *page.Allocator
	classIndex uint64
	class      types.Class
	list       *page.List
}

func openBase(cat *catalog.Catalog, class types.Class) (*base, error) {
	idx, ok, err := cat.FindClass(class, catalog.ModeFile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dberr.Runtimef("class %q is not registered", class.Name())
	}
	return &base{
		f:          cat.File(),
		cat:        cat,
		alloc:      cat.Allocator(),
		classIndex: idx,
		class:      class,
		list:       cat.NodeList(idx),
	}, nil
}

func (b *base) header() (catalog.Header, error) { return b.cat.Header(b.classIndex) }

func (b *base) writeHeader(h catalog.Header) error { return b.cat.WriteHeader(h) }

// allocatePage obtains a fresh data page and links it as the class's new
// back page.
func (b *base) allocatePage() (page.Header, error) {
	h, err := b.alloc.Allocate(page.KindData)
	if err != nil {
		return page.Header{}, err
	}
	if err := b.list.PushBack(h.Index); err != nil {
		return page.Header{}, err
	}
	return page.ReadHeader(b.f, h.Index)
}

// freePage reclaims a data page that has gone fully empty.
func (b *base) freePage(index uint64) error {
	return b.alloc.Free(index, b.list)
}

// back returns the class's current last data page, allocating a first one
// if the class has none yet.
func (b *base) back() (page.Header, error) {
	empty, err := b.list.IsEmpty()
	if err != nil {
		return page.Header{}, err
	}
	if empty {
		return b.allocatePage()
	}
	idx, err := b.list.Back()
	if err != nil {
		return page.Header{}, err
	}
	return page.ReadHeader(b.f, idx)
}
