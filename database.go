// Package graphstore is an embedded, single-file object-and-relation
// database: a thin facade dispatching user operations to the catalog and
// node storage layers underneath.
package graphstore

import (
	"graphstore/pkg/catalog"
	"graphstore/pkg/dberr"
	"graphstore/pkg/node"
	"graphstore/pkg/page"
	"graphstore/pkg/pattern"
	"graphstore/pkg/storage"
	"graphstore/pkg/types"
)

// Mode selects how Open treats the superblock of an existing file.
type Mode int

const (
	// ModeRead requires the file already hold a valid superblock.
	ModeRead Mode = iota
	// ModeWrite unconditionally writes a fresh superblock, discarding
	// whatever was there.
	ModeWrite
	// ModeDefault tries Read first; a StructureError (missing or corrupt
	// superblock) falls back to Write.
	ModeDefault
)

// Database is the single entry point for storing classes, nodes, and
// relations in one file, and for matching patterns over them. Not safe
// for concurrent use: every operation runs to completion synchronously
// against the one shared File.
type Database struct {
	f        *storage.File
	alloc    *page.Allocator
	cat      *catalog.Catalog
	storages map[string]node.Storage
}

// Open opens path as a disk-backed database file under mode.
func Open(path string, mode Mode) (*Database, error) {
	f, err := storage.Open(path, mode == ModeRead)
	if err != nil {
		return nil, err
	}
	db, err := openFile(f, mode)
	if err != nil {
		f.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory opens a fresh in-memory database, for tests and ephemeral
// use. Always behaves as ModeWrite since there is nothing to read.
func OpenMemory() *Database {
	db, err := openFile(storage.OpenMemory(), ModeWrite)
	if err != nil {
		// ModeWrite on a brand-new backend cannot fail.
		panic(err)
	}
	return db
}

func openFile(f *storage.File, mode Mode) (*Database, error) {
	sb, err := resolveSuperblock(f, mode)
	if err != nil {
		return nil, err
	}
	alloc := page.OpenAllocator(f, sb)
	return &Database{
		f:        f,
		alloc:    alloc,
		cat:      catalog.Open(f, alloc),
		storages: make(map[string]node.Storage),
	}, nil
}

func resolveSuperblock(f *storage.File, mode Mode) (page.Superblock, error) {
	switch mode {
	case ModeRead:
		return page.ReadSuperblock(f)
	case ModeWrite:
		if err := f.Clear(); err != nil {
			return page.Superblock{}, err
		}
		return page.InitSuperblock(f)
	case ModeDefault:
		sb, err := page.ReadSuperblock(f)
		if err == nil {
			return sb, nil
		}
		if !dberr.Is(err, dberr.KindStructure) {
			return page.Superblock{}, err
		}
		if err := f.Clear(); err != nil {
			return page.Superblock{}, err
		}
		return page.InitSuperblock(f)
	default:
		return page.Superblock{}, dberr.BadArgumentf("unknown open mode %d", mode)
	}
}

// Close releases the backing file.
func (db *Database) Close() error { return db.f.Close() }

// AddClass registers class, deduplicating by serialization.
func (db *Database) AddClass(class types.Class) error {
	_, err := db.cat.AddClass(class)
	return err
}

// RemoveClass unregisters class and frees every node it still owns.
func (db *Database) RemoveClass(class types.Class) error {
	delete(db.storages, class.Serialize())
	return db.cat.RemoveClass(class)
}

// AddNode stores value as a new node of class, which must already be
// registered, returning its assigned id.
func (db *Database) AddNode(class types.Class, value types.Object) (types.Id, error) {
	s, err := db.storageFor(class)
	if err != nil {
		return 0, err
	}
	return s.AddNode(value)
}

// RemoveNodesIf deletes every node of class for which predicate holds.
func (db *Database) RemoveNodesIf(class types.Class, predicate func(id types.Id, data types.Object) bool) error {
	s, err := db.storageFor(class)
	if err != nil {
		return err
	}
	return s.RemoveNodesIf(predicate)
}

// VisitNodes calls fn for every node of class until fn returns false or an
// error occurs.
func (db *Database) VisitNodes(class types.Class, fn func(id types.Id, data types.Object) (bool, error)) error {
	s, err := db.storageFor(class)
	if err != nil {
		return err
	}
	return s.VisitNodes(fn)
}

// CollectNodesIf gathers every node of class for which predicate holds.
func (db *Database) CollectNodesIf(class types.Class, predicate func(id types.Id, data types.Object) bool) ([]types.Object, error) {
	var out []types.Object
	err := db.VisitNodes(class, func(id types.Id, data types.Object) (bool, error) {
		if predicate(id, data) {
			out = append(out, data)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PatternMatch enumerates every tuple of nodes satisfying p.
func (db *Database) PatternMatch(p *pattern.Pattern) ([]pattern.Tuple, error) {
	return pattern.Match(db, p)
}

// Storage implements pattern.Lookup, resolving (and caching) the node
// storage handle backing class.
func (db *Database) Storage(class types.Class) (node.Storage, error) {
	return db.storageFor(class)
}

func (db *Database) storageFor(class types.Class) (node.Storage, error) {
	key := class.Serialize()
	if s, ok := db.storages[key]; ok {
		return s, nil
	}
	s, err := node.Open(db.cat, class)
	if err != nil {
		return nil, err
	}
	db.storages[key] = s
	return s, nil
}
