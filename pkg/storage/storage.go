// Package storage provides the byte-addressable random-access backing store
// that every other package in this module reads and writes pages through.
package storage

import "github.com/pkg/errors"

// Backend abstracts the raw byte store underneath a File. The engine ships
// two: a memory-mapped file for on-disk databases and a plain in-memory
// buffer for tests and ephemeral databases.
type Backend interface {
	// Size returns the current size of the backing store in bytes.
	Size() int64

	// Slice returns a slice of the backing data at the given offset and
	// length, or nil if the requested range falls outside the store.
	Slice(offset, length int) []byte

	// Grow extends the store to newSize, zero-filling the new region. A
	// newSize <= Size is a no-op.
	Grow(newSize int64) error

	// Truncate shrinks the store to newSize. A newSize >= Size is a no-op.
	Truncate(newSize int64) error

	// Sync flushes pending writes to the underlying medium.
	Sync() error

	// Close releases resources held by the backend.
	Close() error
}

// MemoryBackend implements Backend over a plain byte slice.
type MemoryBackend struct {
	data []byte
}

// NewMemoryBackend creates an in-memory backend of the given initial size.
func NewMemoryBackend(initialSize int64) *MemoryBackend {
	if initialSize <= 0 {
		initialSize = 0
	}
	return &MemoryBackend{data: make([]byte, initialSize)}
}

func (m *MemoryBackend) Size() int64 { return int64(len(m.data)) }

func (m *MemoryBackend) Slice(offset, length int) []byte {
	if offset < 0 || length < 0 || offset+length > len(m.data) {
		return nil
	}
	return m.data[offset : offset+length]
}

func (m *MemoryBackend) Grow(newSize int64) error {
	if newSize <= int64(len(m.data)) {
		return nil
	}
	grown := make([]byte, newSize)
	copy(grown, m.data)
	m.data = grown
	return nil
}

func (m *MemoryBackend) Truncate(newSize int64) error {
	if newSize >= int64(len(m.data)) {
		return nil
	}
	if newSize < 0 {
		return errors.New("negative truncate size")
	}
	m.data = m.data[:newSize]
	return nil
}

func (m *MemoryBackend) Sync() error { return nil }

func (m *MemoryBackend) Close() error {
	m.data = nil
	return nil
}
