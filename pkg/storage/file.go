package storage

import (
	"encoding/binary"
	"os"

	"graphstore/pkg/dberr"
)

// File is the random-access byte store every other component reads and
// writes through. It never exposes the backend's raw bytes directly so
// every access can be bounds-checked and turned into a KindIO error.
type File struct {
	backend  Backend
	lockFile *os.File
}

// Open opens or creates path as a memory-mapped, disk-backed File and takes
// an exclusive lock on path+".lock". ReadOnly skips the lock.
func Open(path string, readOnly bool) (*File, error) {
	var lf *os.File
	if !readOnly {
		var err error
		lf, err = os.OpenFile(path+".lock", os.O_RDWR|os.O_CREATE, 0644)
		if err != nil {
			return nil, dberr.WrapIO(err, "open lock file")
		}
		if err := Lock(lf); err != nil {
			lf.Close()
			return nil, dberr.WrapIO(err, "lock database file")
		}
	}

	backend, err := OpenMmapBackend(path, 0)
	if err != nil {
		if lf != nil {
			Unlock(lf)
			lf.Close()
		}
		return nil, dberr.WrapIO(err, "open database file")
	}

	return &File{backend: backend, lockFile: lf}, nil
}

// OpenMemory opens an in-memory File with no backing path, for tests and
// ephemeral databases.
func OpenMemory() *File {
	return &File{backend: NewMemoryBackend(0)}
}

// Close releases the backend and any held lock.
func (f *File) Close() error {
	err := f.backend.Close()
	if f.lockFile != nil {
		Unlock(f.lockFile)
		f.lockFile.Close()
	}
	return err
}

// Sync flushes pending writes to the underlying medium.
func (f *File) Sync() error { return f.backend.Sync() }

// GetSize returns the file's current size in bytes.
func (f *File) GetSize() int64 { return f.backend.Size() }

// Extend grows the file by by bytes, zero-filling the new region.
func (f *File) Extend(by int64) error {
	if by < 0 {
		return dberr.BadArgumentf("extend by negative size %d", by)
	}
	if err := f.backend.Grow(f.backend.Size() + by); err != nil {
		return dberr.WrapIO(err, "extend file")
	}
	return nil
}

// Truncate shrinks the file by by bytes from the tail.
func (f *File) Truncate(by int64) error {
	if by < 0 {
		return dberr.BadArgumentf("truncate by negative size %d", by)
	}
	newSize := f.backend.Size() - by
	if newSize < 0 {
		newSize = 0
	}
	if err := f.backend.Truncate(newSize); err != nil {
		return dberr.WrapIO(err, "truncate file")
	}
	return nil
}

// Clear discards all content, resetting the file to zero length.
func (f *File) Clear() error {
	if err := f.backend.Truncate(0); err != nil {
		return dberr.WrapIO(err, "clear file")
	}
	return nil
}

// WriteAt writes buf at offset, extending the file first if necessary.
func (f *File) WriteAt(offset int64, buf []byte) error {
	if offset < 0 {
		return dberr.BadArgumentf("negative offset %d", offset)
	}
	end := offset + int64(len(buf))
	if end > f.backend.Size() {
		if err := f.backend.Grow(end); err != nil {
			return dberr.WrapIO(err, "grow file for write")
		}
	}
	dst := f.backend.Slice(int(offset), len(buf))
	if dst == nil {
		return dberr.IOf("write out of bounds at offset %d length %d", offset, len(buf))
	}
	copy(dst, buf)
	return nil
}

// ReadAt reads len(buf) bytes starting at offset into buf.
func (f *File) ReadAt(offset int64, buf []byte) error {
	if offset < 0 {
		return dberr.BadArgumentf("negative offset %d", offset)
	}
	src := f.backend.Slice(int(offset), len(buf))
	if src == nil {
		return dberr.IOf("read out of bounds at offset %d length %d", offset, len(buf))
	}
	copy(buf, src)
	return nil
}

// ReadString reads count raw bytes at offset and returns them as a string.
func (f *File) ReadString(offset int64, count int) (string, error) {
	buf := make([]byte, count)
	if err := f.ReadAt(offset, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteString writes s's bytes at offset.
func (f *File) WriteString(offset int64, s string) error {
	return f.WriteAt(offset, []byte(s))
}

// WriteUint64 writes a little-endian uint64 at offset.
func (f *File) WriteUint64(offset int64, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return f.WriteAt(offset, buf[:])
}

// ReadUint64 reads a little-endian uint64 at offset.
func (f *File) ReadUint64(offset int64) (uint64, error) {
	var buf [8]byte
	if err := f.ReadAt(offset, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteUint32 writes a little-endian uint32 at offset.
func (f *File) WriteUint32(offset int64, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return f.WriteAt(offset, buf[:])
}

// ReadUint32 reads a little-endian uint32 at offset.
func (f *File) ReadUint32(offset int64) (uint32, error) {
	var buf [4]byte
	if err := f.ReadAt(offset, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
