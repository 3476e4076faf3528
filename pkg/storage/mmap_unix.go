//go:build unix || darwin || linux || freebsd || openbsd || netbsd

package storage

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// OpenMmapBackend opens or creates a memory-mapped file. If initialSize is
// greater than the file's current size, the file is extended first.
func OpenMmapBackend(path string, initialSize int64) (*MmapBackend, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "open database file")
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat database file")
	}

	size := stat.Size()
	if initialSize > size {
		if err := f.Truncate(initialSize); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "extend database file")
		}
		size = initialSize
	}

	if size == 0 {
		// Nothing to map yet; the first Grow maps the file.
		return &MmapBackend{file: f}, nil
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mmap database file")
	}

	return &MmapBackend{file: f, data: data, size: size}, nil
}

// Sync flushes mapped pages to disk.
func (m *MmapBackend) Sync() error {
	if len(m.data) == 0 {
		return nil
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

// Grow extends the file and remaps it. With MAP_SHARED the kernel page
// cache may hold dirty pages that haven't reached disk yet, so the mapping
// is synced before it's torn down.
func (m *MmapBackend) Grow(newSize int64) error {
	if newSize <= m.size {
		return nil
	}
	return m.remap(newSize)
}

// Truncate shrinks the file and remaps it. A newSize of zero unmaps without
// remapping; the next Grow call remaps fresh.
func (m *MmapBackend) Truncate(newSize int64) error {
	if newSize >= m.size {
		return nil
	}
	return m.remap(newSize)
}

func (m *MmapBackend) remap(newSize int64) error {
	if len(m.data) > 0 {
		if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
			return err
		}
		if err := syscall.Munmap(m.data); err != nil {
			return err
		}
		m.data = nil
	}

	f := m.file.(*os.File)
	if err := f.Truncate(newSize); err != nil {
		return err
	}
	m.size = newSize

	if newSize == 0 {
		return nil
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(newSize),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return err
	}

	m.data = data
	return nil
}

// Close unmaps and closes the file.
func (m *MmapBackend) Close() error {
	var firstErr error

	if m.data != nil {
		if err := syscall.Munmap(m.data); err != nil && firstErr == nil {
			firstErr = err
		}
		m.data = nil
	}

	if m.file != nil {
		f := m.file.(*os.File)
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.file = nil
	}

	return firstErr
}
