//go:build windows

package storage

import (
	"os"
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

type mmapHandle struct {
	file       *os.File
	mapHandle  windows.Handle
	mappedSize int64
}

// OpenMmapBackend opens or creates a memory-mapped file on Windows.
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
		return &MmapBackend{file: &mmapHandle{file: f}}, nil
	}

	data, handle, err := mapView(f, size)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &MmapBackend{file: &mmapHandle{file: f, mapHandle: handle, mappedSize: size}, data: data, size: size}, nil
}

func mapView(f *os.File, size int64) ([]byte, windows.Handle, error) {
	mapHandle, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READWRITE,
		uint32(size>>32), uint32(size&0xFFFFFFFF), nil)
	if err != nil {
		return nil, 0, err
	}
	addr, err := windows.MapViewOfFile(mapHandle, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(mapHandle)
		return nil, 0, err
	}
	var data []byte
	header := (*reflect.SliceHeader)(unsafe.Pointer(&data))
	header.Data = addr
	header.Len = int(size)
	header.Cap = int(size)
	return data, mapHandle, nil
}

func (m *MmapBackend) Sync() error {
	if len(m.data) == 0 {
		return nil
	}
	return windows.FlushViewOfFile(uintptr(unsafe.Pointer(&m.data[0])), uintptr(len(m.data)))
}

func (m *MmapBackend) Grow(newSize int64) error {
	if newSize <= m.size {
		return nil
	}
	return m.remap(newSize)
}

func (m *MmapBackend) Truncate(newSize int64) error {
	if newSize >= m.size || newSize == 0 {
		return nil
	}
	return m.remap(newSize)
}

func (m *MmapBackend) remap(newSize int64) error {
	handle := m.file.(*mmapHandle)

	if len(m.data) > 0 {
		if err := windows.FlushViewOfFile(uintptr(unsafe.Pointer(&m.data[0])), uintptr(len(m.data))); err != nil {
			return err
		}
		if err := windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&m.data[0]))); err != nil {
			return err
		}
	}
	if handle.mapHandle != 0 {
		if err := windows.CloseHandle(handle.mapHandle); err != nil {
			return err
		}
	}
	if err := handle.file.Truncate(newSize); err != nil {
		return err
	}

	data, mapHandle, err := mapView(handle.file, newSize)
	if err != nil {
		return err
	}

	handle.mapHandle = mapHandle
	handle.mappedSize = newSize
	m.data = data
	m.size = newSize
	return nil
}

func (m *MmapBackend) Close() error {
	var firstErr error

	handle, ok := m.file.(*mmapHandle)
	if !ok || handle == nil {
		return nil
	}

	if len(m.data) > 0 {
		if err := windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&m.data[0]))); err != nil && firstErr == nil {
			firstErr = err
		}
		m.data = nil
	}
	if handle.mapHandle != 0 {
		if err := windows.CloseHandle(handle.mapHandle); err != nil && firstErr == nil {
			firstErr = err
		}
		handle.mapHandle = 0
	}
	if handle.file != nil {
		if err := handle.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		handle.file = nil
	}

	m.file = nil
	return firstErr
}
