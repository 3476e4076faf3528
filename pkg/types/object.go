package types

import "graphstore/pkg/storage"

// Object is a value object: the runtime counterpart to a Class, round-
// tripping through a File at an explicit offset.
type Object interface {
	// Class returns the class this value belongs to.
	Class() Class
	// Size returns the object's current encoded footprint in bytes.
	Size() int
	// Write encodes the object at offset.
	Write(f *storage.File, offset int64) error
	// Read decodes the object from offset, replacing its current value.
	Read(f *storage.File, offset int64) error
	// String renders a diagnostic, human-readable form.
	String() string
}
