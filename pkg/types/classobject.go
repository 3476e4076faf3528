package types

import (
	"strings"

	"graphstore/pkg/dberr"
	"graphstore/pkg/storage"
)

// ClassObject is the persisted form of a Class: a length-prefixed copy of
// its canonical serialization. It is also the unit the class cache and
// class-header pages store.
type ClassObject struct {
	class      Class
	serialized string
}

// NewClassObject wraps an already-built Class.
func NewClassObject(class Class) ClassObject {
	return ClassObject{class: class, serialized: class.Serialize()}
}

// ParseClassObject decodes a ClassObject from its serialized string.
func ParseClassObject(serialized string) (ClassObject, error) {
	class, err := Parse(serialized)
	if err != nil {
		return ClassObject{}, err
	}
	return ClassObject{class: class, serialized: serialized}, nil
}

// Class returns the decoded class tree.
func (co ClassObject) Class() Class { return co.class }

// Serialized returns the canonical string form, used as the class cache key.
func (co ClassObject) Serialized() string { return co.serialized }

// Size is the on-disk footprint: a uint32 length prefix plus the bytes.
func (co ClassObject) Size() int { return 4 + len(co.serialized) }

// Contains reports whether other's serialization appears as a substring of
// co's serialization — e.g. to check whether a struct embeds a given field
// class verbatim.
func (co ClassObject) Contains(other ClassObject) bool {
	return strings.Contains(co.serialized, other.serialized)
}

// Write persists the ClassObject at offset.
func (co ClassObject) Write(f *storage.File, offset int64) error {
	if err := f.WriteUint32(offset, uint32(len(co.serialized))); err != nil {
		return err
	}
	return f.WriteString(offset+4, co.serialized)
}

// ReadClassObject reads a ClassObject written by Write.
func ReadClassObject(f *storage.File, offset int64) (ClassObject, error) {
	length, err := f.ReadUint32(offset)
	if err != nil {
		return ClassObject{}, err
	}
	serialized, err := f.ReadString(offset+4, int(length))
	if err != nil {
		return ClassObject{}, err
	}
	co, err := ParseClassObject(serialized)
	if err != nil {
		return ClassObject{}, dberr.Structuref("unparseable class at offset %d: %v", offset, err)
	}
	return co, nil
}
