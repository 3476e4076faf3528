// Package types implements the dynamic, reflection-style type system: the
// Class variants (primitive, string, struct, relation), their Object value
// counterparts, and the canonical textual serialization shared by both the
// on-disk catalog and the in-memory class cache.
package types

import "graphstore/pkg/dberr"

// Kind enumerates the supported primitive scalar types. A flat enum here
// avoids templating the rest of the type system over an arbitrary Go type
// parameter; every primitive value is boxed as the matching Go type inside
// a Primitive object instead.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindChar
)

// tag is the canonical, whitespace-free type-tag used in class
// serialization, chosen so that int -> "int" and uint64 -> "unsignedlong"
// matches the literal struct-field seed scenario.
func (k Kind) tag() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "signedchar"
	case KindUint8:
		return "unsignedchar"
	case KindInt16:
		return "shortint"
	case KindUint16:
		return "shortunsignedint"
	case KindInt32:
		return "int"
	case KindUint32:
		return "unsignedint"
	case KindInt64:
		return "longlongint"
	case KindUint64:
		return "unsignedlong"
	case KindFloat32:
		return "float"
	case KindFloat64:
		return "double"
	case KindChar:
		return "char"
	default:
		return ""
	}
}

// Size is sizeof(T) for the boxed Go type backing this Kind.
func (k Kind) Size() int {
	switch k {
	case KindBool, KindInt8, KindUint8, KindChar:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

func kindFromTag(tag string) (Kind, bool) {
	for k := KindBool; k <= KindChar; k++ {
		if k.tag() == tag {
			return k, true
		}
	}
	return 0, false
}

// validateName rejects a class name containing any grammar metacharacter.
func validateName(name string) error {
	if name == "" {
		return dberr.Typef("class name must not be empty")
	}
	for _, c := range name {
		switch c {
		case '@', '_', '<', '>':
			return dberr.Typef("class name %q contains forbidden character %q", name, c)
		}
	}
	return nil
}
