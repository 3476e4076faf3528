// Package dberr defines the error taxonomy surfaced at the storage engine's
// API boundary. Every exported error wraps one of a small set of kinds so
// callers can branch on the kind with Is/KindOf without parsing strings.
package dberr

import "github.com/pkg/errors"

// Kind classifies a storage engine failure without describing the failing
// operation; the message carries the specifics.
type Kind int

const (
	// KindIO covers failed reads/writes/seeks/truncates, including reads
	// that ran past the end of the file.
	KindIO Kind = iota
	// KindStructure covers a corrupt on-disk layout: bad superblock magic,
	// an unparseable class grammar, or a broken page-list invariant.
	KindStructure
	// KindType covers a class constructed with a forbidden name, a value
	// tuple whose runtime types don't match a class's fields, or an
	// unrecognized tag in the class grammar.
	KindType
	// KindBadArgument covers wrong arity, an invalid offset, or asking a
	// Node in the wrong state for its id or free-list offset.
	KindBadArgument
	// KindNotImplemented covers a class or object that doesn't fit in a
	// page, or fixed-size node storage opened for a class with no fixed
	// size.
	KindNotImplemented
	// KindRuntime covers internal consistency violations, such as writing
	// into a slot that decoded as already valid.
	KindRuntime
	// KindPattern covers pattern failures: an edge with no class in the
	// pattern whose ingress type matches, or, during Match, a relation
	// class whose stored values don't decode as relations.
	KindPattern
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IoError"
	case KindStructure:
		return "StructureError"
	case KindType:
		return "TypeError"
	case KindBadArgument:
		return "BadArgument"
	case KindNotImplemented:
		return "NotImplemented"
	case KindRuntime:
		return "RuntimeError"
	case KindPattern:
		return "PatternError"
	default:
		return "Error"
	}
}

// dbError pairs a Kind with a wrapped cause so errors.Is/errors.Cause both
// work as callers expect.
type dbError struct {
	kind Kind
	err  error
}

func (e *dbError) Error() string { return e.kind.String() + ": " + e.err.Error() }
func (e *dbError) Unwrap() error { return e.err }
func (e *dbError) Cause() error  { return e.err }

// KindOf reports the taxonomy kind of err, or false if err isn't one of ours.
func KindOf(err error) (Kind, bool) {
	var de *dbError
	if errors.As(err, &de) {
		return de.kind, true
	}
	return 0, false
}

// Is reports whether err is a dberr of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func newf(kind Kind, format string, args ...interface{}) error {
	return &dbError{kind: kind, err: errors.Errorf(format, args...)}
}

func wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &dbError{kind: kind, err: errors.Wrap(err, msg)}
}

// IOf builds a KindIO error.
func IOf(format string, args ...interface{}) error { return newf(KindIO, format, args...) }

// WrapIO wraps an underlying I/O failure (e.g. from the Storage backend).
func WrapIO(err error, msg string) error { return wrap(KindIO, err, msg) }

// Structuref builds a KindStructure error.
func Structuref(format string, args ...interface{}) error {
	return newf(KindStructure, format, args...)
}

// Typef builds a KindType error.
func Typef(format string, args ...interface{}) error { return newf(KindType, format, args...) }

// BadArgumentf builds a KindBadArgument error.
func BadArgumentf(format string, args ...interface{}) error {
	return newf(KindBadArgument, format, args...)
}

// NotImplementedf builds a KindNotImplemented error.
func NotImplementedf(format string, args ...interface{}) error {
	return newf(KindNotImplemented, format, args...)
}

// Runtimef builds a KindRuntime error.
func Runtimef(format string, args ...interface{}) error { return newf(KindRuntime, format, args...) }

// Patternf builds a KindPattern error.
func Patternf(format string, args ...interface{}) error { return newf(KindPattern, format, args...) }
