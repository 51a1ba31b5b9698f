package engine

import (
	"errors"
	"io/fs"
)

// ErrPathNotFound is returned when a listing root does not exist or is not
// a directory. It is the only failure that stops a mask group.
var ErrPathNotFound = errors.New("path not found")

// ErrorKind classifies walk failures.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindPathNotFound
	KindAccessDenied
	KindEnumerationFailure
	// KindOutOfMemory is never produced: the Go runtime aborts on
	// allocation failure rather than returning an error.
	KindOutOfMemory
)

var kindNames = [...]string{
	KindNone:               "none",
	KindPathNotFound:       "path not found",
	KindAccessDenied:       "access denied",
	KindEnumerationFailure: "enumeration failure",
	KindOutOfMemory:        "out of memory",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Fatal reports whether a failure of this kind aborts a mask group.
func (k ErrorKind) Fatal() bool {
	return k == KindPathNotFound || k == KindOutOfMemory
}

// Classify maps an error onto the walk failure taxonomy.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrPathNotFound):
		return KindPathNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindAccessDenied
	default:
		return KindEnumerationFailure
	}
}
