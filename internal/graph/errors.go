package graph

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed enumeration of ways a mutation or export call can
// fail. Every failure leaves the session state unchanged.
type ErrorKind int

const (
	// KindInvalidIndex means an index outside the assigned range was passed.
	KindInvalidIndex ErrorKind = iota
	// KindDuplicate means an index that already exists was re-added.
	KindDuplicate
	// KindOutOfSequence means an index was added ahead of the dense sequence.
	KindOutOfSequence
	// KindTypeMismatch means two fields with different type tags were linked.
	KindTypeMismatch
	// KindCycle means the mutation would close a precedence cycle, or is a
	// self-loop.
	KindCycle
	// KindUsageViolation means a usage-count or self-aliasing rule was broken.
	KindUsageViolation
	// KindCapacity means the index space is exhausted.
	KindCapacity
	// KindInvalidState means the session is not in a state that permits the
	// call, such as exporting with outstanding diagnostics errors.
	KindInvalidState
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidIndex:
		return "invalid index"
	case KindDuplicate:
		return "duplicate"
	case KindOutOfSequence:
		return "out of sequence"
	case KindTypeMismatch:
		return "type mismatch"
	case KindCycle:
		return "cycle"
	case KindUsageViolation:
		return "usage violation"
	case KindCapacity:
		return "capacity"
	case KindInvalidState:
		return "invalid state"
	}
	return fmt.Sprintf("error kind(%d)", int(k))
}

// StructuralError is the error type returned by every mutation and by
// export. Callers branch on Kind; Message is for humans.
type StructuralError struct {
	Kind    ErrorKind
	Message string
}

func (e *StructuralError) Error() string {
	return e.Message
}

func structErr(kind ErrorKind, format string, args ...any) *StructuralError {
	return &StructuralError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Kind extracts the structural error kind from err, if it carries one.
func Kind(err error) (ErrorKind, bool) {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a StructuralError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := Kind(err)
	return ok && k == kind
}
