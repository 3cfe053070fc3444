package graph

import "fmt"

// Index identifies a step or a field. Both index spaces are dense,
// zero-based and sequentially assigned within one session.
type Index int32

// TypeTag is the opaque identity of a datum's semantic type. Equality is
// exact; there is no coercion between related types.
type TypeTag string

// Usage is the kind of access a field grants its owning step. The declared
// order Create < Read < Destroy is load-bearing: it is the partial order
// from which implicit step links are derived.
type Usage int8

const (
	UsageCreate Usage = iota
	UsageRead
	UsageDestroy
)

func (u Usage) String() string {
	switch u {
	case UsageCreate:
		return "create"
	case UsageRead:
		return "read"
	case UsageDestroy:
		return "destroy"
	}
	return fmt.Sprintf("usage(%d)", int8(u))
}

// MarshalText renders the usage name into exported JSON.
func (u Usage) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u Usage) valid() bool {
	return u >= UsageCreate && u <= UsageDestroy
}

// Trust ranks how much a declared link is trusted. It has no effect on
// validity; diagnostics blame the least-trusted links first.
type Trust int8

const (
	TrustLow Trust = iota
	TrustMiddle
	TrustHigh
)

func (tr Trust) String() string {
	switch tr {
	case TrustLow:
		return "low"
	case TrustMiddle:
		return "middle"
	case TrustHigh:
		return "high"
	}
	return fmt.Sprintf("trust(%d)", int8(tr))
}

// ParseTrust converts a configuration string into a Trust level.
func ParseTrust(s string) (Trust, error) {
	switch s {
	case "low":
		return TrustLow, nil
	case "middle":
		return TrustMiddle, nil
	case "high":
		return TrustHigh, nil
	}
	return 0, fmt.Errorf("invalid trust level %q: must be 'low', 'middle' or 'high'", s)
}

// Edge is a directed precedence constraint between two steps.
type Edge struct {
	Before Index `json:"before"`
	After  Index `json:"after"`
}

// StepLink is an explicit precedence declaration recorded in the ledger.
type StepLink struct {
	Edge
	Trust Trust
}

// FieldLink is a declaration that two fields reference the same datum,
// recorded in the ledger. Redundant marks links whose endpoints were already
// in the same class when the link arrived; they are kept for blame ranking
// but did no structural work.
type FieldLink struct {
	A, B      Index
	Trust     Trust
	Redundant bool
}

// Mode selects when invariants are checked.
type Mode int

const (
	// ModeEager validates every mutation before committing it.
	ModeEager Mode = iota
	// ModeLazy defers usage and cycle checking to batch diagnostics.
	ModeLazy
)
