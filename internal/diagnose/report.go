package diagnose

import (
	"fmt"

	"github.com/vk/gridplan/internal/graph"
)

// Severity separates advisory findings from export-blocking ones.
type Severity int8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Category names the structural rule a finding is about.
type Category int8

const (
	CategoryCycle Category = iota
	CategoryMultipleCreate
	CategoryMultipleDestroy
	CategoryUnsafeSelfAliasing
	CategoryMissingCreate
	CategoryTypeMismatch
	CategoryOrphanStep
	CategoryUnusedData
)

func (c Category) String() string {
	switch c {
	case CategoryCycle:
		return "Cycle"
	case CategoryMultipleCreate:
		return "MultipleCreate"
	case CategoryMultipleDestroy:
		return "MultipleDestroy"
	case CategoryUnsafeSelfAliasing:
		return "UnsafeSelfAliasing"
	case CategoryMissingCreate:
		return "MissingCreate"
	case CategoryTypeMismatch:
		return "TypeMismatch"
	case CategoryOrphanStep:
		return "OrphanStep"
	case CategoryUnusedData:
		return "UnusedData"
	}
	return fmt.Sprintf("Category(%d)", int8(c))
}

// LinkKind tells which ledger a blamed link lives in.
type LinkKind int8

const (
	LinkStep LinkKind = iota
	LinkField
)

func (k LinkKind) String() string {
	if k == LinkField {
		return "field link"
	}
	return "step link"
}

// BlamedLink points at one ledger entry suspected of contributing to a
// finding. Lists of blamed links are sorted ascending by trust, so the
// least-trusted candidates come first; ties keep ledger order.
type BlamedLink struct {
	Kind   LinkKind
	Ledger int
	Trust  graph.Trust
}

// Item is one finding.
type Item struct {
	Severity Severity
	Category Category
	Message  string
	Steps    []graph.Index
	Fields   []graph.Index
	Blamed   []BlamedLink
}

// Report is the complete result of one analysis pass. Two passes over an
// unchanged session produce identical reports.
type Report struct {
	Items []Item
}

// HasErrors reports whether any finding is export-blocking.
func (r *Report) HasErrors() bool {
	for _, it := range r.Items {
		if it.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity findings in report order.
func (r *Report) Errors() []Item {
	var out []Item
	for _, it := range r.Items {
		if it.Severity == SeverityError {
			out = append(out, it)
		}
	}
	return out
}

// Warnings returns the warning-severity findings in report order.
func (r *Report) Warnings() []Item {
	var out []Item
	for _, it := range r.Items {
		if it.Severity == SeverityWarning {
			out = append(out, it)
		}
	}
	return out
}
