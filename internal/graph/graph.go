package graph

import "github.com/vk/gridplan/internal/dsu"

// Graph accumulates the state of one construction session: step and field
// tables, the link ledger, the field equivalence classes, and the adjacency
// list the reachability oracle walks. It is not safe for concurrent use;
// a single logical caller drives all mutations.
type Graph struct {
	mode Mode

	// stepFields lists, per step, its owned field indices in declaration
	// order. The slice length is the step count.
	stepFields [][]Index

	// Field tables, all indexed by field index.
	fieldOwner []Index
	fieldType  []TypeTag
	fieldUsage []Usage

	// classes groups fields by datum. One dsu element per field, allocated
	// in lockstep with the field tables.
	classes *dsu.Set

	// The link ledger. Append-only; rejected calls never reach it.
	stepLinks  []StepLink
	fieldLinks []FieldLink

	// adj holds, per step, its outgoing precedence edges: explicit links
	// plus, in eager mode, the implied edges committed by LinkFields.
	adj [][]Index
}

// New returns an empty session validating in the given mode.
func New(mode Mode) *Graph {
	return &Graph{
		mode:    mode,
		classes: dsu.New(),
	}
}

// Mode returns the session's validation mode.
func (g *Graph) Mode() Mode {
	return g.mode
}

// StepCount returns the number of steps added so far.
func (g *Graph) StepCount() int {
	return len(g.stepFields)
}

// FieldCount returns the number of fields added so far.
func (g *Graph) FieldCount() int {
	return len(g.fieldOwner)
}

// AddStep registers the step with the given index. Only the next sequential
// index is accepted: anything lower is a duplicate, anything higher is out
// of sequence. Steps are never removed or renumbered within a session.
func (g *Graph) AddStep(idx Index) error {
	switch {
	case idx < 0:
		return structErr(KindInvalidIndex, "step index %d is negative", idx)
	case int(idx) < len(g.stepFields):
		return structErr(KindDuplicate, "step %d already exists", idx)
	case int(idx) > len(g.stepFields):
		return structErr(KindOutOfSequence, "step index %d skips ahead of count %d", idx, len(g.stepFields))
	}
	g.stepFields = append(g.stepFields, nil)
	g.adj = append(g.adj, nil)
	return nil
}

// AddField registers a field owned by stepIdx with the given type tag and
// usage, and allocates its singleton equivalence class. Field indices are
// subject to the same dense-sequence rule as step indices.
func (g *Graph) AddField(stepIdx, fieldIdx Index, tag TypeTag, usage Usage) error {
	if !usage.valid() {
		return structErr(KindUsageViolation, "unknown usage kind %d", int8(usage))
	}
	if stepIdx < 0 || int(stepIdx) >= len(g.stepFields) {
		return structErr(KindInvalidIndex, "field %d names non-existent step %d", fieldIdx, stepIdx)
	}
	switch {
	case fieldIdx < 0:
		return structErr(KindInvalidIndex, "field index %d is negative", fieldIdx)
	case int(fieldIdx) < len(g.fieldOwner):
		return structErr(KindDuplicate, "field %d already exists", fieldIdx)
	case int(fieldIdx) > len(g.fieldOwner):
		return structErr(KindOutOfSequence, "field index %d skips ahead of count %d", fieldIdx, len(g.fieldOwner))
	}

	elem, err := g.classes.MakeSet()
	if err != nil {
		return structErr(KindCapacity, "field index space exhausted: %v", err)
	}
	if Index(elem) != fieldIdx {
		// The dsu is allocated in lockstep with the field tables; divergence
		// is a bug in this package, not a caller error.
		panic("graph: class registry out of sync with field table")
	}

	g.fieldOwner = append(g.fieldOwner, stepIdx)
	g.fieldType = append(g.fieldType, tag)
	g.fieldUsage = append(g.fieldUsage, usage)
	g.stepFields[stepIdx] = append(g.stepFields[stepIdx], fieldIdx)
	return nil
}

// FieldsOf returns the field indices owned by a step, in declaration order.
// The returned slice is the session's own storage; callers must not mutate it.
func (g *Graph) FieldsOf(step Index) ([]Index, error) {
	if step < 0 || int(step) >= len(g.stepFields) {
		return nil, structErr(KindInvalidIndex, "step %d out of range [0, %d)", step, len(g.stepFields))
	}
	return g.stepFields[step], nil
}

// Owner returns the step that owns the field.
func (g *Graph) Owner(field Index) (Index, error) {
	if err := g.checkField(field); err != nil {
		return 0, err
	}
	return g.fieldOwner[field], nil
}

// TypeOf returns the field's type tag.
func (g *Graph) TypeOf(field Index) (TypeTag, error) {
	if err := g.checkField(field); err != nil {
		return "", err
	}
	return g.fieldType[field], nil
}

// UsageOf returns the field's usage kind.
func (g *Graph) UsageOf(field Index) (Usage, error) {
	if err := g.checkField(field); err != nil {
		return 0, err
	}
	return g.fieldUsage[field], nil
}

// SameDatum reports whether two fields currently reference the same datum.
func (g *Graph) SameDatum(f1, f2 Index) (bool, error) {
	if err := g.checkField(f1); err != nil {
		return false, err
	}
	if err := g.checkField(f2); err != nil {
		return false, err
	}
	same, err := g.classes.SameClass(int32(f1), int32(f2))
	if err != nil {
		return false, structErr(KindInvalidIndex, "class lookup failed: %v", err)
	}
	return same, nil
}

// ClassMembers appends every field of f's datum to out and returns the
// result. Cost is proportional to the class size.
func (g *Graph) ClassMembers(f Index, out []Index) ([]Index, error) {
	if err := g.checkField(f); err != nil {
		return nil, err
	}
	raw, err := g.classes.Members(int32(f), nil)
	if err != nil {
		return nil, structErr(KindInvalidIndex, "member enumeration failed: %v", err)
	}
	for _, e := range raw {
		out = append(out, Index(e))
	}
	return out, nil
}

// StepLinks returns the explicit step-link ledger. Read-only.
func (g *Graph) StepLinks() []StepLink {
	return g.stepLinks
}

// FieldLinks returns the field-link ledger. Read-only.
func (g *Graph) FieldLinks() []FieldLink {
	return g.fieldLinks
}

func (g *Graph) checkField(f Index) error {
	if f < 0 || int(f) >= len(g.fieldOwner) {
		return structErr(KindInvalidIndex, "field %d out of range [0, %d)", f, len(g.fieldOwner))
	}
	return nil
}

func (g *Graph) checkStep(s Index) error {
	if s < 0 || int(s) >= len(g.stepFields) {
		return structErr(KindInvalidIndex, "step %d out of range [0, %d)", s, len(g.stepFields))
	}
	return nil
}
