package registry

import (
	"errors"
	"fmt"

	"github.com/vk/gridplan/internal/graph"
)

// ErrNotFound reports that a handle was never registered.
var ErrNotFound = errors.New("registry: handle not found")

// ErrExpired reports that a handle was registered and later retired. It is
// deliberately distinct from ErrNotFound: a caller holding a stale handle
// gets told so, instead of being handed someone else's index.
var ErrExpired = errors.New("registry: handle expired")

// Registry maps step names and datum labels onto the core's index spaces.
type Registry struct {
	g *graph.Graph

	steps     map[string]graph.Index
	stepNames []string

	// fields dedupes re-registration of the same access: one handle is the
	// (step, datum, usage) triple.
	fields      map[fieldKey]graph.Index
	fieldLabels []string

	// anchor holds, per datum label, the first field registered under it;
	// later fields with the same label are linked to the anchor.
	anchor map[string]graph.Index

	retired map[string]bool
}

type fieldKey struct {
	step  string
	datum string
	usage graph.Usage
}

// New returns a registry feeding the given session.
func New(g *graph.Graph) *Registry {
	return &Registry{
		g:       g,
		steps:   make(map[string]graph.Index),
		fields:  make(map[fieldKey]graph.Index),
		anchor:  make(map[string]graph.Index),
		retired: make(map[string]bool),
	}
}

// Step returns the index for a step name, registering the step with the
// core on first use. Re-registration returns the existing index.
func (r *Registry) Step(name string) (graph.Index, error) {
	if idx, ok := r.steps[name]; ok {
		return idx, nil
	}
	if r.retired[name] {
		return 0, fmt.Errorf("step %q: %w", name, ErrExpired)
	}
	idx := graph.Index(r.g.StepCount())
	if err := r.g.AddStep(idx); err != nil {
		return 0, err
	}
	r.steps[name] = idx
	r.stepNames = append(r.stepNames, name)
	return idx, nil
}

// LookupStep resolves a step name without registering it.
func (r *Registry) LookupStep(name string) (graph.Index, error) {
	if idx, ok := r.steps[name]; ok {
		return idx, nil
	}
	if r.retired[name] {
		return 0, fmt.Errorf("step %q: %w", name, ErrExpired)
	}
	return 0, fmt.Errorf("step %q: %w", name, ErrNotFound)
}

// Retire tombstones a step name. The step itself stays in the core (steps
// are never removed within a session); only the handle dies.
func (r *Registry) Retire(name string) error {
	if _, ok := r.steps[name]; !ok {
		if r.retired[name] {
			return fmt.Errorf("step %q: %w", name, ErrExpired)
		}
		return fmt.Errorf("step %q: %w", name, ErrNotFound)
	}
	delete(r.steps, name)
	r.retired[name] = true
	return nil
}

// Field registers one access by stepName to the datum label, with the given
// type tag and usage, and links it into the datum's equivalence class. The
// (step, datum, usage) triple is the field's handle; re-registering it
// returns the existing index without touching the core.
func (r *Registry) Field(stepName, datum string, tag graph.TypeTag, usage graph.Usage, trust graph.Trust) (graph.Index, error) {
	key := fieldKey{step: stepName, datum: datum, usage: usage}
	if idx, ok := r.fields[key]; ok {
		return idx, nil
	}

	stepIdx, err := r.Step(stepName)
	if err != nil {
		return 0, err
	}

	fieldIdx := graph.Index(r.g.FieldCount())
	if err := r.g.AddField(stepIdx, fieldIdx, tag, usage); err != nil {
		return 0, err
	}
	// The field exists in the core from here on even if linking it into the
	// datum's class fails below; the core keeps its tables dense and the
	// failed link never committed, so the session stays consistent.
	label := fmt.Sprintf("%s.%s(%s)", stepName, datum, usage)

	if anchor, ok := r.anchor[datum]; ok {
		if err := r.g.LinkFields(anchor, fieldIdx, trust); err != nil {
			r.fieldLabels = append(r.fieldLabels, label)
			return 0, fmt.Errorf("linking %s into datum %q: %w", label, datum, err)
		}
	} else {
		r.anchor[datum] = fieldIdx
	}

	r.fields[key] = fieldIdx
	r.fieldLabels = append(r.fieldLabels, label)
	return fieldIdx, nil
}

// LinkSteps records an explicit precedence link between two registered steps.
func (r *Registry) LinkSteps(beforeName, afterName string, trust graph.Trust) error {
	before, err := r.LookupStep(beforeName)
	if err != nil {
		return err
	}
	after, err := r.LookupStep(afterName)
	if err != nil {
		return err
	}
	return r.g.LinkSteps(before, after, trust)
}

// Alias declares that two datum labels name the same datum by linking their
// anchor fields. Both labels must already have at least one field.
func (r *Registry) Alias(left, right string, trust graph.Trust) error {
	la, ok := r.anchor[left]
	if !ok {
		return fmt.Errorf("datum %q: %w", left, ErrNotFound)
	}
	ra, ok := r.anchor[right]
	if !ok {
		return fmt.Errorf("datum %q: %w", right, ErrNotFound)
	}
	return r.g.LinkFields(la, ra, trust)
}

// StepName resolves an index back to its name, for reporting. Retired
// handles no longer resolve.
func (r *Registry) StepName(idx graph.Index) (string, bool) {
	if int(idx) < 0 || int(idx) >= len(r.stepNames) {
		return "", false
	}
	name := r.stepNames[idx]
	if _, live := r.steps[name]; !live {
		return "", false
	}
	return name, true
}

// FieldLabel resolves a field index to a human-readable label, for reporting.
func (r *Registry) FieldLabel(idx graph.Index) (string, bool) {
	if int(idx) < 0 || int(idx) >= len(r.fieldLabels) {
		return "", false
	}
	return r.fieldLabels[idx], true
}
