// Package export freezes a validated graph session into the artifact a
// downstream scheduler consumes: data objects with their access lists, the
// field-to-data mapping, and the explicit, implicit and combined link sets.
// Export refuses to produce anything from a session whose sealed diagnostics
// contain errors; warnings are permitted.
package export

import (
	"github.com/vk/gridplan/internal/diagnose"
	"github.com/vk/gridplan/internal/graph"
)

// Access is one step's usage of a data object through one field.
type Access struct {
	Step  graph.Index `json:"step"`
	Field graph.Index `json:"field"`
	Usage graph.Usage `json:"usage"`
}

// DataObject is one datum: an equivalence class of fields frozen under a
// dense index assigned in first-seen order.
type DataObject struct {
	Index    graph.Index   `json:"index"`
	Type     graph.TypeTag `json:"type"`
	Accesses []Access      `json:"accesses"`
}

// Graph is the immutable exported snapshot. Consumers must treat it as
// read-only. The combined link list may contain duplicates where an
// explicit link restates an implicit one; schedulers are expected to
// tolerate or deduplicate redundant edges.
type Graph struct {
	// FieldData maps every field index to its data-object index. The slice
	// is total: one entry per field.
	FieldData     []graph.Index `json:"field_data"`
	DataObjects   []DataObject  `json:"data_objects"`
	ExplicitLinks []graph.Edge  `json:"explicit_links"`
	ImplicitLinks []graph.Edge  `json:"implicit_links"`
	CombinedLinks []graph.Edge  `json:"combined_links"`
}

// Export validates the session as sealed and, if it is clean, produces the
// frozen snapshot. A session with outstanding errors yields an InvalidState
// structural error and no artifact.
func Export(g *graph.Graph) (*Graph, error) {
	report := diagnose.Analyze(g, true)
	if report.HasErrors() {
		return nil, &graph.StructuralError{
			Kind:    graph.KindInvalidState,
			Message: "cannot export: sealed diagnostics contain errors",
		}
	}

	classes := g.Classes()
	out := &Graph{
		FieldData:     make([]graph.Index, g.FieldCount()),
		DataObjects:   make([]DataObject, 0, len(classes)),
		ExplicitLinks: make([]graph.Edge, 0, len(g.StepLinks())),
	}

	for i, class := range classes {
		obj := DataObject{Index: graph.Index(i)}
		for _, f := range class {
			out.FieldData[f] = obj.Index
			owner, err := g.Owner(f)
			if err != nil {
				return nil, err
			}
			usage, err := g.UsageOf(f)
			if err != nil {
				return nil, err
			}
			tag, err := g.TypeOf(f)
			if err != nil {
				return nil, err
			}
			obj.Type = tag
			obj.Accesses = append(obj.Accesses, Access{Step: owner, Field: f, Usage: usage})
		}
		out.DataObjects = append(out.DataObjects, obj)
	}

	for _, l := range g.StepLinks() {
		out.ExplicitLinks = append(out.ExplicitLinks, l.Edge)
	}
	out.ImplicitLinks = g.ImplicitLinks()

	out.CombinedLinks = make([]graph.Edge, 0, len(out.ImplicitLinks)+len(out.ExplicitLinks))
	out.CombinedLinks = append(out.CombinedLinks, out.ImplicitLinks...)
	out.CombinedLinks = append(out.CombinedLinks, out.ExplicitLinks...)
	return out, nil
}
