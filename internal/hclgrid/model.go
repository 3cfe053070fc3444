package hclgrid

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/gridplan/internal/graph"
)

// Grid is the format-agnostic representation of everything the HCL files
// declared, before any of it reaches the core.
type Grid struct {
	Steps   []*Step
	Aliases []*Alias
	Seeds   []*Seed
}

// Step is one declared unit of work.
type Step struct {
	Name      string
	Trust     graph.Trust
	DependsOn []string
	Fields    []Field
}

// Field is one declared data access within a step.
type Field struct {
	Datum string
	Type  graph.TypeTag
	Usage graph.Usage
	Trust graph.Trust
}

// Alias declares two datum labels to be the same datum.
type Alias struct {
	Left  string
	Right string
	Trust graph.Trust
}

// Seed pre-loads a value for a datum label.
type Seed struct {
	Datum string
	Value cty.Value
}
