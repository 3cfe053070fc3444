// Package cell provides the typed value container steps use to hand data
// to each other once a scheduler runs the exported graph. A cell is a
// single slot holding one cty.Value; reads are checked against the type
// the reader expects. The graph core itself never touches cells — it only
// records that a field accesses a datum of some type.
package cell

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ErrEmpty reports a read or take from an unoccupied cell.
var ErrEmpty = errors.New("cell: empty")

// Cell is a single-slot container. The zero value is an empty cell.
type Cell struct {
	val      cty.Value
	occupied bool
}

// New returns an empty cell.
func New() *Cell {
	return &Cell{}
}

// Occupied reports whether the cell currently holds a value.
func (c *Cell) Occupied() bool {
	return c.occupied
}

// Store places a value in the cell, replacing any previous occupant.
func (c *Cell) Store(v cty.Value) {
	c.val = v
	c.occupied = true
}

// Get returns the stored value after checking it against the type the
// caller expects. Empty cells and type mismatches are errors; there is no
// coercion between related types.
func (c *Cell) Get(want cty.Type) (cty.Value, error) {
	if !c.occupied {
		return cty.NilVal, ErrEmpty
	}
	if got := c.val.Type(); !got.Equals(want) {
		return cty.NilVal, fmt.Errorf("cell: have %s, want %s", got.FriendlyName(), want.FriendlyName())
	}
	return c.val, nil
}

// Take returns the stored value like Get and clears the cell, transferring
// ownership to the caller. On error the cell is left untouched.
func (c *Cell) Take(want cty.Type) (cty.Value, error) {
	v, err := c.Get(want)
	if err != nil {
		return cty.NilVal, err
	}
	c.val = cty.NilVal
	c.occupied = false
	return v, nil
}

// Bank is a labelled collection of cells, keyed by datum label.
type Bank struct {
	cells map[string]*Cell
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{cells: make(map[string]*Cell)}
}

// Cell returns the cell for a label, creating an empty one on first use.
func (b *Bank) Cell(label string) *Cell {
	c, ok := b.cells[label]
	if !ok {
		c = New()
		b.cells[label] = c
	}
	return c
}

// Len returns the number of labelled cells.
func (b *Bank) Len() int {
	return len(b.cells)
}
