// Package layout holds the fixed character tables that map a pair of stick
// directions onto a character.
package layout

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLayout = errors.New("unknown layout")
	ErrInvalidTable  = errors.New("invalid character table")
)

// None marks a cell that produces no character.
const None rune = 0

// Table maps (primary, secondary) direction indices to an optional character.
// A Table is immutable once built and safe to share.
type Table struct {
	name      string
	primary   int
	secondary int
	cells     []rune
}

// New builds a table with primary rows of secondary cells each.
func New(name string, primary, secondary int, rows [][]rune) (*Table, error) {
	if primary <= 0 || secondary <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidTable, primary, secondary)
	}
	if len(rows) != primary {
		return nil, fmt.Errorf("%w: %d rows, want %d", ErrInvalidTable, len(rows), primary)
	}
	cells := make([]rune, 0, primary*secondary)
	for i, row := range rows {
		if len(row) != secondary {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidTable, i, len(row), secondary)
		}
		cells = append(cells, row...)
	}
	return &Table{name: name, primary: primary, secondary: secondary, cells: cells}, nil
}

func (t *Table) Name() string { return t.name }

// Primary is the number of direction sectors on the direction-selecting stick.
func (t *Table) Primary() int { return t.primary }

// Secondary is the number of direction sectors on the character-selecting stick.
func (t *Table) Secondary() int { return t.secondary }

// Lookup returns the character at (primary, secondary). Indices outside the
// table and empty cells report false.
func (t *Table) Lookup(primary, secondary int) (rune, bool) {
	if t == nil || primary < 0 || primary >= t.primary || secondary < 0 || secondary >= t.secondary {
		return None, false
	}
	r := t.cells[primary*t.secondary+secondary]
	return r, r != None
}

// Row returns a copy of the cells selectable from one primary direction.
func (t *Table) Row(primary int) []rune {
	if t == nil || primary < 0 || primary >= t.primary {
		return nil
	}
	row := make([]rune, t.secondary)
	copy(row, t.cells[primary*t.secondary:(primary+1)*t.secondary])
	return row
}

// ByName returns one of the built-in layouts.
func ByName(name string) (*Table, error) {
	switch name {
	case "", OctantName:
		return Octant(), nil
	case DenseName:
		return Dense(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
}
