package models

import (
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
)

// PracticalPrefix marks labels of practical (lab) sessions.
const PracticalPrefix = "P-"

// Entry is one scheduled class. Entries are never mutated once placed; moves only re-reference them.
type Entry struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"code" yaml:"code"`
	Location string `json:"room,omitempty" yaml:"room,omitempty"`
}

// Practical reports whether the entry is a practical session.
func (e Entry) Practical() bool {
	return strings.HasPrefix(e.Label, PracticalPrefix)
}

// Cell is a zero-based (day, period) coordinate.
type Cell struct {
	Day    int `json:"day" validate:"min=0"`
	Period int `json:"period" validate:"min=0"`
}

func (c Cell) String() string {
	return fmt.Sprintf("%d-%d", c.Day, c.Period)
}

// Period is one column of the weekly grid.
type Period struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Label renders the period as shown in grid headers.
func (p Period) Label() string {
	return fmt.Sprintf("%s-%s", p.Start, p.End)
}

// Layout fixes the grid shape: one row per day, one column per period, and a single break column.
type Layout struct {
	Days        []string `json:"days" yaml:"days"`
	Periods     []Period `json:"periods" yaml:"periods"`
	BreakPeriod int      `json:"breakPeriod" yaml:"breakPeriod"`
	BreakLabel  string   `json:"breakLabel" yaml:"breakLabel"`
}

// Validate checks that the layout describes a usable grid.
func (l Layout) Validate() error {
	if len(l.Days) == 0 {
		return appErrors.Clone(appErrors.ErrInvalidLayout, "layout requires at least one day")
	}
	if len(l.Periods) == 0 {
		return appErrors.Clone(appErrors.ErrInvalidLayout, "layout requires at least one period")
	}
	if l.BreakPeriod < 0 || l.BreakPeriod >= len(l.Periods) {
		return appErrors.Clone(appErrors.ErrInvalidLayout, fmt.Sprintf("break period %d outside 0..%d", l.BreakPeriod, len(l.Periods)-1))
	}
	labels := make(map[string]int, len(l.Periods))
	for i, p := range l.Periods {
		if prev, dup := labels[p.Label()]; dup {
			return appErrors.Clone(appErrors.ErrInvalidLayout, fmt.Sprintf("periods %d and %d share label %s", prev, i, p.Label()))
		}
		labels[p.Label()] = i
	}
	return nil
}

// Contains reports whether the cell lies inside the layout shape.
func (l Layout) Contains(c Cell) bool {
	return c.Day >= 0 && c.Day < len(l.Days) && c.Period >= 0 && c.Period < len(l.Periods)
}

// DropDisabled is true iff the cell sits in the break column.
func (l Layout) DropDisabled(c Cell) bool {
	return c.Period == l.BreakPeriod
}

// PlacedEntry pairs an entry with its cell, used for seeding and listing.
type PlacedEntry struct {
	Cell  Cell  `json:"cell"`
	Entry Entry `json:"entry"`
}

// Grid is the fixed-shape D x S placement of entries. A nil cell is empty.
type Grid struct {
	Layout Layout     `json:"layout"`
	Cells  [][]*Entry `json:"cells"`
}

// NewGrid builds a grid for the layout. Placements must be in range, outside the break column,
// on distinct cells and carry distinct entry ids.
func NewGrid(layout Layout, placements []PlacedEntry) (Grid, error) {
	if err := layout.Validate(); err != nil {
		return Grid{}, err
	}
	cells := make([][]*Entry, len(layout.Days))
	for day := range cells {
		cells[day] = make([]*Entry, len(layout.Periods))
	}

	seen := make(map[string]Cell, len(placements))
	for _, p := range placements {
		if !layout.Contains(p.Cell) {
			return Grid{}, appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("entry %s placed outside grid at %s", p.Entry.ID, p.Cell))
		}
		if layout.DropDisabled(p.Cell) {
			return Grid{}, appErrors.Clone(appErrors.ErrInvalidLayout, fmt.Sprintf("entry %s placed in break period at %s", p.Entry.ID, p.Cell))
		}
		if p.Entry.ID == "" {
			return Grid{}, appErrors.Clone(appErrors.ErrInvalidLayout, fmt.Sprintf("entry at %s has no id", p.Cell))
		}
		if prev, dup := seen[p.Entry.ID]; dup {
			return Grid{}, appErrors.Clone(appErrors.ErrInvalidLayout, fmt.Sprintf("entry id %s used at %s and %s", p.Entry.ID, prev, p.Cell))
		}
		if cells[p.Cell.Day][p.Cell.Period] != nil {
			return Grid{}, appErrors.Clone(appErrors.ErrInvalidLayout, fmt.Sprintf("cell %s assigned twice", p.Cell))
		}
		entry := p.Entry
		cells[p.Cell.Day][p.Cell.Period] = &entry
		seen[entry.ID] = p.Cell
	}

	return Grid{Layout: layout, Cells: cells}, nil
}

// Rows returns the number of days.
func (g Grid) Rows() int { return len(g.Cells) }

// Columns returns the number of periods.
func (g Grid) Columns() int { return len(g.Layout.Periods) }

// Contains reports whether the cell lies inside the grid.
func (g Grid) Contains(c Cell) bool {
	return c.Day >= 0 && c.Day < len(g.Cells) && c.Period >= 0 && c.Period < len(g.Cells[c.Day])
}

// DropDisabled reports whether the renderer must refuse drops on the cell.
func (g Grid) DropDisabled(c Cell) bool {
	return g.Layout.DropDisabled(c)
}

// Get returns the entry at (day, period), nil when the cell is empty.
func (g Grid) Get(day, period int) (*Entry, error) {
	c := Cell{Day: day, Period: period}
	if !g.Contains(c) {
		return nil, appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("cell %s outside %dx%d grid", c, g.Rows(), g.Columns()))
	}
	return g.Cells[day][period], nil
}

// EmptyCells lists every empty coordinate in row-major order, break column included.
func (g Grid) EmptyCells() []Cell {
	var out []Cell
	for day, row := range g.Cells {
		for period, entry := range row {
			if entry == nil {
				out = append(out, Cell{Day: day, Period: period})
			}
		}
	}
	return out
}

// PlacementCandidates lists the empty cells a displaced entry may land on: the break column is never one.
func (g Grid) PlacementCandidates() []Cell {
	empty := g.EmptyCells()
	out := make([]Cell, 0, len(empty))
	for _, c := range empty {
		if !g.DropDisabled(c) {
			out = append(out, c)
		}
	}
	return out
}

// Entries lists placed entries in row-major order.
func (g Grid) Entries() []PlacedEntry {
	var out []PlacedEntry
	for day, row := range g.Cells {
		for period, entry := range row {
			if entry != nil {
				out = append(out, PlacedEntry{Cell: Cell{Day: day, Period: period}, Entry: *entry})
			}
		}
	}
	return out
}

// Clone copies the cell rows. Entries are shared because they are immutable.
func (g Grid) Clone() Grid {
	cells := make([][]*Entry, len(g.Cells))
	for day, row := range g.Cells {
		cells[day] = append([]*Entry(nil), row...)
	}
	layout := g.Layout
	layout.Days = append([]string(nil), g.Layout.Days...)
	layout.Periods = append([]Period(nil), g.Layout.Periods...)
	return Grid{Layout: layout, Cells: cells}
}

// Place puts e at c on the receiver's cells. Callers are expected to work on a Clone.
func (g Grid) Place(c Cell, e *Entry) error {
	if !g.Contains(c) {
		return appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("cell %s outside %dx%d grid", c, g.Rows(), g.Columns()))
	}
	g.Cells[c.Day][c.Period] = e
	return nil
}
