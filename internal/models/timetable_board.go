package models

import "time"

// MoveOutcome classifies what a reassignment did.
type MoveOutcome string

const (
	MoveOutcomeMoved     MoveOutcome = "moved"
	MoveOutcomeRelocated MoveOutcome = "relocated"
	MoveOutcomeDiscarded MoveOutcome = "discarded"
	MoveOutcomeRejected  MoveOutcome = "rejected"
)

// MoveRequest asks for the entry at Source to be dropped on Destination.
type MoveRequest struct {
	Source      Cell `json:"source"`
	Destination Cell `json:"destination"`
}

// MoveResult is the next grid plus what happened to the entries involved.
type MoveResult struct {
	Grid        Grid        `json:"-"`
	Outcome     MoveOutcome `json:"outcome"`
	Moved       *Entry      `json:"moved,omitempty"`
	Displaced   *Entry      `json:"displaced,omitempty"`
	RelocatedTo *Cell       `json:"relocatedTo,omitempty"`
}

// Discarded reports whether a displaced entry was dropped for lack of a free cell.
func (r *MoveResult) Discarded() bool {
	return r != nil && r.Outcome == MoveOutcomeDiscarded
}

// Board is one editing session's observed grid.
type Board struct {
	ID        string    `json:"id"`
	SeedID    string    `json:"seedId"`
	Grid      Grid      `json:"grid"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TimetableSeedSlot is a persisted initial placement row.
type TimetableSeedSlot struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id"`
	DayIndex    int       `db:"day_index" json:"day_index"`
	PeriodIndex int       `db:"period_index" json:"period_index"`
	EntryID     string    `db:"entry_id" json:"entry_id"`
	Code        string    `db:"code" json:"code"`
	Room        *string   `db:"room" json:"room,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Placement converts the row into a grid placement.
func (s TimetableSeedSlot) Placement() PlacedEntry {
	entry := Entry{ID: s.EntryID, Label: s.Code}
	if s.Room != nil {
		entry.Location = *s.Room
	}
	return PlacedEntry{Cell: Cell{Day: s.DayIndex, Period: s.PeriodIndex}, Entry: entry}
}

// Seed is a named initial timetable: a layout and its starting placements.
type Seed struct {
	ID         string        `json:"id"`
	Layout     Layout        `json:"layout"`
	Placements []PlacedEntry `json:"placements"`
}
