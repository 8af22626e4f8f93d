package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-board/internal/models"
)

// TimetableSeedRepository manages initial placements stored in timetable_seed_slots.
type TimetableSeedRepository struct {
	db *sqlx.DB
}

// NewTimetableSeedRepository builds repository.
func NewTimetableSeedRepository(db *sqlx.DB) *TimetableSeedRepository {
	return &TimetableSeedRepository{db: db}
}

const timetableSeedSchema = `
CREATE TABLE IF NOT EXISTS timetable_seed_slots (
    id TEXT PRIMARY KEY,
    timetable_id TEXT NOT NULL,
    day_index INTEGER NOT NULL CHECK (day_index >= 0),
    period_index INTEGER NOT NULL CHECK (period_index >= 0),
    entry_id TEXT NOT NULL,
    code TEXT NOT NULL,
    room TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (timetable_id, day_index, period_index),
    UNIQUE (timetable_id, entry_id)
)`

// EnsureSchema creates timetable_seed_slots when missing.
func (r *TimetableSeedRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, timetableSeedSchema); err != nil {
		return fmt.Errorf("create timetable_seed_slots: %w", err)
	}
	return nil
}

func (r *TimetableSeedRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// UpsertBatch inserts or updates seed slots keyed by timetable and cell.
func (r *TimetableSeedRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSeedSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO timetable_seed_slots (id, timetable_id, day_index, period_index, entry_id, code, room, created_at)
VALUES (:id, :timetable_id, :day_index, :period_index, :entry_id, :code, :room, :created_at)
ON CONFLICT (timetable_id, day_index, period_index) DO UPDATE
SET entry_id = EXCLUDED.entry_id,
    code = EXCLUDED.code,
    room = EXCLUDED.room`

	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, slot); err != nil {
			return fmt.Errorf("upsert timetable seed slot: %w", err)
		}
	}
	return nil
}

// DeleteByTimetable clears every slot of a seed so a re-import does not leave stale cells behind.
func (r *TimetableSeedRepository) DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID string) error {
	const query = `DELETE FROM timetable_seed_slots WHERE timetable_id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, timetableID); err != nil {
		return fmt.Errorf("delete timetable seed slots: %w", err)
	}
	return nil
}

// ListByTimetable returns slots ordered by day/period for a seed.
func (r *TimetableSeedRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSeedSlot, error) {
	const query = `SELECT id, timetable_id, day_index, period_index, entry_id, code, room, created_at
FROM timetable_seed_slots WHERE timetable_id = $1 ORDER BY day_index ASC, period_index ASC`
	var slots []models.TimetableSeedSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable seed slots: %w", err)
	}
	return slots, nil
}

// BeginTxx starts a transaction for multi-statement imports.
func (r *TimetableSeedRepository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
