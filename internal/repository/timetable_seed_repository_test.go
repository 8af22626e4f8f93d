package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-board/internal/models"
)

func newTimetableSeedRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableSeedRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newTimetableSeedRepoMock(t)
	defer cleanup()
	repo := NewTimetableSeedRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_seed_slots")).
		WithArgs(sqlmock.AnyArg(), "default", 0, 0, "MON-1", "ER2251", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_seed_slots")).
		WithArgs(sqlmock.AnyArg(), "default", 0, 5, "MON-6", "P-MN2102", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := "# LA115"
	slots := []models.TimetableSeedSlot{
		{TimetableID: "default", DayIndex: 0, PeriodIndex: 0, EntryID: "MON-1", Code: "ER2251"},
		{TimetableID: "default", DayIndex: 0, PeriodIndex: 5, EntryID: "MON-6", Code: "P-MN2102", Room: &room},
	}

	require.NoError(t, repo.UpsertBatch(context.Background(), nil, slots))
	assert.NotEmpty(t, slots[0].ID)
	assert.False(t, slots[1].CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSeedRepositoryUpsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newTimetableSeedRepoMock(t)
	defer cleanup()
	repo := NewTimetableSeedRepository(db)

	require.NoError(t, repo.UpsertBatch(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSeedRepositoryDeleteByTimetable(t *testing.T) {
	db, mock, cleanup := newTimetableSeedRepoMock(t)
	defer cleanup()
	repo := NewTimetableSeedRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_seed_slots WHERE timetable_id = $1")).
		WithArgs("default").
		WillReturnResult(sqlmock.NewResult(0, 45))

	require.NoError(t, repo.DeleteByTimetable(context.Background(), nil, "default"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSeedRepositoryListByTimetable(t *testing.T) {
	db, mock, cleanup := newTimetableSeedRepoMock(t)
	defer cleanup()
	repo := NewTimetableSeedRepository(db)

	rows := sqlmock.NewRows([]string{"id", "timetable_id", "day_index", "period_index", "entry_id", "code", "room", "created_at"}).
		AddRow("slot-1", "default", 0, 0, "MON-1", "ER2251", "#", time.Now()).
		AddRow("slot-2", "default", 0, 1, "MON-2", "MN2101", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, timetable_id, day_index, period_index, entry_id, code, room, created_at FROM timetable_seed_slots WHERE timetable_id = $1 ORDER BY day_index ASC, period_index ASC")).
		WithArgs("default").
		WillReturnRows(rows)

	slots, err := repo.ListByTimetable(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	require.NotNil(t, slots[0].Room)
	assert.Equal(t, "#", *slots[0].Room)
	assert.Nil(t, slots[1].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSeedRepositoryEnsureSchema(t *testing.T) {
	db, mock, cleanup := newTimetableSeedRepoMock(t)
	defer cleanup()
	repo := NewTimetableSeedRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS timetable_seed_slots")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
