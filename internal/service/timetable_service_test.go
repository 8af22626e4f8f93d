package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-timetable-board/internal/dto"
	"github.com/noah-isme/sma-timetable-board/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
)

type seedSourceStub struct {
	seed  *models.Seed
	err   error
	calls int
}

func (s *seedSourceStub) Load(ctx context.Context) (*models.Seed, error) {
	s.calls++
	return s.seed, s.err
}

type failingBoardStore struct {
	BoardStore
	saveErr error
}

func (s failingBoardStore) Save(ctx context.Context, board *models.Board, ttl time.Duration) error {
	return s.saveErr
}

type timetableFixtureConfig struct {
	placements []models.PlacedEntry
	placement  PlacementStrategy
	store      BoardStore
	seedErr    error
}

type timetableFixture struct {
	service *TimetableService
	seeds   *seedSourceStub
	metrics *MetricsService
	logs    *observer.ObservedLogs
}

func newTimetableServiceFixture(t *testing.T, cfg timetableFixtureConfig) timetableFixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	seeds := &seedSourceStub{
		seed: &models.Seed{ID: "default", Layout: referenceLayout(), Placements: cfg.placements},
		err:  cfg.seedErr,
	}
	placement := cfg.placement
	if placement == nil {
		placement = NearestPlacement{}
	}
	metrics := NewMetricsService()
	svc := NewTimetableService(seeds, cfg.store, placement, nil, metrics, nil, zap.New(core), TimetableConfig{SessionTTL: time.Hour})
	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("board-%d", ids)
	}
	svc.now = func() time.Time { return time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC) }
	return timetableFixture{service: svc, seeds: seeds, metrics: metrics, logs: logs}
}

func fullPlacements() []models.PlacedEntry {
	layout := referenceLayout()
	var placements []models.PlacedEntry
	for day := range layout.Days {
		for period := range layout.Periods {
			if period == layout.BreakPeriod {
				continue
			}
			c := models.Cell{Day: day, Period: period}
			placements = append(placements, place(day, period, c.String()))
		}
	}
	return placements
}

func TestTimetableServiceCreateBoard(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: []models.PlacedEntry{place(0, 0, "X")}})
	ctx := context.Background()

	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "board-1", board.ID)
	assert.Equal(t, "default", board.SeedID)
	assert.Equal(t, 0, board.Version)

	loaded, err := f.service.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, board.Grid, loaded.Grid)

	_, err = f.service.CreateBoard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.seeds.calls, "seed is loaded once")
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.boardsCreated))
}

func TestTimetableServiceGetBoardNotFound(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{})

	_, err := f.service.GetBoard(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = f.service.GetBoard(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceMoveReplacesBoardState(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: []models.PlacedEntry{place(0, 0, "X")}})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)

	resp, err := f.service.Move(ctx, board.ID, dto.MoveEntryRequest{Source: dto.CellRefOf(models.Cell{Day: 0, Period: 0}), Destination: dto.CellRefOf(models.Cell{Day: 0, Period: 1})})
	require.NoError(t, err)
	assert.Equal(t, models.MoveOutcomeMoved, resp.Outcome)
	assert.Equal(t, 1, resp.Board.Version)

	stored, err := f.service.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
	moved, _ := stored.Grid.Get(0, 1)
	require.NotNil(t, moved)
	assert.Equal(t, "X", moved.ID)

	// The board returned by CreateBoard is a separate value and keeps its original grid.
	original, _ := board.Grid.Get(0, 0)
	assert.NotNil(t, original)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.movesTotal.WithLabelValues("moved")))
}

func TestTimetableServiceMoveRelocatesDisplaced(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: fullPlacements()})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)

	resp, err := f.service.Move(ctx, board.ID, dto.MoveEntryRequest{Source: dto.CellRefOf(models.Cell{Day: 0, Period: 0}), Destination: dto.CellRefOf(models.Cell{Day: 0, Period: 1})})
	require.NoError(t, err)
	assert.Equal(t, models.MoveOutcomeRelocated, resp.Outcome)
	require.NotNil(t, resp.RelocatedTo)
	assert.Equal(t, models.Cell{Day: 0, Period: 0}, *resp.RelocatedTo)
	assert.Equal(t, "0-1", resp.Displaced.ID)
	assert.Equal(t, "0-0", resp.Moved.ID)
}

func TestTimetableServiceMoveToBreakKeepsVersion(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: []models.PlacedEntry{place(0, 0, "X")}})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)

	resp, err := f.service.Move(ctx, board.ID, dto.MoveEntryRequest{Source: dto.CellRefOf(models.Cell{Day: 0, Period: 0}), Destination: dto.CellRefOf(models.Cell{Day: 0, Period: 4})})
	require.NoError(t, err)
	assert.Equal(t, models.MoveOutcomeRejected, resp.Outcome)
	assert.Equal(t, 0, resp.Board.Version)
	assert.Equal(t, board.Grid, resp.Board.Grid)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.movesTotal.WithLabelValues("rejected")))
}

func TestTimetableServiceMoveOutOfRange(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: []models.PlacedEntry{place(0, 0, "X")}})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)

	_, err = f.service.Move(ctx, board.ID, dto.MoveEntryRequest{Source: dto.CellRefOf(models.Cell{Day: 0, Period: 0}), Destination: dto.CellRefOf(models.Cell{Day: 5, Period: 0})})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTarget.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, f.logs.FilterMessage("move rejected: coordinate out of range").Len())

	stored, err := f.service.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Version)
	assert.Equal(t, board.Grid, stored.Grid)
}

func TestTimetableServiceMoveValidation(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{})

	_, err := f.service.Move(context.Background(), "board-1", dto.MoveEntryRequest{Source: dto.CellRefOf(models.Cell{Day: -1, Period: 0})})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceMoveRejectsMissingCoordinates(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: fullPlacements()})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)

	payloads := map[string]string{
		"missing destination": `{"source":{"day":2,"period":7}}`,
		"missing source":      `{"destination":{"day":2,"period":7}}`,
		"empty body":          `{}`,
		"missing period":      `{"source":{"day":2,"period":7},"destination":{"day":1}}`,
		"negative day":        `{"source":{"day":2,"period":7},"destination":{"day":-1,"period":0}}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			var req dto.MoveEntryRequest
			require.NoError(t, json.Unmarshal([]byte(payload), &req))

			_, err := f.service.Move(ctx, board.ID, req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)

			stored, err := f.service.GetBoard(ctx, board.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, stored.Version)
			assert.Equal(t, board.Grid, stored.Grid)
		})
	}
}

func TestTimetableServiceMoveDiscardIsObservable(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: fullPlacements()})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)

	resp, err := f.service.Move(ctx, board.ID, dto.MoveEntryRequest{Source: dto.CellRefOf(models.Cell{Day: 2, Period: 4}), Destination: dto.CellRefOf(models.Cell{Day: 3, Period: 3})})
	require.NoError(t, err)
	assert.Equal(t, models.MoveOutcomeDiscarded, resp.Outcome)
	assert.Equal(t, "3-3", resp.Displaced.ID)

	warnings := f.logs.FilterMessage("displaced entry discarded: no free cell").FilterLevelExact(zapcore.WarnLevel)
	require.Equal(t, 1, warnings.Len())
	assert.Equal(t, "3-3", warnings.All()[0].ContextMap()["entry_id"])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.discardedTotal))
}

func TestTimetableServiceReset(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: []models.PlacedEntry{place(0, 0, "X")}})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)
	_, err = f.service.Move(ctx, board.ID, dto.MoveEntryRequest{Source: dto.CellRefOf(models.Cell{Day: 0, Period: 0}), Destination: dto.CellRefOf(models.Cell{Day: 1, Period: 1})})
	require.NoError(t, err)

	reset, err := f.service.Reset(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reset.Version)
	assert.Equal(t, board.Grid, reset.Grid)
}

func TestTimetableServiceDeleteBoard(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteBoard(ctx, board.ID))
	_, err = f.service.GetBoard(ctx, board.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	err = f.service.DeleteBoard(ctx, board.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServiceGetCellAndEmptyCells(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: fullPlacements()})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)

	cell, err := f.service.GetCell(ctx, board.ID, models.Cell{Day: 1, Period: 2})
	require.NoError(t, err)
	require.NotNil(t, cell.Entry)
	assert.Equal(t, "1-2", cell.Entry.ID)
	assert.False(t, cell.DropDisabled)

	_, err = f.service.GetCell(ctx, board.ID, models.Cell{Day: 0, Period: 10})
	assert.True(t, errors.Is(err, appErrors.ErrOutOfRange))

	empty, err := f.service.EmptyCells(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Cell{{Day: 0, Period: 4}, {Day: 1, Period: 4}, {Day: 2, Period: 4}, {Day: 3, Period: 4}, {Day: 4, Period: 4}}, empty)
}

func TestTimetableServiceLayoutAndDroppable(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{})
	ctx := context.Background()

	layout, err := f.service.Layout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, layout.Rows)
	assert.Equal(t, 10, layout.Columns)
	assert.Equal(t, []int{4}, layout.DisabledPeriods)

	drop, err := f.service.Droppable(ctx, models.Cell{Day: 2, Period: 4})
	require.NoError(t, err)
	assert.True(t, drop.DropDisabled)

	drop, err = f.service.Droppable(ctx, models.Cell{Day: 2, Period: 5})
	require.NoError(t, err)
	assert.False(t, drop.DropDisabled)

	_, err = f.service.Droppable(ctx, models.Cell{Day: 7, Period: 0})
	assert.True(t, errors.Is(err, appErrors.ErrOutOfRange))
}

func TestTimetableServiceSeedFailure(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{seedErr: errors.New("db down")})

	_, err := f.service.CreateBoard(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceInvalidSeed(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: []models.PlacedEntry{place(0, 4, "lunch")}})

	_, err := f.service.Layout(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidLayout.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceStoreFailure(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{store: failingBoardStore{BoardStore: NewMemoryBoardStore(), saveErr: errors.New("redis down")}})

	_, err := f.service.CreateBoard(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceExport(t *testing.T) {
	f := newTimetableServiceFixture(t, timetableFixtureConfig{placements: []models.PlacedEntry{place(0, 0, "X")}})
	ctx := context.Background()
	board, err := f.service.CreateBoard(ctx)
	require.NoError(t, err)

	file, err := f.service.Export(ctx, board.ID, dto.ExportBoardRequest{Format: dto.ExportFormatCSV})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Contains(t, string(file.Content), "CODE-X")

	_, err = f.service.Export(ctx, board.ID, dto.ExportBoardRequest{Format: "xlsx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMemoryBoardStoreExpires(t *testing.T) {
	store := NewMemoryBoardStore()
	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Board{ID: "b"}, time.Minute))
	_, err := store.Get(ctx, "b")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "b")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestMemoryBoardStoreIsolatesGrids(t *testing.T) {
	store := NewMemoryBoardStore()
	ctx := context.Background()
	grid := mustGrid(t, place(0, 0, "X"))
	board := &models.Board{ID: "b", Grid: grid}
	require.NoError(t, store.Save(ctx, board, 0))

	require.NoError(t, board.Grid.Place(models.Cell{Day: 0, Period: 0}, nil))

	stored, err := store.Get(ctx, "b")
	require.NoError(t, err)
	entry, _ := stored.Grid.Get(0, 0)
	assert.NotNil(t, entry)
}
