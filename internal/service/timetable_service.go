package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-board/internal/dto"
	"github.com/noah-isme/sma-timetable-board/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
)

type seedSource interface {
	Load(ctx context.Context) (*models.Seed, error)
}

type boardExporter interface {
	Render(board *models.Board, format dto.ExportFormat) (*dto.ExportedFile, error)
}

// TimetableConfig governs session behaviour.
type TimetableConfig struct {
	SessionTTL time.Duration
}

// TimetableService owns board sessions. Every move replaces the session's grid with the
// reassignment result; grids are never edited in place.
type TimetableService struct {
	seeds     seedSource
	store     BoardStore
	placement PlacementStrategy
	exporter  boardExporter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableConfig
	now       func() time.Time
	newID     func() string

	// mu serialises load-reassign-save so each board has a single writer at a time and the
	// placement strategy's generator is never shared across goroutines.
	mu       sync.Mutex
	seedOnce sync.Once
	seed     *models.Seed
	seedGrid models.Grid
	seedErr  error
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(
	seeds seedSource,
	store BoardStore,
	placement PlacementStrategy,
	exporter boardExporter,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewMemoryBoardStore()
	}
	if placement == nil {
		placement = NewRandomPlacement(0)
	}
	if exporter == nil {
		exporter = NewExportService(logger, nil, nil)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	return &TimetableService{
		seeds:     seeds,
		store:     store,
		placement: placement,
		exporter:  exporter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Layout returns the grid shape of the configured seed.
func (s *TimetableService) Layout(ctx context.Context) (*dto.LayoutResponse, error) {
	grid, err := s.initialGrid(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.LayoutResponse{
		Layout:          grid.Layout,
		Rows:            grid.Rows(),
		Columns:         grid.Columns(),
		DisabledPeriods: []int{grid.Layout.BreakPeriod},
	}, nil
}

// Droppable tells the renderer whether it may offer a drop on the cell.
func (s *TimetableService) Droppable(ctx context.Context, cell models.Cell) (*dto.DroppableResponse, error) {
	grid, err := s.initialGrid(ctx)
	if err != nil {
		return nil, err
	}
	if !grid.Contains(cell) {
		return nil, s.outOfRange(cell, grid)
	}
	return &dto.DroppableResponse{Cell: cell, DropDisabled: grid.DropDisabled(cell)}, nil
}

// CreateBoard opens a session holding a copy of the initial timetable.
func (s *TimetableService) CreateBoard(ctx context.Context) (*models.Board, error) {
	grid, err := s.initialGrid(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	board := &models.Board{
		ID:        s.newID(),
		SeedID:    s.seed.ID,
		Grid:      grid.Clone(),
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, board); err != nil {
		return nil, err
	}
	s.metrics.RecordBoardCreated()
	s.logger.Info("board created", zap.String("board_id", board.ID), zap.String("seed_id", board.SeedID))
	return board, nil
}

// GetBoard returns the current state of a session.
func (s *TimetableService) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "board id is required")
	}
	return s.load(ctx, id)
}

// DeleteBoard ends a session.
func (s *TimetableService) DeleteBoard(ctx context.Context, id string) error {
	if _, err := s.GetBoard(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete board")
	}
	return nil
}

// GetCell returns the content of a single cell.
func (s *TimetableService) GetCell(ctx context.Context, id string, cell models.Cell) (*dto.CellResponse, error) {
	board, err := s.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	entry, err := board.Grid.Get(cell.Day, cell.Period)
	if err != nil {
		s.logger.Warn("cell lookup out of range", zap.String("board_id", id), zap.Stringer("cell", cell))
		return nil, err
	}
	resp := &dto.CellResponse{Cell: cell, Entry: entry, DropDisabled: board.Grid.DropDisabled(cell)}
	if entry != nil {
		resp.Practical = entry.Practical()
	}
	return resp, nil
}

// EmptyCells lists the empty cells of a board in row-major order.
func (s *TimetableService) EmptyCells(ctx context.Context, id string) ([]models.Cell, error) {
	board, err := s.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	cells := board.Grid.EmptyCells()
	if cells == nil {
		cells = []models.Cell{}
	}
	return cells, nil
}

// Move applies a completed drag to the board and stores the resulting grid.
func (s *TimetableService) Move(ctx context.Context, id string, req dto.MoveEntryRequest) (*dto.MoveEntryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "source and destination cells are required and must be non-negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	board, err := s.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}

	move := models.MoveRequest{Source: req.Source.Cell(), Destination: req.Destination.Cell()}
	result, err := Reassign(board.Grid, move, s.placement)
	if err != nil {
		if errors.Is(err, appErrors.ErrOutOfRange) {
			s.logger.Warn("move rejected: coordinate out of range",
				zap.String("board_id", id),
				zap.Stringer("source", move.Source),
				zap.Stringer("destination", move.Destination),
				zap.Error(err),
			)
		}
		return nil, err
	}

	fields := []zap.Field{
		zap.String("board_id", id),
		zap.Stringer("source", move.Source),
		zap.Stringer("destination", move.Destination),
		zap.String("outcome", string(result.Outcome)),
	}
	switch result.Outcome {
	case models.MoveOutcomeRejected:
		s.logger.Debug("move targets break period", fields...)
		s.metrics.RecordMove(result.Outcome, time.Since(start))
		return s.moveResponse(board, result), nil
	case models.MoveOutcomeDiscarded:
		s.logger.Warn("displaced entry discarded: no free cell", append(fields, zap.String("entry_id", result.Displaced.ID))...)
	case models.MoveOutcomeRelocated:
		s.logger.Debug("displaced entry relocated", append(fields,
			zap.String("entry_id", result.Displaced.ID),
			zap.Stringer("relocated_to", result.RelocatedTo),
		)...)
	}

	next := *board
	next.Grid = result.Grid
	next.Version = board.Version + 1
	next.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, &next); err != nil {
		return nil, err
	}
	s.metrics.RecordMove(result.Outcome, time.Since(start))
	return s.moveResponse(&next, result), nil
}

// Reset restores the initial timetable on an existing board.
func (s *TimetableService) Reset(ctx context.Context, id string) (*models.Board, error) {
	grid, err := s.initialGrid(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	board.Grid = grid.Clone()
	board.Version++
	board.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, board); err != nil {
		return nil, err
	}
	s.logger.Info("board reset", zap.String("board_id", id))
	return board, nil
}

// Export renders the board as CSV or PDF.
func (s *TimetableService) Export(ctx context.Context, id string, req dto.ExportBoardRequest) (*dto.ExportedFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	board, err := s.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(board, req.Format)
}

func (s *TimetableService) moveResponse(board *models.Board, result *models.MoveResult) *dto.MoveEntryResponse {
	return &dto.MoveEntryResponse{
		Board:       board,
		Outcome:     result.Outcome,
		Moved:       result.Moved,
		Displaced:   result.Displaced,
		RelocatedTo: result.RelocatedTo,
	}
}

func (s *TimetableService) initialGrid(ctx context.Context) (models.Grid, error) {
	s.seedOnce.Do(func() {
		if s.seeds == nil {
			s.seedErr = appErrors.Clone(appErrors.ErrInternal, "seed source missing")
			return
		}
		seed, err := s.seeds.Load(ctx)
		if err != nil {
			s.seedErr = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable seed")
			return
		}
		grid, err := models.NewGrid(seed.Layout, seed.Placements)
		if err != nil {
			s.seedErr = appErrors.Wrap(err, appErrors.ErrInvalidLayout.Code, appErrors.ErrInvalidLayout.Status, fmt.Sprintf("seed %s is invalid", seed.ID))
			return
		}
		s.seed = seed
		s.seedGrid = grid
		s.logger.Info("timetable seed loaded",
			zap.String("seed_id", seed.ID),
			zap.Int("days", grid.Rows()),
			zap.Int("periods", grid.Columns()),
			zap.Int("entries", len(seed.Placements)),
		)
	})
	if s.seedErr != nil {
		return models.Grid{}, s.seedErr
	}
	return s.seedGrid, nil
}

func (s *TimetableService) load(ctx context.Context, id string) (*models.Board, error) {
	start := time.Now()
	board, err := s.store.Get(ctx, id)
	if err != nil {
		s.metrics.RecordBoardLookup(false, time.Since(start))
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "board not found or expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load board")
	}
	s.metrics.RecordBoardLookup(true, time.Since(start))
	return board, nil
}

func (s *TimetableService) save(ctx context.Context, board *models.Board) error {
	start := time.Now()
	err := s.store.Save(ctx, board, s.cfg.SessionTTL)
	s.metrics.ObserveBoardWrite(time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store board")
	}
	return nil
}

func (s *TimetableService) outOfRange(cell models.Cell, grid models.Grid) error {
	return appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("cell %s outside %dx%d grid", cell, grid.Rows(), grid.Columns()))
}
