package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/sma-timetable-board/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
)

// BoardStore keeps board sessions. Get returns appErrors.ErrCacheMiss for unknown or expired ids.
type BoardStore interface {
	Get(ctx context.Context, id string) (*models.Board, error)
	Save(ctx context.Context, board *models.Board, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type storedBoard struct {
	board     models.Board
	expiresAt time.Time
}

// MemoryBoardStore is the in-process BoardStore used when Redis is not configured.
type MemoryBoardStore struct {
	mu    sync.RWMutex
	items map[string]storedBoard
	now   func() time.Time
}

// NewMemoryBoardStore builds an empty store.
func NewMemoryBoardStore() *MemoryBoardStore {
	return &MemoryBoardStore{
		items: make(map[string]storedBoard),
		now:   time.Now,
	}
}

// Get implements BoardStore.
func (s *MemoryBoardStore) Get(ctx context.Context, id string) (*models.Board, error) {
	s.mu.RLock()
	item, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && s.now().After(item.expiresAt) {
		_ = s.Delete(ctx, id)
		return nil, appErrors.ErrCacheMiss
	}
	board := item.board
	board.Grid = item.board.Grid.Clone()
	return &board, nil
}

// Save implements BoardStore. A non-positive ttl keeps the board until deleted.
func (s *MemoryBoardStore) Save(ctx context.Context, board *models.Board, ttl time.Duration) error {
	item := storedBoard{board: *board}
	item.board.Grid = board.Grid.Clone()
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.items[board.ID] = item
	s.mu.Unlock()
	return nil
}

// Delete implements BoardStore.
func (s *MemoryBoardStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}
