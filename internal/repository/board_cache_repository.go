package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-board/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
)

const boardKeyPrefix = "timetable:board:"

// BoardCacheRepository keeps board sessions in Redis with a sliding TTL.
type BoardCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewBoardCacheRepository constructs a board cache repository.
func NewBoardCacheRepository(client *redis.Client, logger *zap.Logger) *BoardCacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardCacheRepository{client: client, logger: logger}
}

func boardKey(id string) string {
	return boardKeyPrefix + id
}

// Get loads a board, returning ErrCacheMiss when it is absent or expired.
func (r *BoardCacheRepository) Get(ctx context.Context, id string) (*models.Board, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, boardKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get board %s: %w", id, err)
	}

	var board models.Board
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, fmt.Errorf("unmarshal board %s: %w", id, err)
	}
	return &board, nil
}

// Save stores the board and refreshes its TTL.
func (r *BoardCacheRepository) Save(ctx context.Context, board *models.Board, ttl time.Duration) error {
	if r.client == nil {
		return appErrors.Clone(appErrors.ErrInternal, "redis client unavailable")
	}

	payload, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("marshal board %s: %w", board.ID, err)
	}

	if err := r.client.Set(ctx, boardKey(board.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set board %s: %w", board.ID, err)
	}
	r.logger.Debug("board saved", zap.String("board_id", board.ID), zap.Int("version", board.Version))
	return nil
}

// Delete removes a board session.
func (r *BoardCacheRepository) Delete(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, boardKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete board %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *BoardCacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
