// Package redis holds the hot store for the live session registry. Snapshots
// are written by the ingestion path and only ever read at the HTTP surface.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serpent-showdown/internal/config"
	"github.com/serpent-showdown/internal/domain"
)

// LiveStore provides Redis-backed storage for live player snapshots.
type LiveStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLiveStore creates a new live snapshot store.
func NewLiveStore(cfg *config.RedisConfig, logger *slog.Logger) (*LiveStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &LiveStore{client: client, logger: logger}, nil
}

// Close closes the Redis connection.
func (s *LiveStore) Close() error {
	return s.client.Close()
}

// sessionKey returns the key holding one session's snapshot JSON.
func (s *LiveStore) sessionKey(id string) string {
	return fmt.Sprintf("live:session:%s", id)
}

// indexKey is the recency zset: member = session id, score = last update
// unix time. Listing and stale pruning both walk this set.
const indexKey = "live:sessions"

// Upsert overwrites the snapshot for a session and refreshes its recency.
func (s *LiveStore) Upsert(ctx context.Context, p *domain.LivePlayer) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.sessionKey(p.ID), data, 0)
	pipe.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: p.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}
	return nil
}

// Get returns the snapshot for a session, or nil when the id is unknown.
// The nil result is the soft-miss contract, not an error.
func (s *LiveStore) Get(ctx context.Context, id string) (*domain.LivePlayer, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}

	var p domain.LivePlayer
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &p, nil
}

// ListActive returns the snapshot for every tracked session.
func (s *LiveStore) ListActive(ctx context.Context) ([]domain.LivePlayer, error) {
	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	players := []domain.LivePlayer{}
	if len(ids) == 0 {
		return players, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.sessionKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}

	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			// Index entry without a snapshot; the sweeper will reap it.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading snapshot %s: %w", ids[i], err)
		}
		var p domain.LivePlayer
		if err := json.Unmarshal(data, &p); err != nil {
			s.logger.Warn("skipping corrupt snapshot", "session_id", ids[i], "error", err)
			continue
		}
		players = append(players, p)
	}
	return players, nil
}

// PruneStale removes sessions whose last update is older than the cutoff.
// Returns the number of sessions removed.
func (s *LiveStore) PruneStale(ctx context.Context, cutoff time.Time) (int, error) {
	max := strconv.FormatInt(cutoff.Unix(), 10)
	ids, err := s.client.ZRangeByScore(ctx, indexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("finding stale sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.sessionKey(id))
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	pipe.ZRem(ctx, indexKey, members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("pruning stale sessions: %w", err)
	}
	return len(ids), nil
}

// Count returns the number of tracked sessions.
func (s *LiveStore) Count(ctx context.Context) (int64, error) {
	count, err := s.client.ZCard(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return count, nil
}
