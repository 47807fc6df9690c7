package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/serpent-showdown/internal/domain"
)

// LeaderboardRepository is the persistence surface the ranking engine needs.
// Submit must insert the entry and recompute rank for the full set as one
// atomic unit.
type LeaderboardRepository interface {
	List(ctx context.Context, mode *domain.GameMode) ([]domain.LeaderboardEntry, error)
	Submit(ctx context.Context, entry domain.LeaderboardEntry) (*domain.LeaderboardEntry, error)
}

// Hub is the spectator fan-out surface the services publish updates to.
type Hub interface {
	BroadcastLeaderboardUpdate(entries []domain.LeaderboardEntry)
	BroadcastSnapshot(p *domain.LivePlayer)
}

// LeaderboardService owns score submission and rank computation.
type LeaderboardService struct {
	repo   LeaderboardRepository
	hub    Hub
	logger *slog.Logger
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(repo LeaderboardRepository, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{repo: repo, logger: logger}
}

// SetHub attaches the spectator hub for post-submit broadcasts.
func (s *LeaderboardService) SetHub(hub Hub) {
	s.hub = hub
}

// List returns entries ordered by rank ascending, optionally filtered by
// mode. Read-only; never mutates rank.
func (s *LeaderboardService) List(ctx context.Context, mode *domain.GameMode) ([]domain.LeaderboardEntry, error) {
	if mode != nil && !mode.Valid() {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.List(ctx, mode)
}

// Submit validates and persists a score. Rank is recomputed across the whole
// entry set, not just the submitted mode, so rank stays globally consistent
// with score ordering.
func (s *LeaderboardService) Submit(ctx context.Context, sub domain.ScoreSubmission) (*domain.LeaderboardEntry, error) {
	if sub.Score == nil || *sub.Score < 0 || !sub.Mode.Valid() {
		return nil, domain.ErrInvalidInput
	}

	username := sub.Username
	if username == "" {
		// No session identity exists, so an unattributed score gets a
		// placeholder display name.
		username = "anonymous"
	}

	entry := domain.LeaderboardEntry{
		ID:       uuid.New().String(),
		Username: username,
		Score:    *sub.Score,
		Mode:     sub.Mode,
		Date:     time.Now().Format("2006-01-02"),
	}

	created, err := s.repo.Submit(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("submitting score: %w", err)
	}

	if s.hub != nil {
		entries, err := s.repo.List(ctx, nil)
		if err != nil {
			s.logger.Warn("failed to load leaderboard for broadcast", "error", err)
		} else {
			s.hub.BroadcastLeaderboardUpdate(entries)
		}
	}

	return created, nil
}
