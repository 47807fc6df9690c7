package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/serpent-showdown/internal/domain"
)

// LiveRepository is the snapshot store surface the registry needs.
type LiveRepository interface {
	ListActive(ctx context.Context) ([]domain.LivePlayer, error)
	Get(ctx context.Context, id string) (*domain.LivePlayer, error)
	Upsert(ctx context.Context, p *domain.LivePlayer) error
}

// LiveService serves read-only snapshots of in-progress games. Writes arrive
// only through Ingest, the path fed by the external game-session publisher.
type LiveService struct {
	store  LiveRepository
	hub    Hub
	logger *slog.Logger
}

// NewLiveService creates a new live session service.
func NewLiveService(store LiveRepository, logger *slog.Logger) *LiveService {
	return &LiveService{store: store, logger: logger}
}

// SetHub attaches the spectator hub for per-session broadcasts.
func (s *LiveService) SetHub(hub Hub) {
	s.hub = hub
}

// ListActive returns the current snapshot for every tracked session.
func (s *LiveService) ListActive(ctx context.Context) ([]domain.LivePlayer, error) {
	return s.store.ListActive(ctx)
}

// GetByID returns the snapshot for one session, or nil when the id is
// unknown. The nil result is a soft miss the presentation layer renders as
// an empty state.
func (s *LiveService) GetByID(ctx context.Context, id string) (*domain.LivePlayer, error) {
	return s.store.Get(ctx, id)
}

// Ingest validates and stores a snapshot published by a game-session
// process, then fans it out to subscribed spectators.
func (s *LiveService) Ingest(ctx context.Context, p *domain.LivePlayer) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("rejecting snapshot: %w", err)
	}
	if err := s.store.Upsert(ctx, p); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastSnapshot(p)
	}
	return nil
}
