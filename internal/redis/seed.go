package redis

import (
	"context"

	"github.com/serpent-showdown/internal/domain"
)

// Demo AI sessions, used when seeding is enabled and no external publisher
// is running yet.
var seedSessions = []domain.LivePlayer{
	{
		ID: "live1", Username: "AIPlayer_Alpha", Score: 150, Mode: domain.ModeWalls,
		Snake:     []domain.Position{{X: 10, Y: 10}, {X: 9, Y: 10}, {X: 8, Y: 10}},
		Food:      domain.Position{X: 15, Y: 12},
		Direction: domain.DirectionRight, Viewers: 23,
	},
	{
		ID: "live2", Username: "AIPlayer_Beta", Score: 280, Mode: domain.ModePassThrough,
		Snake:     []domain.Position{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}},
		Food:      domain.Position{X: 12, Y: 8},
		Direction: domain.DirectionDown, Viewers: 45,
	},
	{
		ID: "live3", Username: "AIPlayer_Gamma", Score: 95, Mode: domain.ModeWalls,
		Snake:     []domain.Position{{X: 15, Y: 15}, {X: 14, Y: 15}, {X: 13, Y: 15}},
		Food:      domain.Position{X: 3, Y: 18},
		Direction: domain.DirectionLeft, Viewers: 12,
	},
	{
		ID: "live4", Username: "AIPlayer_Delta", Score: 420, Mode: domain.ModePassThrough,
		Snake:     []domain.Position{{X: 18, Y: 5}, {X: 18, Y: 4}, {X: 18, Y: 3}},
		Food:      domain.Position{X: 5, Y: 15},
		Direction: domain.DirectionUp, Viewers: 67,
	},
	{
		ID: "live5", Username: "AIPlayer_Epsilon", Score: 310, Mode: domain.ModeWalls,
		Snake:     []domain.Position{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2}},
		Food:      domain.Position{X: 10, Y: 10},
		Direction: domain.DirectionRight, Viewers: 34,
	},
}

// Seed stores the demo sessions when the registry is empty.
func (s *LiveStore) Seed(ctx context.Context) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := range seedSessions {
		if err := s.Upsert(ctx, &seedSessions[i]); err != nil {
			return err
		}
	}

	s.logger.Info("seeded demo live sessions", "sessions", len(seedSessions))
	return nil
}
