package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/serpent-showdown/internal/domain"
)

// Demo data. Seeding only runs against empty tables so restarts never
// duplicate rows.

var seedAccounts = []domain.Account{
	{ID: "1", Username: "PixelMaster", Email: "player1@example.com", Password: "password123"},
	{ID: "2", Username: "SnakeKing", Email: "player2@example.com", Password: "password123"},
	{ID: "3", Username: "RetroGamer", Email: "player3@example.com", Password: "password123"},
	{ID: "4", Username: "NeonHunter", Email: "player4@example.com", Password: "password123"},
	{ID: "5", Username: "ArcadeWizard", Email: "player5@example.com", Password: "password123"},
}

var seedEntries = []domain.LeaderboardEntry{
	{ID: "1", Rank: 1, Username: "PixelMaster", Score: 2450, Mode: domain.ModeWalls, Date: "2024-12-01"},
	{ID: "2", Rank: 2, Username: "SnakeKing", Score: 2120, Mode: domain.ModePassThrough, Date: "2024-12-02"},
	{ID: "3", Rank: 3, Username: "RetroGamer", Score: 1890, Mode: domain.ModeWalls, Date: "2024-11-28"},
	{ID: "4", Rank: 4, Username: "NeonHunter", Score: 1750, Mode: domain.ModePassThrough, Date: "2024-11-30"},
	{ID: "5", Rank: 5, Username: "ArcadeWizard", Score: 1620, Mode: domain.ModeWalls, Date: "2024-12-01"},
	{ID: "6", Rank: 6, Username: "ByteCrusher", Score: 1480, Mode: domain.ModePassThrough, Date: "2024-11-25"},
	{ID: "7", Rank: 7, Username: "GlitchMaster", Score: 1350, Mode: domain.ModeWalls, Date: "2024-11-29"},
	{ID: "8", Rank: 8, Username: "PixelPunk", Score: 1200, Mode: domain.ModePassThrough, Date: "2024-12-02"},
	{ID: "9", Rank: 9, Username: "CyberSnake", Score: 1050, Mode: domain.ModeWalls, Date: "2024-11-27"},
	{ID: "10", Rank: 10, Username: "DataViper", Score: 980, Mode: domain.ModePassThrough, Date: "2024-11-26"},
}

// Seed populates demo accounts and leaderboard entries when both tables are
// empty.
func (db *DB) Seed(ctx context.Context) error {
	accounts := NewAccountRepo(db)
	entries := NewLeaderboardRepo(db)

	accountCount, err := accounts.Count(ctx)
	if err != nil {
		return err
	}
	entryCount, err := entries.Count(ctx)
	if err != nil {
		return err
	}
	if accountCount > 0 || entryCount > 0 {
		return nil
	}

	batch := &pgx.Batch{}
	now := time.Now()
	for _, a := range seedAccounts {
		batch.Queue(
			`INSERT INTO accounts (id, username, email, password, created_at) VALUES ($1, $2, $3, $4, $5)`,
			a.ID, a.Username, a.Email, a.Password, now,
		)
	}
	for _, e := range seedEntries {
		batch.Queue(
			`INSERT INTO leaderboard_entries (id, rank, username, score, mode, date) VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.Rank, e.Username, e.Score, string(e.Mode), e.Date,
		)
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}
	}

	if db.logger != nil {
		db.logger.Info("seeded demo data",
			"accounts", len(seedAccounts),
			"leaderboard_entries", len(seedEntries),
		)
	}
	return nil
}
