package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/serpent-showdown/internal/domain"
)

// LeaderboardRepo provides leaderboard entry persistence.
type LeaderboardRepo struct{ db *DB }

// NewLeaderboardRepo constructs a leaderboard repository.
func NewLeaderboardRepo(db *DB) *LeaderboardRepo { return &LeaderboardRepo{db: db} }

// List returns entries ordered by rank ascending, optionally filtered by mode.
// The filtered subsequence keeps the unfiltered order because rank is global.
func (r *LeaderboardRepo) List(ctx context.Context, mode *domain.GameMode) ([]domain.LeaderboardEntry, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if mode != nil {
		const q = `
SELECT id, rank, username, score, mode, date
FROM leaderboard_entries WHERE mode = $1 ORDER BY rank ASC`
		rows, err = r.db.Pool.Query(ctx, q, string(*mode))
	} else {
		const q = `
SELECT id, rank, username, score, mode, date
FROM leaderboard_entries ORDER BY rank ASC`
		rows, err = r.db.Pool.Query(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("listing leaderboard entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Rank, &e.Username, &e.Score, &e.Mode, &e.Date); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing leaderboard entries: %w", err)
	}
	return entries, nil
}

// Submit inserts a new entry and recomputes rank for the full entry set in a
// single transaction. The table lock serializes concurrent submissions so no
// recompute runs against a stale view of the set. Returns the entry with its
// final rank.
func (r *LeaderboardRepo) Submit(ctx context.Context, entry domain.LeaderboardEntry) (created *domain.LeaderboardEntry, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("beginning submit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			created = nil
			err = fmt.Errorf("committing submit transaction: %w", e)
		}
	}()

	if _, err := tx.Exec(ctx, `LOCK TABLE leaderboard_entries IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, fmt.Errorf("locking leaderboard entries: %w", err)
	}

	const insert = `
INSERT INTO leaderboard_entries (id, rank, username, score, mode, date)
VALUES ($1, 0, $2, $3, $4, $5)`
	if _, err := tx.Exec(ctx, insert, entry.ID, entry.Username, entry.Score, string(entry.Mode), entry.Date); err != nil {
		return nil, fmt.Errorf("inserting leaderboard entry: %w", err)
	}

	// Load the full set in insertion order; seq is the stable tie-break.
	const selectAll = `
SELECT id, rank, username, score, mode, date
FROM leaderboard_entries ORDER BY seq ASC`
	rows, err := tx.Query(ctx, selectAll)
	if err != nil {
		return nil, fmt.Errorf("loading entries for rerank: %w", err)
	}

	var all []domain.LeaderboardEntry
	oldRanks := make(map[string]int)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Rank, &e.Username, &e.Score, &e.Mode, &e.Date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning entry for rerank: %w", err)
		}
		oldRanks[e.ID] = e.Rank
		all = append(all, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading entries for rerank: %w", err)
	}

	domain.RankEntries(all)

	const update = `UPDATE leaderboard_entries SET rank = $2 WHERE id = $1`
	for i := range all {
		e := all[i]
		if oldRanks[e.ID] != e.Rank {
			if _, err := tx.Exec(ctx, update, e.ID, e.Rank); err != nil {
				return nil, fmt.Errorf("updating rank: %w", err)
			}
		}
		if e.ID == entry.ID {
			created = &all[i]
		}
	}
	if created == nil {
		err = fmt.Errorf("submitted entry %s missing after rerank", entry.ID)
		return nil, err
	}

	return created, nil
}

// Count returns the total number of leaderboard entries.
func (r *LeaderboardRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM leaderboard_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting leaderboard entries: %w", err)
	}
	return count, nil
}
