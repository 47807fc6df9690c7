package domain

import "sort"

// GameMode represents the ruleset a game was played under
type GameMode string

const (
	ModeWalls       GameMode = "walls"
	ModePassThrough GameMode = "pass-through"
)

// Valid reports whether the mode is a recognized ruleset.
func (m GameMode) Valid() bool {
	return m == ModeWalls || m == ModePassThrough
}

// LeaderboardEntry represents a single persisted score.
// Rank is derived state: it is recomputed across the full entry set on every
// submission and is never chosen independently.
type LeaderboardEntry struct {
	ID       string   `json:"id"`
	Rank     int      `json:"rank"`
	Username string   `json:"username"`
	Score    int      `json:"score"`
	Mode     GameMode `json:"mode"`
	Date     string   `json:"date"`
}

// ScoreSubmission represents a request to submit a score.
// Score is a pointer so an absent field is distinguishable from zero.
type ScoreSubmission struct {
	Username string   `json:"username,omitempty"`
	Score    *int     `json:"score"`
	Mode     GameMode `json:"mode"`
}

// RankEntries reassigns 1-based ranks across the full entry set, ordering by
// score descending. The sort is stable, so entries with equal scores keep
// their relative order; callers must pass entries in insertion order.
func RankEntries(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
