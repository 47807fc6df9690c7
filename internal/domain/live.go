package domain

import "errors"

// Direction represents the current heading of a snake
type Direction string

const (
	DirectionUp    Direction = "UP"
	DirectionDown  Direction = "DOWN"
	DirectionLeft  Direction = "LEFT"
	DirectionRight Direction = "RIGHT"
)

// Valid reports whether the direction is a recognized heading.
func (d Direction) Valid() bool {
	switch d {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return true
	}
	return false
}

// Position is a cell on the game grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LivePlayer is the latest snapshot of one in-progress game session.
// Snapshots are owned and mutated by the external game-session publisher;
// this service only stores and serves them.
type LivePlayer struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Score     int        `json:"score"`
	Mode      GameMode   `json:"mode"`
	Snake     []Position `json:"snake"`
	Food      Position   `json:"food"`
	Direction Direction  `json:"direction"`
	Viewers   int        `json:"viewers"`
}

// Validate checks the snapshot invariants before it enters the registry.
func (p *LivePlayer) Validate() error {
	if p.ID == "" || p.Username == "" {
		return errors.New("snapshot missing id or username")
	}
	if len(p.Snake) == 0 {
		return errors.New("snapshot has empty snake body")
	}
	if !p.Mode.Valid() {
		return errors.New("snapshot has unknown game mode")
	}
	if !p.Direction.Valid() {
		return errors.New("snapshot has unknown direction")
	}
	if p.Viewers < 0 {
		return errors.New("snapshot has negative viewer count")
	}
	return nil
}
