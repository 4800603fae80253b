// Package session hosts concurrent games for the network front ends.
//
// The grid controller is single-owner, so every Session serializes access to
// its game with its own mutex. The Manager map is guarded separately.
package session

import (
	"sync"
	"time"

	"github.com/vovakirdan/powers/internal/powers"
)

// Session is one game hosted by a Manager.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	game       *powers.Game
	moves      int
	lastAccess time.Time
}

// State is a point-in-time view of a session.
type State struct {
	ID         string    `json:"id"`
	Size       int       `json:"size"`
	Score      int       `json:"score"`
	Moves      int       `json:"moves"`
	MaxTile    int       `json:"max_tile"`
	Board      [][]int   `json:"board"`
	GameOver   bool      `json:"game_over"`
	CreatedAt  time.Time `json:"created_at"`
	LastAccess time.Time `json:"last_access"`
}

// MoveOutcome is what one accepted move produced.
type MoveOutcome struct {
	SessionID  string            `json:"session_id"`
	MoveNumber int               `json:"move_number"`
	Direction  powers.Direction  `json:"direction"`
	Result     powers.MoveResult `json:"result"`
	Points     int               `json:"points"`
	State      State             `json:"state"`
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		ID:         s.ID,
		Size:       s.game.Size(),
		Score:      s.game.Score(),
		Moves:      s.moves,
		MaxTile:    s.game.MaxTile(),
		Board:      s.game.Cells(),
		GameOver:   s.game.IsGameOver(),
		CreatedAt:  s.CreatedAt,
		LastAccess: s.lastAccess,
	}
}

// move applies dir under the session lock. commit, if set, runs before the
// lock is released, so it sees the moves of one session in order.
func (s *Session) move(dir powers.Direction, commit func(MoveOutcome)) (MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.IsGameOver() {
		return MoveOutcome{}, ErrGameOver
	}

	res := s.game.DoMove(dir)
	s.moves++
	s.lastAccess = time.Now()

	outcome := MoveOutcome{
		SessionID:  s.ID,
		MoveNumber: s.moves,
		Direction:  dir,
		Result:     res,
		Points:     res.Points(),
		State:      s.stateLocked(),
	}
	if commit != nil {
		commit(outcome)
	}
	return outcome, nil
}
