package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/powers/internal/powers"
)

var (
	ErrSessionNotFound = errors.New("session: not found")
	ErrGameOver        = errors.New("session: game over")
	ErrInvalidSize     = errors.New("session: invalid grid size")
)

// Grid size limits for hosted games.
const (
	MinSize = 2
	MaxSize = 16
)

// Recorder persists the moves of a session.
type Recorder interface {
	RecordMove(ctx context.Context, sessionID string, moveNumber int, dir powers.Direction, res powers.MoveResult, score int) error
}

// Notifier is told about every accepted move.
type Notifier interface {
	NotifyMove(outcome MoveOutcome)
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder stores every move through r.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// WithNotifier publishes every move through n.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithGameOptions applies opts to every game the manager creates, after the
// manager's own random source.
func WithGameOptions(opts ...powers.Option) Option {
	return func(m *Manager) {
		m.gameOpts = append(m.gameOpts, opts...)
	}
}

// Manager owns the hosted sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	recorder Recorder
	notifier Notifier
	logger   *log.Logger
	gameOpts []powers.Option
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	return m
}

// SetNotifier replaces the move notifier. It lets a hub that needs the
// manager be attached after construction.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	m.notifier = n
	m.mu.Unlock()
}

// Create starts a size×size game. A zero seed picks a time-based one.
func (m *Manager) Create(ctx context.Context, size int, seed int64) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidSize, size, MinSize, MaxSize)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := append([]powers.Option{
		powers.WithRand(rand.New(rand.NewSource(seed))),
		powers.WithLogger(m.logger),
	}, m.gameOpts...)
	game, err := powers.New(size, opts...)
	if err != nil {
		return nil, fmt.Errorf("session: create game: %w", err)
	}

	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		game:       game,
		lastAccess: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created", "session", s.ID, "size", size, "seed", seed)
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// List returns the states of all sessions, oldest first.
func (m *Manager) List() []State {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	states := make([]State, 0, len(sessions))
	for _, s := range sessions {
		states = append(states, s.State())
	}
	slices.SortFunc(states, func(a, b State) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return states
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.logger.Info("session deleted", "session", id)
	return nil
}

// Move shifts the grid of session id in dir. Moves are rejected with
// ErrGameOver once no move is possible.
//
// The recorder and notifier see each session's moves in move order. Recording
// is not cancelled with ctx once the move is applied, and a recorder failure
// is logged without undoing the move.
func (m *Manager) Move(ctx context.Context, id string, dir powers.Direction) (MoveOutcome, error) {
	if err := ctx.Err(); err != nil {
		return MoveOutcome{}, err
	}

	s, err := m.Get(id)
	if err != nil {
		return MoveOutcome{}, err
	}

	m.mu.RLock()
	notifier := m.notifier
	m.mu.RUnlock()

	recordCtx := context.WithoutCancel(ctx)
	outcome, err := s.move(dir, func(o MoveOutcome) {
		if m.recorder != nil {
			if err := m.recorder.RecordMove(recordCtx, id, o.MoveNumber, dir, o.Result, o.State.Score); err != nil {
				m.logger.Warn("failed to record move", "session", id, "move", o.MoveNumber, "err", err)
			}
		}
		if notifier != nil {
			notifier.NotifyMove(o)
		}
	})
	if err != nil {
		return MoveOutcome{}, err
	}

	m.logger.Debug("move",
		"session", id,
		"direction", dir,
		"points", outcome.Points,
		"score", outcome.State.Score,
		"game_over", outcome.State.GameOver,
	)
	return outcome, nil
}
