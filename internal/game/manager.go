package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lukev/secrettoaster/internal/models"
)

// ActionMeta carries the optimistic-concurrency and idempotency data a host
// attaches to a single submission.
type ActionMeta struct {
	ActionID         string
	ExpectedRevision int
}

// ActionResult reports what a Manager call actually did.
type ActionResult struct {
	Revision  int
	Duplicate bool
}

// RevisionMismatchError indicates the caller's expected revision has gone
// stale — another submission landed on this game first.
type RevisionMismatchError struct {
	Expected int
	Current  int
}

func (e *RevisionMismatchError) Error() string {
	return fmt.Sprintf("revision mismatch: expected %d, current %d", e.Expected, e.Current)
}

// Manager owns a set of in-memory games behind a single mutex, giving hosts
// a straightforward way to serve concurrent requests against the pure,
// single-threaded functions in this package without re-deriving locking on
// every call site.
type Manager struct {
	mu              sync.RWMutex
	games           map[string]*GameState
	revisions       map[string]int
	appliedActionID map[string]map[string]int
}

// NewManager creates an empty game manager.
func NewManager() *Manager {
	return &Manager{
		games:           make(map[string]*GameState),
		revisions:       make(map[string]int),
		appliedActionID: make(map[string]map[string]int),
	}
}

// CreateGame seats a fresh game under id, built on the canonical board.
func (m *Manager) CreateGame(id string) (*GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.games[id]; exists {
		return nil, fmt.Errorf("game already exists: %s", id)
	}
	gs := NewGameState(BuildBoard())
	m.games[id] = gs
	m.revisions[id] = 0
	m.appliedActionID[id] = make(map[string]int)
	return gs, nil
}

// GetGame retrieves a game by ID.
func (m *Manager) GetGame(id string) (*GameState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	return g, ok
}

// GetRevision returns the current revision for a game.
func (m *Manager) GetRevision(id string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.games[id]; !ok {
		return 0, false
	}
	return m.revisions[id], true
}

// ListGames returns every stored game's ID, whatever its status.
func (m *Manager) ListGames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.games))
	for id := range m.games {
		out = append(out, id)
	}
	return out
}

// SubmitOrder validates and queues order against gameID's current state,
// enforcing optimistic-concurrency and idempotency via meta. On success the
// game's stored state and revision are both advanced.
func (m *Manager) SubmitOrder(gameID string, order *models.Order, meta ActionMeta) (*ActionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyLocked(gameID, meta, func(gs *GameState) (*GameState, error) {
		return SubmitOrder(gs, order)
	})
}

// SetReady flips a player's readiness flag against gameID's current state.
func (m *Manager) SetReady(gameID, nickname string, ready bool, meta ActionMeta) (*ActionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyLocked(gameID, meta, func(gs *GameState) (*GameState, error) {
		return SetReady(gs, nickname, ready)
	})
}

// ExecuteRound runs the round executor against gameID's current state and
// seed, returning the events produced and whether the round actually ran.
func (m *Manager) ExecuteRound(gameID string, seed uint64) ([]models.Event, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gs := m.games[gameID]
	if gs == nil {
		return nil, false, fmt.Errorf("game not found: %s", gameID)
	}

	next, events, executed := ExecuteRound(gs, seed)
	if executed {
		// The pure core never stamps an ID (execute_round stays a function
		// of (state, seed) alone); the Manager is the host boundary, so it
		// assigns one here before a persistence layer or transport sees it.
		for i := range events {
			events[i].ID = uuid.NewString()
		}
		m.games[gameID] = next
		m.revisions[gameID]++
	}
	return events, executed, nil
}

// applyLocked runs fn against gameID's stored state under the manager's
// write lock, handling revision checks and idempotent replays. Callers must
// already hold m.mu.
func (m *Manager) applyLocked(gameID string, meta ActionMeta, fn func(*GameState) (*GameState, error)) (*ActionResult, error) {
	gs := m.games[gameID]
	if gs == nil {
		return nil, fmt.Errorf("game not found: %s", gameID)
	}

	currentRevision := m.revisions[gameID]
	if meta.ActionID != "" {
		if rev, exists := m.appliedActionID[gameID][meta.ActionID]; exists {
			return &ActionResult{Revision: rev, Duplicate: true}, nil
		}
	}
	if meta.ExpectedRevision >= 0 && meta.ExpectedRevision != currentRevision {
		return nil, &RevisionMismatchError{Expected: meta.ExpectedRevision, Current: currentRevision}
	}

	next, err := fn(gs)
	if err != nil {
		return nil, err
	}

	currentRevision++
	m.games[gameID] = next
	m.revisions[gameID] = currentRevision
	if meta.ActionID != "" {
		m.appliedActionID[gameID][meta.ActionID] = currentRevision
	}
	return &ActionResult{Revision: currentRevision, Duplicate: false}, nil
}

// SerializeState converts a game's state into a JSON-friendly map for a
// host's HTTP or websocket transport.
func SerializeState(gs *GameState, gameID string, revision int) map[string]interface{} {
	players := make(map[string]interface{}, len(gs.Players))
	for nickname, p := range gs.Players {
		players[nickname] = map[string]interface{}{
			"nickname": p.Nickname,
			"alliance": p.Alliance,
			"active":   p.Active,
			"ready":    p.Ready,
			"knights":  p.Knights,
		}
	}

	knights := make(map[string]interface{}, len(gs.Knights))
	for name, k := range gs.Knights {
		knights[name] = map[string]interface{}{
			"owner":     k.Owner,
			"location":  k.Location,
			"alive":     k.Alive,
			"projected": k.Projected,
		}
	}

	hexes := make(map[string]interface{}, len(gs.Hexes))
	for idx, hs := range gs.Hexes {
		hexes[fmt.Sprintf("%d", idx)] = map[string]interface{}{
			"owner":  hs.Owner,
			"troops": hs.Troops,
		}
	}

	return map[string]interface{}{
		"id":       gameID,
		"revision": revision,
		"round":    gs.Round,
		"status":   gs.Status,
		"players":  players,
		"knights":  knights,
		"hexes":    hexes,
	}
}
