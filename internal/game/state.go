// Package game implements the Secret Toaster rules engine: board topology,
// order validation, battle resolution, and round execution. The rules
// functions are pure and value-typed; Manager is the one stateful piece, an
// in-memory, mutex-guarded host wrapper that also stamps event IDs.
// Persistence and transport stay with the host.
package game

import (
	"fmt"
	"math/rand"

	"github.com/lukev/secrettoaster/internal/game/board"
	"github.com/lukev/secrettoaster/internal/models"
)

// GameState is the authoritative, host-persisted snapshot of one game.
type GameState struct {
	Board   *board.Board
	Round   int
	Status  models.Status
	Hexes   map[int]*models.HexState
	Players map[string]*models.Player
	Knights map[string]*models.Knight

	// Alliances maps an alliance name to its member nicknames.
	Alliances map[string][]string

	// PlayerOrder is the canonical, deterministic list of every player's
	// nickname (including players with empty order queues). The round
	// executor draws against this full list, never against Go's
	// unordered map iteration, so that execution stays reproducible.
	PlayerOrder []string

	// NextEventIndex is the append-only counter driving each Event's
	// Index field.
	NextEventIndex int
}

// NewGameState builds an empty game over the given board, ready to accept
// players during the lobby phase.
func NewGameState(b *board.Board) *GameState {
	hexes := make(map[int]*models.HexState, board.Total)
	for idx := 0; idx < board.Total; idx++ {
		hexes[idx] = models.NewHexState()
	}
	return &GameState{
		Board:     b,
		Round:     0,
		Status:    models.StatusLobby,
		Hexes:     hexes,
		Players:   make(map[string]*models.Player),
		Knights:   make(map[string]*models.Knight),
		Alliances: make(map[string][]string),
	}
}

// AddPlayer seats a new player in the lobby.
func (s *GameState) AddPlayer(nickname, alliance string) (*models.Player, error) {
	if _, exists := s.Players[nickname]; exists {
		return nil, fmt.Errorf("game: player already exists: %s", nickname)
	}
	p := &models.Player{
		Nickname: nickname,
		Alliance: alliance,
		Active:   true,
	}
	s.Players[nickname] = p
	s.PlayerOrder = append(s.PlayerOrder, nickname)
	if alliance != "" {
		s.Alliances[alliance] = append(s.Alliances[alliance], nickname)
	}
	return p, nil
}

// GetPlayer returns a player by nickname, or nil.
func (s *GameState) GetPlayer(nickname string) *models.Player {
	return s.Players[nickname]
}

// AddKnight creates a new knight for nickname at the given hex, alive and
// with its projected positions resting at that hex.
func (s *GameState) AddKnight(nickname, knightName string, location int) (*models.Knight, error) {
	player, ok := s.Players[nickname]
	if !ok {
		return nil, fmt.Errorf("game: player not found: %s", nickname)
	}
	if _, exists := s.Knights[knightName]; exists {
		return nil, fmt.Errorf("game: knight already exists: %s", knightName)
	}
	k := &models.Knight{
		Name:      knightName,
		Owner:     nickname,
		Location:  location,
		Alive:     true,
		Projected: [3]int{location, location, location},
	}
	s.Knights[knightName] = k
	player.Knights = append(player.Knights, knightName)
	return k, nil
}

// PlaceKnightAtRandomFreeKeep creates a player's starting knight on a keep
// hex not already occupied by another living knight, chosen with rng. This
// implements the join-time lifecycle from the data model; it is a
// convenience for hosts setting up a lobby, not one of the five core
// operations.
func (s *GameState) PlaceKnightAtRandomFreeKeep(nickname, knightName string, rng *rand.Rand) (*models.Knight, error) {
	free := make([]int, 0, len(board.KeepIndices))
	for _, keep := range board.KeepIndices {
		if s.knightAt(keep) == nil {
			free = append(free, keep)
		}
	}
	if len(free) == 0 {
		return nil, fmt.Errorf("game: no free keep available")
	}
	idx := free[rng.Intn(len(free))]
	return s.AddKnight(nickname, knightName, idx)
}

func (s *GameState) knightAt(hex int) *models.Knight {
	for _, k := range s.Knights {
		if k.Alive && k.Location == hex {
			return k
		}
	}
	return nil
}

// AllianceSize returns the member count of nickname's alliance, or 1 if they
// belong to none. ResolveBattle turns this size into a score bonus through
// allianceBonus.
func (s *GameState) AllianceSize(nickname string) int {
	p, ok := s.Players[nickname]
	if !ok || p.Alliance == "" {
		return 1
	}
	members := s.Alliances[p.Alliance]
	if len(members) == 0 {
		return 1
	}
	return len(members)
}

// troopsOn returns the troop count a given owner has on hex idx.
func (s *GameState) troopsOn(hex int, owner string) int {
	hs, ok := s.Hexes[hex]
	if !ok {
		return 0
	}
	return hs.Troops[owner]
}

// knightsAt returns the names of alive knights owned by nickname that are
// currently located on hex.
func (s *GameState) knightsAt(hex int, nickname string) []string {
	var names []string
	for name, k := range s.Knights {
		if k.Alive && k.Owner == nickname && k.Location == hex {
			names = append(names, name)
		}
	}
	return names
}

// Clone returns a deep copy of the state, so that execute_round can mutate
// its working copy while leaving the caller's input untouched.
func (s *GameState) Clone() *GameState {
	out := &GameState{
		Board:          s.Board,
		Round:          s.Round,
		Status:         s.Status,
		Hexes:          make(map[int]*models.HexState, len(s.Hexes)),
		Players:        make(map[string]*models.Player, len(s.Players)),
		Knights:        make(map[string]*models.Knight, len(s.Knights)),
		Alliances:      make(map[string][]string, len(s.Alliances)),
		PlayerOrder:    append([]string(nil), s.PlayerOrder...),
		NextEventIndex: s.NextEventIndex,
	}
	for idx, hs := range s.Hexes {
		troops := make(map[string]int, len(hs.Troops))
		for k, v := range hs.Troops {
			troops[k] = v
		}
		out.Hexes[idx] = &models.HexState{Owner: hs.Owner, Troops: troops}
	}
	for nick, p := range s.Players {
		cp := *p
		cp.Knights = append([]string(nil), p.Knights...)
		for i, o := range p.Orders {
			if o != nil {
				dup := *o
				cp.Orders[i] = &dup
			}
		}
		out.Players[nick] = &cp
	}
	for name, k := range s.Knights {
		ck := *k
		out.Knights[name] = &ck
	}
	for name, members := range s.Alliances {
		out.Alliances[name] = append([]string(nil), members...)
	}
	return out
}

// appendEvent stamps an event with the next index and round, and appends
// it to the log.
func (s *GameState) appendEvent(log *[]models.Event, round int, evt models.Event) {
	evt.Index = s.NextEventIndex
	evt.Round = round
	s.NextEventIndex++
	*log = append(*log, evt)
}
