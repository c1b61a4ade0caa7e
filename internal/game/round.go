package game

import (
	"math/rand"

	"github.com/lukev/secrettoaster/internal/models"
)

// ExecuteRound gates on every active player being ready, then
// deterministically interleaves all queued orders across players using an
// RNG seeded from seed. It returns a new state (the input is left
// untouched), the ordered event log produced, and whether execution ran at
// all. The same (state, seed) pair always yields the same state and
// events.
func ExecuteRound(state *GameState, seed uint64) (*GameState, []models.Event, bool) {
	rng := rand.New(rand.NewSource(int64(seed)))
	draw := func(n int) int {
		i := int(rng.Float64() * float64(n))
		if i >= n {
			i = n - 1
		}
		return i
	}
	roll := func() int { return rng.Intn(6) + 1 }
	return runRound(state, draw, roll)
}

// runRound holds the scheduling algorithm itself, taking the scheduling
// draw and the battle die source as injected capabilities. Separating this
// from ExecuteRound lets tests script an exact draw/roll sequence instead
// of reverse-engineering a math/rand seed.
func runRound(state *GameState, draw func(n int) int, roll DieSource) (*GameState, []models.Event, bool) {
	for _, p := range state.Players {
		if p.Active && !p.Ready {
			return state, nil, false
		}
	}

	next := state.Clone()
	round := next.Round
	var events []models.Event

	for anyOrdersQueued(next) {
		i := draw(len(next.PlayerOrder))
		nickname := next.PlayerOrder[i]
		player := next.Players[nickname]

		order := popLowestOrder(player)
		if order == nil {
			continue
		}
		applyOrder(next, order, round, roll, &events)
	}

	for _, p := range next.Players {
		p.Ready = false
		p.Orders = [3]*models.Order{}
	}
	for _, k := range next.Knights {
		k.Projected = [3]int{k.Location, k.Location, k.Location}
	}

	fromRound := next.Round
	next.Round++
	next.appendEvent(&events, fromRound, models.Event{
		Type:          models.EventRoundAdvanced,
		RoundAdvanced: &models.RoundAdvancedEvent{FromRound: fromRound, ToRound: next.Round},
	})

	return next, events, true
}

func anyOrdersQueued(state *GameState) bool {
	for _, p := range state.Players {
		for _, o := range p.Orders {
			if o != nil {
				return true
			}
		}
	}
	return false
}

// popLowestOrder removes and returns the player's lowest-order-number
// queued order, or nil if the queue is empty.
func popLowestOrder(player *models.Player) *models.Order {
	for i := 0; i < 3; i++ {
		if player.Orders[i] != nil {
			order := player.Orders[i]
			player.Orders[i] = nil
			return order
		}
	}
	return nil
}
