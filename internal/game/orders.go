package game

import "github.com/lukev/secrettoaster/internal/models"

// ProjectPositions computes, for every knight belonging to player, the hex
// it would occupy after orders 1, 2, and 3 execute in numeric order. Slots
// without an order for that knight (or belonging to a different knight)
// carry the prior slot's position forward. This is always a pure function
// of the knight's current location and the player's currently queued
// orders — never a separately mutated field — so callers should recompute
// it after every SubmitOrder instead of trusting a cached copy.
func ProjectPositions(state *GameState, player *models.Player) map[string][3]int {
	result := make(map[string][3]int, len(player.Knights))
	for _, name := range player.Knights {
		knight := state.Knights[name]
		if knight == nil {
			continue
		}
		result[name] = projectKnight(player, knight.Location, name)
	}
	return result
}

// projectKnight walks the player's three order slots, tracking where a
// single named knight would be after each slot executes.
func projectKnight(player *models.Player, start int, knightName string) [3]int {
	var seq [3]int
	pos := start
	for i := 0; i < 3; i++ {
		order := player.Orders[i]
		if order != nil && order.KnightName == knightName {
			pos = order.To
		}
		seq[i] = pos
	}
	return seq
}

// projectedBefore returns the hex a knight would occupy immediately before
// orderNumber's slot executes: its current location if orderNumber is 1,
// otherwise the projected position after slot orderNumber-1.
func projectedBefore(player *models.Player, knight *models.Knight, orderNumber int) int {
	if orderNumber <= 1 {
		return knight.Location
	}
	seq := projectKnight(player, knight.Location, knight.Name)
	return seq[orderNumber-2]
}

// recomputeProjections refreshes the Projected field of every knight
// belonging to player, deriving it from the player's current order queue.
// Called after any order is submitted or overwritten so the cached field
// never drifts from its defining inputs.
func recomputeProjections(state *GameState, player *models.Player) {
	projected := ProjectPositions(state, player)
	for name, seq := range projected {
		if k := state.Knights[name]; k != nil {
			k.Projected = seq
		}
	}
}

// SubmitOrder validates a proposed order against state and, if accepted,
// queues it into the owning player's order slot — overwriting any order
// previously at slots beyond order_number, per the overwrite rule. On
// rejection, state is returned unchanged alongside the RejectionError.
func SubmitOrder(state *GameState, order *models.Order) (*GameState, error) {
	validated, err := Validate(order, state)
	if err != nil {
		return state, err
	}

	player := state.Players[validated.OwnerNickname]
	slot := validated.OrderNumber - 1

	stored := *validated
	player.Orders[slot] = &stored
	for i := slot + 1; i < 3; i++ {
		player.Orders[i] = nil
	}

	recomputeProjections(state, player)
	return state, nil
}

// SetReady flips a player's readiness flag. Orders already queued are left
// untouched; readiness only gates whether ExecuteRound will run.
func SetReady(state *GameState, nickname string, ready bool) (*GameState, error) {
	player := state.GetPlayer(nickname)
	if player == nil {
		return state, reject(RejectPlayerNotFound)
	}
	player.Ready = ready
	return state, nil
}
