package game

import (
	"strconv"

	"github.com/lukev/secrettoaster/internal/models"
)

// applyOrder dispatches a single validated order to the matching mutator,
// appending whatever events it produces (OrderIssued always; for Attack,
// also BattleFought/KnightEliminated/HexCaptured as appropriate) to log.
// The order must already have passed Validate — applyOrder assumes a
// legal order and panics on any precondition it cannot satisfy.
func applyOrder(state *GameState, order *models.Order, round int, roll DieSource, log *[]models.Event) {
	state.appendEvent(log, round, models.Event{
		Type:        models.EventOrderIssued,
		OrderIssued: &models.OrderIssuedEvent{Player: order.OwnerNickname, Order: *order},
	})

	switch order.Kind {
	case models.OrderMove:
		mutateMove(state, order)
	case models.OrderAttack:
		mutateAttack(state, order, round, roll, log)
	case models.OrderFortify:
		mutateFortify(state, order)
	case models.OrderPromote:
		mutatePromote(state, order)
	}
}

func mutateMove(state *GameState, order *models.Order) {
	from := state.Hexes[order.From]
	to := state.Hexes[order.To]
	if from == nil || to == nil {
		panicPrecondition("move references a hex missing from state")
	}
	if from.Troops[order.OwnerNickname] < order.Troops {
		panicPrecondition("move would make troop count negative")
	}

	from.Troops[order.OwnerNickname] -= order.Troops
	if from.Troops[order.OwnerNickname] == 0 {
		delete(from.Troops, order.OwnerNickname)
	}
	to.Troops[order.OwnerNickname] += order.Troops

	if to.Owner == "" || onlyOwnerTroops(to, order.OwnerNickname) {
		to.Owner = order.OwnerNickname
	}

	if knight := state.Knights[order.KnightName]; knight != nil {
		knight.Location = order.To
	}
}

// onlyOwnerTroops reports whether nickname is the sole player with troops
// present on hs.
func onlyOwnerTroops(hs *models.HexState, nickname string) bool {
	for owner, count := range hs.Troops {
		if owner != nickname && count > 0 {
			return false
		}
	}
	return true
}

func mutateAttack(state *GameState, order *models.Order, round int, roll DieSource, log *[]models.Event) {
	from := state.Hexes[order.From]
	to := state.Hexes[order.To]
	if from == nil || to == nil {
		panicPrecondition("attack references a hex missing from state")
	}
	if from.Troops[order.OwnerNickname] < order.Troops {
		panicPrecondition("attack would make troop count negative")
	}

	defender := to.Owner
	from.Troops[order.OwnerNickname] -= order.Troops
	if from.Troops[order.OwnerNickname] == 0 {
		delete(from.Troops, order.OwnerNickname)
	}

	defenderTroops := to.Troops[defender]
	if defender == "" || defenderTroops <= 0 {
		// Degenerate state: hex is owned but carries no defender troops.
		// Capture outright; no battle to trace.
		fromOwner := to.Owner
		to.Owner = order.OwnerNickname
		to.Troops[order.OwnerNickname] += order.Troops
		state.appendEvent(log, round, models.Event{
			Type: models.EventHexCaptured,
			HexCaptured: &models.HexCapturedEvent{
				Hex:       order.To,
				FromOwner: fromOwner,
				ToOwner:   order.OwnerNickname,
			},
		})
		return
	}

	result := ResolveBattle(BattleInputs{
		AttackerNickname:     order.OwnerNickname,
		DefenderNickname:     defender,
		AttackerTroops:       order.Troops,
		DefenderTroops:       defenderTroops,
		AttackerAllianceSize: state.AllianceSize(order.OwnerNickname),
		DefenderAllianceSize: state.AllianceSize(defender),
		AttackerKnights:      state.knightsAt(order.To, order.OwnerNickname),
		DefenderKnights:      state.knightsAt(order.To, defender),
	}, roll)

	state.appendEvent(log, round, models.Event{
		Type: models.EventBattleFought,
		BattleFought: &models.BattleFoughtEvent{
			Hex:                     order.To,
			Attacker:                order.OwnerNickname,
			Defender:                defender,
			Winner:                  result.Winner,
			AttackerTroopsRemaining: result.AttackerTroopsRemaining,
			DefenderTroopsRemaining: result.DefenderTroopsRemaining,
			Rounds:                  result.Rounds,
		},
	})

	delete(to.Troops, defender)
	if result.Winner == sideAttacker {
		to.Troops[order.OwnerNickname] += result.AttackerTroopsRemaining
	} else {
		to.Troops[defender] = result.DefenderTroopsRemaining
	}

	for _, name := range result.EliminatedKnights {
		if k := state.Knights[name]; k != nil {
			k.Alive = false
		}
		state.appendEvent(log, round, models.Event{
			Type:             models.EventKnightEliminated,
			KnightEliminated: &models.KnightEliminatedEvent{Name: name},
		})
	}

	if to.Owner != result.NewOwner {
		fromOwner := to.Owner
		to.Owner = result.NewOwner
		state.appendEvent(log, round, models.Event{
			Type: models.EventHexCaptured,
			HexCaptured: &models.HexCapturedEvent{
				Hex:       order.To,
				FromOwner: fromOwner,
				ToOwner:   result.NewOwner,
			},
		})
	}
}

// fortifyTroops is the fixed troop bonus a Fortify order adds.
const fortifyTroops = 200

// promoteCost is the troop count a Promote order spends to raise a new
// knight.
const promoteCost = 100

func mutateFortify(state *GameState, order *models.Order) {
	hs := state.Hexes[order.From]
	if hs == nil {
		panicPrecondition("fortify references a hex missing from state")
	}
	hs.Troops[order.OwnerNickname] += fortifyTroops
}

func mutatePromote(state *GameState, order *models.Order) {
	hs := state.Hexes[order.From]
	if hs == nil {
		panicPrecondition("promote references a hex missing from state")
	}
	if hs.Troops[order.OwnerNickname] < promoteCost {
		panicPrecondition("promote would make troop count negative")
	}
	hs.Troops[order.OwnerNickname] -= promoteCost

	newName := nextKnightName(state, order.OwnerNickname)
	if _, err := state.AddKnight(order.OwnerNickname, newName, order.From); err != nil {
		panicPrecondition(err.Error())
	}
}

// nextKnightName mints a fresh, collision-free knight name for a promoted
// unit. Hosts that care about display names can rename after the fact;
// the engine only needs a stable unique key.
func nextKnightName(state *GameState, nickname string) string {
	for i := 1; ; i++ {
		candidate := nickname + "-promoted-" + strconv.Itoa(i)
		if _, exists := state.Knights[candidate]; !exists {
			return candidate
		}
	}
}
