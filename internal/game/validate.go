package game

import "github.com/lukev/secrettoaster/internal/models"

// Validate checks a proposed order against state and returns it unchanged
// on success, or a *RejectionError on the first failing check. Checks run
// in the exact order documented in spec.md so that layered failures
// produce a stable, testable code.
func Validate(order *models.Order, state *GameState) (*models.Order, error) {
	if order.OrderNumber < 1 || order.OrderNumber > 3 {
		return nil, reject(RejectInvalidOrderNumber)
	}

	player := state.GetPlayer(order.OwnerNickname)
	if player == nil {
		return nil, reject(RejectPlayerNotFound)
	}

	knight, ok := state.Knights[order.KnightName]
	if !ok {
		return nil, reject(RejectKnightNotFound)
	}
	if knight.Owner != order.OwnerNickname {
		return nil, reject(RejectKnightNotOwned)
	}

	if !knight.Alive {
		return nil, reject(RejectKnightDead)
	}

	if !state.Board.IsValidIndex(order.From) || !state.Board.IsValidIndex(order.To) {
		return nil, reject(RejectHexNotFound)
	}

	if order.From != projectedBefore(player, knight, order.OrderNumber) {
		return nil, reject(RejectFromMismatch)
	}

	switch order.Kind {
	case models.OrderFortify:
		if order.To != order.From {
			return nil, reject(RejectFortifyDestinationInvalid)
		}
	case models.OrderPromote:
		if order.To != order.From {
			return nil, reject(RejectPromoteDestinationInvalid)
		}
		if state.troopsOn(order.From, order.OwnerNickname) < 100 {
			return nil, reject(RejectPromoteInsufficientTroops)
		}
	case models.OrderMove, models.OrderAttack:
		if !state.Board.IsNeighbor(order.From, order.To) {
			return nil, reject(RejectNotNeighbor)
		}
		if order.Troops <= 0 {
			return nil, reject(RejectInvalidTroopCount)
		}
		if state.troopsOn(order.From, order.OwnerNickname) < order.Troops {
			return nil, reject(RejectInsufficientTroops)
		}
		if order.Kind == models.OrderAttack {
			target := state.Hexes[order.To]
			if target == nil || target.Owner == "" || target.Owner == order.OwnerNickname {
				return nil, reject(RejectAttackTargetNotEnemy)
			}
		}
	}

	return order, nil
}
