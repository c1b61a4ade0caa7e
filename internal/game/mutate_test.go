package game

import (
	"testing"

	"github.com/lukev/secrettoaster/internal/models"
)

// TestRunRoundResolvesAttackOrderAndEmitsBattleEvents drives a full Attack
// order through runRound, not just mutateAttack in isolation: it checks
// that a round that queues an attack actually produces BattleFought,
// KnightEliminated, and HexCaptured events and leaves the resulting state
// consistent.
func TestRunRoundResolvesAttackOrderAndEmitsBattleEvents(t *testing.T) {
	s, aliceHome, _ := newTwoPlayerState(t)
	targetHex := firstNeighbor(t, s.Board, aliceHome)

	s.Hexes[targetHex].Owner = "bob"
	s.Hexes[targetHex].Troops["bob"] = 2
	s.Knights["bob-1"].Location = targetHex
	s.Knights["bob-1"].Projected = [3]int{targetHex, targetHex, targetHex}

	attackOrder := &models.Order{
		OrderNumber: 1, Kind: models.OrderAttack, KnightName: "alice-1",
		OwnerNickname: "alice", From: aliceHome, To: targetHex, Troops: 5,
	}
	if _, err := SubmitOrder(s, attackOrder); err != nil {
		t.Fatalf("submit attack order: %v", err)
	}
	if _, err := SetReady(s, "alice", true); err != nil {
		t.Fatalf("SetReady alice: %v", err)
	}
	if _, err := SetReady(s, "bob", true); err != nil {
		t.Fatalf("SetReady bob: %v", err)
	}

	// Attacker wins both rounds (6 vs 1), so bob's 2 troops fall without
	// alice losing any.
	next, events, executed := runRound(s, scriptedDraws(0), scriptedRolls(6, 1, 6, 1))
	if !executed {
		t.Fatalf("expected round to execute")
	}

	var battle *models.BattleFoughtEvent
	var eliminated []string
	var captured *models.HexCapturedEvent
	for _, e := range events {
		switch e.Type {
		case models.EventBattleFought:
			battle = e.BattleFought
		case models.EventKnightEliminated:
			eliminated = append(eliminated, e.KnightEliminated.Name)
		case models.EventHexCaptured:
			captured = e.HexCaptured
		}
	}

	if battle == nil {
		t.Fatalf("expected a BattleFought event, got %v", events)
	}
	if battle.Winner != sideAttacker {
		t.Errorf("expected attacker to win, got %s", battle.Winner)
	}
	if battle.AttackerTroopsRemaining != 5 {
		t.Errorf("expected attacker to keep all 5 troops, got %d", battle.AttackerTroopsRemaining)
	}
	if len(eliminated) != 1 || eliminated[0] != "bob-1" {
		t.Errorf("expected bob-1 eliminated, got %v", eliminated)
	}
	if captured == nil || captured.FromOwner != "bob" || captured.ToOwner != "alice" {
		t.Fatalf("expected hex captured from bob to alice, got %+v", captured)
	}

	if owner := next.Hexes[targetHex].Owner; owner != "alice" {
		t.Errorf("expected alice to own the target hex, got %s", owner)
	}
	if troops := next.Hexes[targetHex].Troops["alice"]; troops != 5 {
		t.Errorf("expected alice to hold 5 troops on the target hex, got %d", troops)
	}
	if next.Knights["bob-1"].Alive {
		t.Errorf("expected bob-1 to be dead")
	}
}

// TestRunRoundAttackCapturesUndefendedHexWithoutBattle exercises
// mutateAttack's degenerate branch: attacking a hex that's owned but
// carries no defender troops captures it outright with no battle trace.
func TestRunRoundAttackCapturesUndefendedHexWithoutBattle(t *testing.T) {
	s, aliceHome, _ := newTwoPlayerState(t)
	targetHex := firstNeighbor(t, s.Board, aliceHome)
	s.Hexes[targetHex].Owner = "bob"

	attackOrder := &models.Order{
		OrderNumber: 1, Kind: models.OrderAttack, KnightName: "alice-1",
		OwnerNickname: "alice", From: aliceHome, To: targetHex, Troops: 3,
	}
	if _, err := SubmitOrder(s, attackOrder); err != nil {
		t.Fatalf("submit attack order: %v", err)
	}
	if _, err := SetReady(s, "alice", true); err != nil {
		t.Fatalf("SetReady alice: %v", err)
	}
	if _, err := SetReady(s, "bob", true); err != nil {
		t.Fatalf("SetReady bob: %v", err)
	}

	next, events, executed := runRound(s, scriptedDraws(0), scriptedRolls())
	if !executed {
		t.Fatalf("expected round to execute")
	}
	for _, e := range events {
		if e.Type == models.EventBattleFought {
			t.Fatalf("expected no battle against an undefended hex, got %+v", e.BattleFought)
		}
	}
	if owner := next.Hexes[targetHex].Owner; owner != "alice" {
		t.Errorf("expected alice to capture the undefended hex outright, got %s", owner)
	}
	if troops := next.Hexes[targetHex].Troops["alice"]; troops != 3 {
		t.Errorf("expected alice's 3 attacking troops to land on the hex, got %d", troops)
	}
}
