package game

import "github.com/lukev/secrettoaster/internal/models"

// DieSource produces a uniform die roll in [1,6]. It is an injected
// capability rather than a global: tests supply a scripted sequence,
// production derives rolls from the same seeded stream the round executor
// uses for scheduling.
type DieSource func() int

// BattleInputs describes one contested hex at the moment combat begins.
type BattleInputs struct {
	AttackerNickname     string
	DefenderNickname     string
	AttackerTroops       int
	DefenderTroops       int
	AttackerAllianceSize int
	DefenderAllianceSize int
	AttackerKnights      []string
	DefenderKnights      []string
}

// BattleResult is the outcome of ResolveBattle: who won, what troops are
// left on each side, which knights were eliminated, and the round-by-round
// trace suitable for replay.
type BattleResult struct {
	Winner                  string
	AttackerTroopsRemaining int
	DefenderTroopsRemaining int
	EliminatedKnights       []string
	NewOwner                string
	Rounds                  []models.BattleRoundTrace
}

const (
	sideAttacker = "attacker"
	sideDefender = "defender"
)

// allianceBonus is the single place alliance size turns into a battle
// score bonus, per spec.md's design note: currently a direct pass-through,
// kept as one function so balance changes are a one-line edit.
func allianceBonus(allianceSize int) int {
	return allianceSize
}

// ResolveBattle runs combat on a single contested hex until one side is
// out of troops, rolling dice from roll. Ties go to the defender. It never
// errors: if both sides start at zero troops, the defender trivially wins
// with no rounds played.
func ResolveBattle(in BattleInputs, roll DieSource) BattleResult {
	attackerTroops := in.AttackerTroops
	defenderTroops := in.DefenderTroops
	var rounds []models.BattleRoundTrace

	for attackerTroops > 0 && defenderTroops > 0 {
		attackerRoll := roll()
		defenderRoll := roll()
		attackerScore := attackerRoll + allianceBonus(in.AttackerAllianceSize)
		defenderScore := defenderRoll + allianceBonus(in.DefenderAllianceSize)

		loser := sideAttacker
		if defenderScore >= attackerScore {
			attackerTroops--
		} else {
			loser = sideDefender
			defenderTroops--
		}

		rounds = append(rounds, models.BattleRoundTrace{
			AttackerRoll:            attackerRoll,
			DefenderRoll:            defenderRoll,
			AttackerScore:           attackerScore,
			DefenderScore:           defenderScore,
			Loser:                   loser,
			AttackerTroopsRemaining: attackerTroops,
			DefenderTroopsRemaining: defenderTroops,
		})
	}

	winner := sideDefender
	eliminated := in.AttackerKnights
	newOwner := in.DefenderNickname
	if attackerTroops > 0 {
		winner = sideAttacker
		eliminated = in.DefenderKnights
		newOwner = in.AttackerNickname
	}

	return BattleResult{
		Winner:                  winner,
		AttackerTroopsRemaining: attackerTroops,
		DefenderTroopsRemaining: defenderTroops,
		EliminatedKnights:       eliminated,
		NewOwner:                newOwner,
		Rounds:                  rounds,
	}
}
