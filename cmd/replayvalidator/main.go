// Command replayvalidator re-runs a recorded sequence of rounds through the
// engine and checks the result against a golden event log, optionally
// cross-checking recorded combat against an externally authored battle log.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/lukev/secrettoaster/internal/game"
	"github.com/lukev/secrettoaster/internal/models"
	"github.com/lukev/secrettoaster/internal/notation"
)

type roundFixture struct {
	Orders []models.Order `json:"orders"`
	Seed   uint64         `json:"seed"`
}

type sessionFixture struct {
	Hexes         map[int]*models.HexState  `json:"hexes"`
	Players       map[string]*models.Player `json:"players"`
	Knights       map[string]*models.Knight `json:"knights"`
	Alliances     map[string][]string       `json:"alliances"`
	PlayerOrder   []string                  `json:"playerOrder"`
	Rounds        []roundFixture            `json:"rounds"`
	GoldenEvents  []models.Event            `json:"goldenEvents,omitempty"`
	BattleLogHTML string                    `json:"battleLogHtml,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: replayvalidator <session_fixture.json>")
		os.Exit(1)
	}

	fixturePath := os.Args[1]
	fmt.Printf("Loading session fixture: %s\n", fixturePath)

	data, err := os.ReadFile(fixturePath)
	if err != nil {
		fmt.Printf("Failed to read fixture: %v\n", err)
		os.Exit(1)
	}

	var fx sessionFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		fmt.Printf("Failed to parse fixture: %v\n", err)
		os.Exit(1)
	}

	gs := &game.GameState{
		Board:       game.BuildBoard(),
		Status:      models.StatusActive,
		Hexes:       fx.Hexes,
		Players:     fx.Players,
		Knights:     fx.Knights,
		Alliances:   fx.Alliances,
		PlayerOrder: fx.PlayerOrder,
	}
	if gs.Hexes == nil {
		gs.Hexes = make(map[int]*models.HexState)
	}
	if gs.Players == nil {
		gs.Players = make(map[string]*models.Player)
	}
	if gs.Knights == nil {
		gs.Knights = make(map[string]*models.Knight)
	}
	if gs.Alliances == nil {
		gs.Alliances = make(map[string][]string)
	}

	fmt.Printf("Replaying %d round(s)...\n", len(fx.Rounds))

	var allEvents []models.Event
	for i, rf := range fx.Rounds {
		for _, order := range rf.Orders {
			o := order
			if _, err := game.SubmitOrder(gs, &o); err != nil {
				fmt.Printf("\nround %d: order rejected: %v\n", i, err)
				os.Exit(1)
			}
		}
		for nickname := range gs.Players {
			if _, err := game.SetReady(gs, nickname, true); err != nil {
				fmt.Printf("\nround %d: SetReady %s failed: %v\n", i, nickname, err)
				os.Exit(1)
			}
		}

		next, events, executed := game.ExecuteRound(gs, rf.Seed)
		if !executed {
			fmt.Printf("\nround %d: did not execute (a player never readied up)\n", i)
			os.Exit(1)
		}
		gs = next
		allEvents = append(allEvents, events...)
	}

	fmt.Printf("✓ Replayed %d round(s), %d event(s) produced\n", len(fx.Rounds), len(allEvents))

	if fx.BattleLogHTML != "" {
		if err := crossCheckBattleLog(fx.BattleLogHTML, allEvents); err != nil {
			fmt.Printf("\n❌ Battle log cross-check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Battle log cross-checked against replayed events")
	}

	if fx.GoldenEvents != nil {
		if err := diffEvents(fx.GoldenEvents, allEvents); err != nil {
			fmt.Printf("\n❌ Event log diverged from golden fixture: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Event log matches golden fixture")
	}

	fmt.Println("\n✅ Replay validated")
}

// crossCheckBattleLog parses an externally recorded HTML battle log and
// checks that every BattleFought event's round count matches the number of
// dice exchanges recorded for that hex.
func crossCheckBattleLog(html string, events []models.Event) error {
	entries, err := notation.ParseBattleLog(html)
	if err != nil {
		return err
	}

	recordedRoundsByHex := make(map[int]int)
	for _, e := range entries {
		recordedRoundsByHex[e.Hex]++
	}

	for _, e := range events {
		if e.Type != models.EventBattleFought {
			continue
		}
		want, ok := recordedRoundsByHex[e.BattleFought.Hex]
		if !ok {
			continue // no external record for this hex; nothing to check
		}
		if got := len(e.BattleFought.Rounds); got != want {
			return fmt.Errorf("hex %d: battle log recorded %d round(s), replay produced %d", e.BattleFought.Hex, want, got)
		}
	}
	return nil
}

// diffEvents compares replayed events against a golden fixture, ignoring
// the ID field (host-stamped, not part of the pure core's output).
func diffEvents(golden, actual []models.Event) error {
	if len(golden) != len(actual) {
		return fmt.Errorf("expected %d events, got %d", len(golden), len(actual))
	}
	for i := range golden {
		g, a := golden[i], actual[i]
		g.ID, a.ID = "", ""
		if !reflect.DeepEqual(g, a) {
			return fmt.Errorf("event %d mismatch:\n  golden: %+v\n  actual: %+v", i, g, a)
		}
	}
	return nil
}
