// Package notation parses externally authored battle logs — HTML exports
// from a scripting tool or forum post — into per-round dice entries, which
// can be replayed as a die source through game.ResolveBattle or converted
// into the engine's battle trace type.
package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lukev/secrettoaster/internal/models"
)

// BattleLogEntry is one parsed row: a single die-roll exchange between an
// attacker and a defender over a named hex.
type BattleLogEntry struct {
	Hex          int
	Attacker     string
	Defender     string
	AttackerRoll int
	DefenderRoll int
}

// ParseBattleLog reads an HTML document containing a table with the class
// "battle-log" — one <tr> per round, columns hex/attacker/defender/rolls —
// and returns the parsed entries in document order.
//
// Expected row shape:
//
//	<tr><td class="hex">55</td><td class="attacker">alice</td>
//	    <td class="defender">bob</td><td class="rolls">4-2</td></tr>
func ParseBattleLog(html string) ([]BattleLogEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("notation: parsing battle log: %w", err)
	}

	var entries []BattleLogEntry
	var rowErr error
	doc.Find("table.battle-log tr").Each(func(i int, row *goquery.Selection) {
		if rowErr != nil {
			return
		}
		if row.Find("td").Length() == 0 {
			return // header row
		}
		entry, err := parseRow(row)
		if err != nil {
			rowErr = fmt.Errorf("notation: row %d: %w", i, err)
			return
		}
		entries = append(entries, entry)
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return entries, nil
}

func parseRow(row *goquery.Selection) (BattleLogEntry, error) {
	hexText := strings.TrimSpace(row.Find("td.hex").First().Text())
	hex, err := strconv.Atoi(hexText)
	if err != nil {
		return BattleLogEntry{}, fmt.Errorf("invalid hex %q: %w", hexText, err)
	}

	attacker := strings.TrimSpace(row.Find("td.attacker").First().Text())
	defender := strings.TrimSpace(row.Find("td.defender").First().Text())
	if attacker == "" || defender == "" {
		return BattleLogEntry{}, fmt.Errorf("missing attacker or defender")
	}

	rollsText := strings.TrimSpace(row.Find("td.rolls").First().Text())
	parts := strings.SplitN(rollsText, "-", 2)
	if len(parts) != 2 {
		return BattleLogEntry{}, fmt.Errorf("invalid rolls %q, expected \"A-D\"", rollsText)
	}
	attackerRoll, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return BattleLogEntry{}, fmt.Errorf("invalid attacker roll %q: %w", parts[0], err)
	}
	defenderRoll, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return BattleLogEntry{}, fmt.Errorf("invalid defender roll %q: %w", parts[1], err)
	}

	return BattleLogEntry{
		Hex:          hex,
		Attacker:     attacker,
		Defender:     defender,
		AttackerRoll: attackerRoll,
		DefenderRoll: defenderRoll,
	}, nil
}

// ToDieSource replays a parsed battle log's rolls in order as a DieSource,
// letting a recorded battle be re-run deterministically through
// game.ResolveBattle instead of a live RNG.
func ToDieSource(entries []BattleLogEntry) func() int {
	var rolls []int
	for _, e := range entries {
		rolls = append(rolls, e.AttackerRoll, e.DefenderRoll)
	}
	i := 0
	return func() int {
		if i >= len(rolls) {
			return 0
		}
		v := rolls[i]
		i++
		return v
	}
}

// BattleRoundTraces converts parsed log entries directly into the engine's
// own trace type, for hosts that just want to display history without
// re-running combat.
func BattleRoundTraces(entries []BattleLogEntry) []models.BattleRoundTrace {
	traces := make([]models.BattleRoundTrace, 0, len(entries))
	for _, e := range entries {
		traces = append(traces, models.BattleRoundTrace{
			AttackerRoll: e.AttackerRoll,
			DefenderRoll: e.DefenderRoll,
		})
	}
	return traces
}
