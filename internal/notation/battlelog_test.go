package notation

import "testing"

const sampleLog = `
<table class="battle-log">
  <tr><th>hex</th><th>attacker</th><th>defender</th><th>rolls</th></tr>
  <tr><td class="hex">55</td><td class="attacker">alice</td><td class="defender">bob</td><td class="rolls">6-2</td></tr>
  <tr><td class="hex">55</td><td class="attacker">alice</td><td class="defender">bob</td><td class="rolls">5-3</td></tr>
</table>
`

func TestParseBattleLog(t *testing.T) {
	entries, err := ParseBattleLog(sampleLog)
	if err != nil {
		t.Fatalf("ParseBattleLog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Hex != 55 || entries[0].Attacker != "alice" || entries[0].Defender != "bob" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].AttackerRoll != 6 || entries[0].DefenderRoll != 2 {
		t.Errorf("unexpected rolls: %+v", entries[0])
	}
}

func TestParseBattleLogRejectsMalformedRolls(t *testing.T) {
	bad := `<table class="battle-log"><tr><td class="hex">1</td><td class="attacker">a</td><td class="defender">b</td><td class="rolls">oops</td></tr></table>`
	if _, err := ParseBattleLog(bad); err == nil {
		t.Errorf("expected an error for malformed rolls")
	}
}

func TestToDieSourceReplaysInOrder(t *testing.T) {
	entries, err := ParseBattleLog(sampleLog)
	if err != nil {
		t.Fatalf("ParseBattleLog: %v", err)
	}
	roll := ToDieSource(entries)
	want := []int{6, 2, 5, 3}
	for i, w := range want {
		if got := roll(); got != w {
			t.Errorf("roll %d: got %d, want %d", i, got, w)
		}
	}
}
