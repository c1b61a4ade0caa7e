package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr, got %s", cfg.ListenAddr)
	}
	if cfg.Seed != nil {
		t.Errorf("expected nil seed by default, got %v", *cfg.Seed)
	}
}

func TestLoadParsesScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := `
listenAddr: ":9090"
seed: 42
alliances:
  - name: north
    members: [alice, bob]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.ListenAddr)
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Fatalf("expected seed 42, got %v", cfg.Seed)
	}
	if len(cfg.Alliances) != 1 || cfg.Alliances[0].Name != "north" {
		t.Fatalf("unexpected alliances: %+v", cfg.Alliances)
	}
	if len(cfg.Alliances[0].Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(cfg.Alliances[0].Members))
	}
}
