// Package config loads host-level scenario overrides: starting alliances,
// a fixed round seed for reproducible demos, and listen address. Everything
// here is optional — Default() is a valid, fully-default config.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AllianceConfig names an alliance and the nicknames seated into it when
// they join a game without choosing an alliance themselves.
type AllianceConfig struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// Config is the top-level scenario file shape.
type Config struct {
	ListenAddr string           `yaml:"listenAddr"`
	Seed       *uint64          `yaml:"seed,omitempty"`
	Alliances  []AllianceConfig `yaml:"alliances,omitempty"`
}

// Default returns the configuration a host gets with no scenario file.
func Default() Config {
	return Config{ListenAddr: ":8080"}
}

// AllianceFor returns the alliance name a scenario pre-seats nickname into,
// or "" if the scenario doesn't mention nickname.
func (c Config) AllianceFor(nickname string) string {
	for _, a := range c.Alliances {
		for _, member := range a.Members {
			if member == nickname {
				return a.Name
			}
		}
	}
	return ""
}

// Load reads and parses a scenario file at path. A missing file is not an
// error: Load returns Default() unchanged so hosts can run with no config
// present.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	return cfg, nil
}
