package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the kbloader CLI.
type Config struct {
	ProfilesFile string
	Environment  string
	UserID       string
	ParentID     string
	PhaseTimeout time.Duration
	LedgerDSN    string
	LogLevel     string
	ShowNoise    bool
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ProfilesFile = "config.json"
	c.Environment = "test"
	c.PhaseTimeout = 60 * time.Second
	c.LedgerDSN = "kbloader.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
