package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-p", "p.yaml", "-e", "prod", "-u", "113776", "-r", "123662", "-t", "5", "-d", "", "-l", "debug", "-s"},
			expected: &Config{ProfilesFile: "p.yaml", Environment: "prod", UserID: "113776", ParentID: "123662",
				PhaseTimeout: 5 * time.Second, LedgerDSN: "", LogLevel: "debug", ShowNoise: true},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "x.json", "-e", "prod", "-z", "1"},
			expected: &Config{Environment: "prod"},
		},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_KeepsSubSecondTimeoutWithoutFlag(t *testing.T) {
	for _, d := range []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond} {
		cfg := &Config{PhaseTimeout: d}
		parseFlags(cfg, []string{"-e", "prod"})
		assert.Equal(t, d, cfg.PhaseTimeout)
	}

	cfg := &Config{PhaseTimeout: 500 * time.Millisecond}
	parseFlags(cfg, []string{"-t", "3"})
	assert.Equal(t, 3*time.Second, cfg.PhaseTimeout)
}
