package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		allowed   []string
		boolFlags []string
		want      []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "long flag with equals",
			args:    []string{"-config=alt.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end is kept as-is",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "flag followed by another flag",
			args:    []string{"-c", "-notvalue"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:      "boolean flag does not swallow next argument",
			args:      []string{"-s", "positional", "-e", "prod"},
			allowed:   []string{"-e"},
			boolFlags: []string{"-s"},
			want:      []string{"-s", "-e", "prod"},
		},
		{
			name:      "boolean flag with explicit value",
			args:      []string{"-s=false"},
			boolFlags: []string{"-s"},
			want:      []string{"-s=false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed, tt.boolFlags...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "a.json", ConfigPath([]string{"-c", "a.json"}))
	assert.Equal(t, "b.json", ConfigPath([]string{"-e", "prod", "-config=b.json"}))
	assert.Equal(t, "", ConfigPath([]string{"-e", "prod"}))
}
