package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/kbloader/internal/flagx"
	"github.com/dmitrijs2005/kbloader/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero values so that a partial file only
// overrides what it names.
type JsonConfig struct {
	ProfilesFile *string         `json:"profiles_file"`
	Environment  *string         `json:"environment"`
	UserID       *string         `json:"user_id"`
	ParentID     *string         `json:"parent_id"`
	PhaseTimeout *timex.Duration `json:"phase_timeout"`
	LedgerDSN    *string         `json:"ledger_dsn"`
	LogLevel     *string         `json:"log_level"`
	ShowNoise    *bool           `json:"show_noise"`
}

// parseJson overlays cfg with values from the file named by -c/-config in
// args. Without such a flag nothing happens. Read or decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setIf(&cfg.ProfilesFile, jc.ProfilesFile)
	setIf(&cfg.Environment, jc.Environment)
	setIf(&cfg.UserID, jc.UserID)
	setIf(&cfg.ParentID, jc.ParentID)
	setIf(&cfg.LedgerDSN, jc.LedgerDSN)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.ShowNoise, jc.ShowNoise)
	if jc.PhaseTimeout != nil {
		cfg.PhaseTimeout = jc.PhaseTimeout.Duration
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
