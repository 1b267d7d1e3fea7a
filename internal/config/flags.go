package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/kbloader/internal/flagx"
)

// parseFlags populates cfg from command-line flags found in args. Arguments
// that belong to other flag sets are filtered out first. Parse errors panic.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args,
		[]string{"-p", "-e", "-u", "-r", "-t", "-d", "-l"},
		"-s")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ProfilesFile, "p", cfg.ProfilesFile, "environment profiles file")
	fs.StringVar(&cfg.Environment, "e", cfg.Environment, "environment profile (test, prod)")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "user id")
	fs.StringVar(&cfg.ParentID, "r", cfg.ParentID, "parent folder id")
	phaseTimeout := fs.Int("t", int(cfg.PhaseTimeout.Seconds()), "per-phase timeout (in seconds)")
	fs.StringVar(&cfg.LedgerDSN, "d", cfg.LedgerDSN, "upload history database, empty to disable")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.ShowNoise, "s", cfg.ShowNoise, "show system files")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t only overrides when given; a JSON value may be finer than a second.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.PhaseTimeout = time.Duration(*phaseTimeout) * time.Second
		}
	})
}
