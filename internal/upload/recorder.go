package upload

import (
	"context"
	"time"

	"github.com/dmitrijs2005/kbloader/internal/catalog"
)

// Result is the outcome of one entry's upload attempt.
type Result struct {
	Environment string
	Path        string
	FileName    string
	Fingerprint string
	Size        int64
	RemoteKey   string
	State       catalog.State
	Reason      string
	At          time.Time
}

// Recorder persists terminal upload results.
type Recorder interface {
	RecordResult(ctx context.Context, r Result) error
}
