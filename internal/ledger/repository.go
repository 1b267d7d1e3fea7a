package ledger

import (
	"context"
	"time"
)

// Record is one terminal upload attempt.
type Record struct {
	ID          int64
	Environment string
	Path        string
	FileName    string
	Fingerprint string
	Size        int64
	RemoteKey   string
	State       string
	Reason      string
	CreatedAt   time.Time
}

type Repository interface {
	Record(ctx context.Context, r Record) (int64, error)
	// List returns the newest records first. A limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]Record, error)
	ListByFingerprint(ctx context.Context, fingerprint string) ([]Record, error)
}
