package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/kbloader/internal/dbx"
	"github.com/dmitrijs2005/kbloader/internal/filex"
	"github.com/dmitrijs2005/kbloader/internal/ledger/migrations"
	"github.com/dmitrijs2005/kbloader/internal/upload"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Store is an open ledger database.
type Store struct {
	*SQLiteRepository
	db *sql.DB
}

// RunMigrations brings the schema of db up to date using the embedded
// migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to migrate ledger: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; one connection also keeps ":memory:" stable.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{SQLiteRepository: NewSQLiteRepository(db), db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Clear removes every record and restarts id numbering.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM uploads`); err != nil {
			return fmt.Errorf("failed to clear uploads: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'uploads'`); err != nil {
			return fmt.Errorf("failed to reset upload ids: %w", err)
		}
		return nil
	})
}

// RecordResult stores an upload outcome. It makes Store an upload.Recorder.
func (s *Store) RecordResult(ctx context.Context, r upload.Result) error {
	_, err := s.Record(ctx, Record{
		Environment: r.Environment,
		Path:        r.Path,
		FileName:    r.FileName,
		Fingerprint: r.Fingerprint,
		Size:        r.Size,
		RemoteKey:   r.RemoteKey,
		State:       string(r.State),
		Reason:      r.Reason,
		CreatedAt:   r.At,
	})
	return err
}

var _ upload.Recorder = (*Store)(nil)
