package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kbloader/internal/dbx"
)

const selectColumns = `SELECT id, environment, path, file_name, fingerprint, size, remote_key, state, reason, created_at FROM uploads`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Record(ctx context.Context, rec Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO uploads (environment, path, file_name, fingerprint, size, remote_key, state, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Environment, rec.Path, rec.FileName, rec.Fingerprint, rec.Size, rec.RemoteKey, rec.State, rec.Reason,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to record upload of %s: %w", rec.Path, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read upload id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Record, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, selectColumns+` ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, selectColumns+` ORDER BY id DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	recs, err := dbx.Collect(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return recs, nil
}

func (r *SQLiteRepository) ListByFingerprint(ctx context.Context, fingerprint string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE fingerprint = ? ORDER BY id DESC`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads of %s: %w", fingerprint, err)
	}

	recs, err := dbx.Collect(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads of %s: %w", fingerprint, err)
	}
	return recs, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec     Record
		created string
	)
	if err := rows.Scan(&rec.ID, &rec.Environment, &rec.Path, &rec.FileName, &rec.Fingerprint,
		&rec.Size, &rec.RemoteKey, &rec.State, &rec.Reason, &created); err != nil {
		return Record{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Record{}, fmt.Errorf("bad created_at %q: %w", created, err)
	}
	rec.CreatedAt = t
	return rec, nil
}
