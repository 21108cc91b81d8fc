package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"PhotoDaily/internal/domain"
	"PhotoDaily/internal/ports"
)

const uploadsTable = "upload_attempts"

const schema = `CREATE TABLE IF NOT EXISTS upload_attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_date TEXT NOT NULL,
	surface TEXT NOT NULL,
	state TEXT NOT NULL,
	container_id TEXT NOT NULL DEFAULT '',
	media_id TEXT NOT NULL DEFAULT '',
	attempts INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
)`

// SQLiteHistory keeps an append-only log of surface uploads.
type SQLiteHistory struct {
	db *sql.DB
}

var _ ports.UploadHistory = (*SQLiteHistory)(nil)

// OpenSQLiteHistory opens (and creates) the history database at path.
func OpenSQLiteHistory(ctx context.Context, path string) (*SQLiteHistory, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}

	return &SQLiteHistory{db: db}, nil
}

// Close releases the database handle.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}

// Record appends one surface outcome.
func (h *SQLiteHistory) Record(ctx context.Context, rec domain.UploadRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args, err := sq.Insert(uploadsTable).
		Columns("post_date", "surface", "state", "container_id", "media_id", "attempts", "error", "created_at").
		Values(rec.PostDate, string(rec.Surface), string(rec.State), rec.ContainerID, rec.MediaID,
			rec.Attempts, rec.Error, createdAt.UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := h.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *SQLiteHistory) Recent(ctx context.Context, limit int) ([]domain.UploadRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := sq.Select("id", "post_date", "surface", "state", "container_id", "media_id", "attempts", "error", "created_at").
		From(uploadsTable).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var records []domain.UploadRecord
	for rows.Next() {
		var (
			rec              domain.UploadRecord
			surface, state   string
			createdAtEncoded string
		)
		if err := rows.Scan(&rec.ID, &rec.PostDate, &surface, &state, &rec.ContainerID, &rec.MediaID,
			&rec.Attempts, &rec.Error, &createdAtEncoded); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		rec.Surface = domain.Surface(surface)
		rec.State = domain.UploadState(state)
		if t, err := time.Parse(time.RFC3339, createdAtEncoded); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}
