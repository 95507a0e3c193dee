// Package store persists captured recordings in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"mocap-retarget/internal/capture"
	"mocap-retarget/internal/skeleton"
)

//go:embed schema.sql
var schema string

var (
	ErrNotFound      = errors.New("store: recording not found")
	ErrAlreadyExists = errors.New("store: recording already exists")
)

// RecordingInfo summarises one stored recording.
type RecordingInfo struct {
	Name       string
	FrameCount int
	CreatedAt  time.Time
}

// Store persists recordings in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// nowFunc is replaced in tests.
var nowFunc = time.Now

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) a SQLite recording store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRecording stores frames under name in a single transaction.
func (s *Store) SaveRecording(ctx context.Context, name string, frames []skeleton.Frame) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("store: recording name is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO recordings (name, frame_count, created_at) VALUES (?, ?, ?)`,
		name, len(frames), toMillis(nowFunc()),
	); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("store: insert recording %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO recording_frames (recording, seq, frame) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range frames {
		data, encErr := capture.EncodeFrame(f)
		if encErr != nil {
			err = fmt.Errorf("store: encode frame %d: %w", i, encErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, name, i, data); err != nil {
			return fmt.Errorf("store: insert frame %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// LoadRecording returns the frames of name in capture order.
func (s *Store) LoadRecording(ctx context.Context, name string) ([]skeleton.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var count int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT frame_count FROM recordings WHERE name = ?`, name).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get recording %s: %w", name, err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT frame FROM recording_frames WHERE recording = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("store: query frames: %w", err)
	}
	defer rows.Close()

	frames := make([]skeleton.Frame, 0, count)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("store: scan frame: %w", err)
		}
		f, err := capture.DecodeFrame(data)
		if err != nil {
			return nil, fmt.Errorf("store: decode frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate frames: %w", err)
	}
	return frames, nil
}

// ListRecordings returns every stored recording, newest first.
func (s *Store) ListRecordings(ctx context.Context) ([]RecordingInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, frame_count, created_at FROM recordings ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("store: list recordings: %w", err)
	}
	defer rows.Close()

	var out []RecordingInfo
	for rows.Next() {
		var (
			info      RecordingInfo
			createdAt int64
		)
		if err := rows.Scan(&info.Name, &info.FrameCount, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan recording: %w", err)
		}
		info.CreatedAt = fromMillis(createdAt)
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteRecording removes name and its frames.
func (s *Store) DeleteRecording(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM recordings WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete recording %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete recording %s: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
