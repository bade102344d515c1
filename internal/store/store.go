// Package store persists finished meetings to a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Meeting is one recorded and summarized session.
type Meeting struct {
	ID         int64
	Title      string
	StartedAt  time.Time
	EndedAt    time.Time
	Transcript string
	Summary    string
	Model      string
	CreatedAt  time.Time
}

// Store wraps the meetings database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS meetings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	ended_at INTEGER NOT NULL,
	transcript TEXT NOT NULL,
	summary TEXT NOT NULL,
	model TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
`

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a meeting and returns its id.
func (s *Store) Save(ctx context.Context, m Meeting) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO meetings (title, started_at, ended_at, transcript, summary, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.Title, m.StartedAt.Unix(), m.EndedAt.Unix(), m.Transcript, m.Summary, m.Model, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert meeting: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("meeting id: %w", err)
	}
	return id, nil
}

// Get returns one meeting by id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Meeting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, started_at, ended_at, transcript, summary, model, created_at
		FROM meetings
		WHERE id = ?
	`, id)

	m, err := scanMeeting(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan meeting: %w", err)
	}
	return m, nil
}

// Recent returns up to limit meetings, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, started_at, ended_at, transcript, summary, model, created_at
		FROM meetings
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, *m)
	}
	return meetings, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row scanner) (*Meeting, error) {
	var m Meeting
	var started, ended, created int64
	if err := row.Scan(&m.ID, &m.Title, &started, &ended, &m.Transcript, &m.Summary, &m.Model, &created); err != nil {
		return nil, err
	}
	m.StartedAt = time.Unix(started, 0)
	m.EndedAt = time.Unix(ended, 0)
	m.CreatedAt = time.Unix(created, 0)
	return &m, nil
}
