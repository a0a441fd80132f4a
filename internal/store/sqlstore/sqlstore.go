// Package sqlstore keeps journal events in a SQLite table. Every query is
// scoped by the owner the store was opened for, so one database can hold
// several people's journals.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const (
	dateLayout           = "2006-01-02"
	currentSchemaVersion = 1
)

type Store struct {
	db    *sql.DB
	owner string
	log   zerolog.Logger
}

var _ store.EventStore = (*Store)(nil)

// Open creates or opens the database at path and applies the schema.
func Open(path, owner string, log zerolog.Logger) (*Store, error) {
	if owner == "" {
		return nil, errors.New("sqlstore: empty owner")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, owner: owner, log: log}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Owner is the owner id all queries are scoped to.
func (s *Store) Owner() string { return s.owner }

func (s *Store) List(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, date, start_time, duration, location, completed
		FROM events
		WHERE owner_id = ?
		ORDER BY date ASC, start_time ASC, created_at ASC, id ASC
	`, s.owner)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", s.owner).Msg("failed to list events")
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var (
			ev        model.Event
			date      string
			completed int
		)
		if err := rows.Scan(&ev.ID, &ev.Title, &date, &ev.StartTime, &ev.Duration, &ev.Location, &completed); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Date, err = time.ParseInLocation(dateLayout, date, time.Local)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", ev.ID).Msg("unreadable event date")
			return nil, fmt.Errorf("event %s: bad date %q", ev.ID, date)
		}
		ev.Completed = completed != 0
		ev.OwnerID = s.owner
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *Store) Add(ctx context.Context, ev model.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, owner_id, title, date, start_time, duration, location, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, s.owner, ev.Title, ev.DateString(), ev.StartTime, ev.Duration, ev.Location,
		boolToInt(ev.Completed), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("add %s: %w", ev.ID, store.ErrDuplicateID)
		}
		s.log.Error().Err(err).Str("event_id", ev.ID).Msg("failed to add event")
		return fmt.Errorf("add %s: %w", ev.ID, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, ev model.Event) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, date = ?, start_time = ?, duration = ?, location = ?, completed = ?
		WHERE id = ? AND owner_id = ?
	`, ev.Title, ev.DateString(), ev.StartTime, ev.Duration, ev.Location, boolToInt(ev.Completed),
		ev.ID, s.owner)
	if err != nil {
		s.log.Error().Err(err).Str("event_id", ev.ID).Msg("failed to update event")
		return fmt.Errorf("update %s: %w", ev.ID, err)
	}
	return expectOneRow(res, "update", ev.ID)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND owner_id = ?`, id, s.owner)
	if err != nil {
		s.log.Error().Err(err).Str("event_id", id).Msg("failed to delete event")
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return expectOneRow(res, "delete", id)
}

func expectOneRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, store.ErrNotFound)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema is idempotent; user_version records what has been applied.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
