// Package store defines the persistence boundary for journal events.
// Backends live in subpackages: jsonstore keeps everything in one local
// file, sqlstore keeps rows in a SQLite table scoped by owner.
package store

import (
	"context"
	"errors"

	"github.com/idilsaglam/journal/internal/model"
)

var (
	ErrNotFound    = errors.New("event not found")
	ErrDuplicateID = errors.New("event id already exists")
)

// EventStore is what the journal needs from a backend.
type EventStore interface {
	List(ctx context.Context) ([]model.Event, error)
	Add(ctx context.Context, ev model.Event) error
	Update(ctx context.Context, ev model.Event) error
	Delete(ctx context.Context, id string) error
	Close() error
}
