package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/store"
)

func openTestStore(t *testing.T, path, owner string) *Store {
	t.Helper()
	s, err := Open(path, owner, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testEvent(id string, day int, start string) model.Event {
	return model.Event{
		ID:        id,
		Title:     "Event " + id,
		Date:      time.Date(2026, 10, day, 0, 0, 0, 0, time.Local),
		StartTime: start,
		Duration:  45,
		Location:  "Library",
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path, "local", zerolog.Nop())
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}

	s := openTestStore(t, path, "local")
	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_RequiresOwner(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "journal.db"), "", zerolog.Nop())
	assert.Error(t, err)
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "journal.db"), "alice")

	require.NoError(t, s.Add(ctx, testEvent("b", 19, "09:00")))
	require.NoError(t, s.Add(ctx, testEvent("a", 18, "14:00")))
	require.NoError(t, s.Add(ctx, testEvent("c", 18, "08:30")))

	events, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{events[0].ID, events[1].ID, events[2].ID},
		"ordered by date then start time")
	assert.Equal(t, "alice", events[0].OwnerID)
	assert.Equal(t, "2026-10-18", events[0].DateString())
	assert.Equal(t, 45, events[0].Duration)

	updated := testEvent("a", 20, "16:00")
	updated.Completed = true
	require.NoError(t, s.Update(ctx, updated))

	events, err = s.List(ctx)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, "a", last.ID)
	assert.True(t, last.Completed)
	assert.Equal(t, "16:00", last.StartTime)

	require.NoError(t, s.Delete(ctx, "b"))
	events, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "journal.db"), "alice")
	require.NoError(t, s.Add(ctx, testEvent("a", 18, "09:00")))

	assert.ErrorIs(t, s.Add(ctx, testEvent("a", 18, "10:00")), store.ErrDuplicateID)
	assert.ErrorIs(t, s.Update(ctx, testEvent("zzz", 18, "10:00")), store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "zzz"), store.ErrNotFound)
}

func TestOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	alice := openTestStore(t, path, "alice")
	require.NoError(t, alice.Add(ctx, testEvent("a", 18, "09:00")))
	require.NoError(t, alice.Close())

	bob := openTestStore(t, path, "bob")
	events, err := bob.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.ErrorIs(t, bob.Delete(ctx, "a"), store.ErrNotFound, "bob cannot delete alice's event")
}
