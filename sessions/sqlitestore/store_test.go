package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-bucket-browser/sessions"
	"github.com/jrsteele09/go-bucket-browser/sessions/sqlitestore"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func openTestDB(t *testing.T, clock *fakeClock) *sqlitestore.DB {
	t.Helper()

	db, err := sqlitestore.Open(context.Background(), filepath.Join(t.TempDir(), "sessions.db"), sqlitestore.WithNowTime(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBucketRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	db := openTestDB(t, clock)
	states := db.Bucket("states")

	require.NoError(t, states.Put(ctx, "abc", []byte("pending"), 10*time.Minute))
	value, err := states.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "pending", string(value))

	// Overwrite refreshes value and TTL
	require.NoError(t, states.Put(ctx, "abc", []byte("again"), time.Minute))
	value, err = states.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "again", string(value))

	require.NoError(t, states.Delete(ctx, "abc"))
	_, err = states.Get(ctx, "abc")
	require.ErrorIs(t, err, sessions.ErrNotFound)
	require.NoError(t, states.Delete(ctx, "abc"))
}

func TestBucketsAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, &fakeClock{now: time.Now()})

	require.NoError(t, db.Bucket("states").Put(ctx, "same-key", []byte("state"), time.Minute))
	_, err := db.Bucket("sessions").Get(ctx, "same-key")
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestExpiredEntriesAreNotReturned(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	db := openTestDB(t, clock)
	store := db.Bucket("sessions")

	require.NoError(t, store.Put(ctx, "s1", []byte("{}"), time.Hour))
	clock.now = clock.now.Add(time.Hour)

	_, err := store.Get(ctx, "s1")
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	db := openTestDB(t, clock)
	store := db.Bucket("sessions")

	require.NoError(t, store.Put(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, store.Put(ctx, "long", []byte("2"), time.Hour))

	removed, err := db.PurgeExpired(ctx, clock.now.Add(2*time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, err = store.Get(ctx, "long")
	require.NoError(t, err)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlitestore.Open(context.Background(), " ")
	require.Error(t, err)
}
