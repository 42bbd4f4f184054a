package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dasha/internal/ir"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}

func TestTimeline_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	tl := testTimeline(0)

	sysHash, err := s.PutSystem(ctx, testSystem("Vimsottari"))
	require.NoError(t, err)

	keyHash, err := s.PutTimeline(ctx, tl, sysHash)
	require.NoError(t, err)
	want, err := tl.Key.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, keyHash)

	got, ok, err := s.GetTimeline(ctx, tl.Key, sysHash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tl, got)

	// Byte-identical canonical form after the round trip.
	a, err := ir.MarshalCanonical(tl.Value())
	require.NoError(t, err)
	b, err := ir.MarshalCanonical(got.Value())
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestTimeline_Misses(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	tl := testTimeline(0)

	_, ok, err := s.GetTimeline(ctx, tl.Key, "h")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.PutTimeline(ctx, tl, "old")
	require.NoError(t, err)

	// A redefined system invalidates the entry.
	_, ok, err = s.GetTimeline(ctx, tl.Key, "new")
	require.NoError(t, err)
	assert.False(t, ok)

	// Different depth, different key.
	_, ok, err = s.GetTimeline(ctx, testTimeline(1).Key, "old")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTimeline_Replace(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	tl := testTimeline(0)

	_, err := s.PutTimeline(ctx, tl, "old")
	require.NoError(t, err)

	tl.Periods = tl.Periods[:1]
	_, err = s.PutTimeline(ctx, tl, "new")
	require.NoError(t, err)

	got, ok, err := s.GetTimeline(ctx, tl.Key, "new")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Periods, 1)

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM periods").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestTimeline_EmptyPeriods(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	tl := testTimeline(0)
	tl.Periods = nil

	_, err := s.PutTimeline(ctx, tl, "h")
	require.NoError(t, err)
	got, ok, err := s.GetTimeline(ctx, tl.Key, "h")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, got.Periods)
}

func TestListAndPurge(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	for _, depth := range []int64{0, 1} {
		_, err := s.PutTimeline(ctx, testTimeline(depth), "h")
		require.NoError(t, err)
	}
	other := testTimeline(0)
	other.Key.System = "YOGINI"
	_, err := s.PutTimeline(ctx, other, "h")
	require.NoError(t, err)

	entries, err := s.ListTimelines(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "VIMSOTTARI", entries[0].System)
	assert.Equal(t, "YOGINI", entries[2].System)
	assert.Equal(t, int64(2), entries[2].PeriodCount)

	n, err := s.PurgeSystem(ctx, "VIMSOTTARI")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var periods int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM periods").Scan(&periods))
	assert.Equal(t, 2, periods)
}

func TestSystem_PutGet(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, _, ok, err := s.GetSystem(ctx, "VIMSOTTARI")
	require.NoError(t, err)
	assert.False(t, ok)

	h1, err := s.PutSystem(ctx, testSystem("Vimsottari"))
	require.NoError(t, err)
	h2, err := s.PutSystem(ctx, testSystem("Renamed"))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	rec, hash, ok, err := s.GetSystem(ctx, "VIMSOTTARI")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, h2, hash)
	assert.Equal(t, testSystem("Renamed"), rec)
}

func TestSystem_BalanceOffsetInvalidatesTimeline(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	tl := testTimeline(0)

	before := testSystem("Vimsottari")
	oldHash, err := s.PutSystem(ctx, before)
	require.NoError(t, err)
	_, err = s.PutTimeline(ctx, tl, oldHash)
	require.NoError(t, err)

	after := testSystem("Vimsottari")
	after.Balance.Offset = 1
	newHash, err := s.PutSystem(ctx, after)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, newHash)

	_, ok, err := s.GetTimeline(ctx, tl.Key, newHash)
	require.NoError(t, err)
	assert.False(t, ok)

	rec, _, ok, err := s.GetSystem(ctx, "VIMSOTTARI")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.Balance.Offset)
}

func TestOpen_PrunesStaleVersions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	sysHash, err := s.PutSystem(ctx, testSystem("Vimsottari"))
	require.NoError(t, err)
	_, err = s.PutTimeline(ctx, testTimeline(0), sysHash)
	require.NoError(t, err)
	_, err = s.PutTimeline(ctx, testTimeline(1), sysHash)
	require.NoError(t, err)

	n, err := s.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "current rows are kept")

	_, err = s.db.Exec(`UPDATE timelines SET engine_version = '0.0.0' WHERE depth = 0`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.GetTimeline(ctx, testTimeline(0).Key, sysHash)
	require.NoError(t, err)
	assert.False(t, ok, "stale timeline served")

	_, ok, err = s.GetTimeline(ctx, testTimeline(1).Key, sysHash)
	require.NoError(t, err)
	assert.True(t, ok)

	var orphans int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM periods p
		LEFT JOIN timelines t ON t.key_hash = p.key_hash WHERE t.key_hash IS NULL`).Scan(&orphans))
	assert.Zero(t, orphans)
}
