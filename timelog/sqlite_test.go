package timelog_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftworks/timeclock/timelog"
)

func TestSQLiteSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "time_entries.db")

	snap, err := timelog.OpenSQLiteSnapshot(path)
	require.NoError(t, err)

	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 1, 15, 17, 30, 0, 0, time.UTC)
	entries := []timelog.Entry{
		closedEntry("e1", "emp1", "Jane Doe", in, out, 8.5),
		openEntry("e2", "emp2", "John Roe", out),
	}
	require.NoError(t, snap.Save(entries))
	require.NoError(t, snap.Close())

	// Reopen and read back through a fresh handle.
	snap, err = timelog.OpenSQLiteSnapshot(path)
	require.NoError(t, err)
	defer snap.Close()

	got, err := snap.Load()
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestSQLiteSnapshotEmpty(t *testing.T) {
	snap, err := timelog.OpenSQLiteSnapshot(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	defer snap.Close()

	got, err := snap.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteSnapshotOverwrites(t *testing.T) {
	snap, err := timelog.OpenSQLiteSnapshot(":memory:")
	require.NoError(t, err)
	defer snap.Close()

	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, snap.Save([]timelog.Entry{openEntry("e1", "emp1", "Jane Doe", in)}))
	require.NoError(t, snap.Save([]timelog.Entry{
		openEntry("e1", "emp1", "Jane Doe", in),
		openEntry("e2", "emp2", "John Roe", in),
	}))

	got, err := snap.Load()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStoreOverSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "time_entries.db")

	snap, err := timelog.OpenSQLiteSnapshot(path)
	require.NoError(t, err)
	store := timelog.NewStore(snap, nil)

	in := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(openEntry("e1", "emp1", "Jane Doe", in)))
	require.NoError(t, store.Close())

	snap, err = timelog.OpenSQLiteSnapshot(path)
	require.NoError(t, err)
	reloaded := timelog.NewStore(snap, nil)
	defer reloaded.Close()

	require.Equal(t, 1, reloaded.Len())
	assert.True(t, reloaded.HasOpen("emp1"))
}
