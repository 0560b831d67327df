package iocache

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	now := time.Now().Unix()
	require.NoError(t, store.Set("key1", []byte("payload"), 1, now))

	value, version, ts, err := store.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, now, ts)

	// Overwrite replaces value and metadata
	require.NoError(t, store.Set("key1", []byte("updated"), 2, now+10))
	value, version, ts, err = store.Get("key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, now+10, ts)
}

func TestMemoryStoreStatus(t *testing.T) {
	store := NewMemoryStore()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "memory", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC).Unix()
	require.NoError(t, store.Set("a", []byte("aa"), 1, base))
	require.NoError(t, store.Set("b", []byte("bbbb"), 1, base+60))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.TotalEntries)
	assert.Equal(t, int64(6), status.TableSizeBytes)
	assert.Equal(t, time.Unix(base, 0), status.OldestEntryTime)
	assert.Equal(t, time.Unix(base+60, 0), status.LastEntryTime)
}

func TestMemoryStoreClose(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set("key1", []byte("payload"), 1, time.Now().Unix()))
	require.NoError(t, store.Close())

	_, _, _, err := store.Get("key1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Writes after close are dropped without error
	require.NoError(t, store.Set("key2", []byte("late"), 1, time.Now().Unix()))
	_, _, _, err = store.Get("key2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
