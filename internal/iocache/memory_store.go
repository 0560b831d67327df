package iocache

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/schema"
)

// memoryEntry is a single cached response held in process memory.
type memoryEntry struct {
	value     []byte
	version   int
	timestamp int64
}

// MemoryStore is a process-local CacheStore used when no database backend is
// configured. It keeps repeated page fetches within a single run from hitting
// the API again, but nothing survives process exit.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

var _ contract.CacheStore = &MemoryStore{} // Compile-time check

// NewMemoryStore returns an empty in-memory cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memoryEntry)}
}

// Get retrieves a value by key. Missing keys report sql.ErrNoRows so callers
// treat memory and SQL stores uniformly.
func (ms *MemoryStore) Get(key string) ([]byte, int, int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	entry, ok := ms.data[key]
	if !ok {
		return nil, 0, 0, sql.ErrNoRows
	}
	return entry.value, entry.version, entry.timestamp, nil
}

// Set inserts or replaces a key/value pair.
func (ms *MemoryStore) Set(key string, value []byte, version int, timestamp int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.data == nil {
		return nil // closed
	}
	ms.data[key] = memoryEntry{value: value, version: version, timestamp: timestamp}
	return nil
}

// GetStatus reports entry counts and timestamp bounds for the held entries.
func (ms *MemoryStore) GetStatus() (schema.CacheStatus, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	status := schema.CacheStatus{
		Backend:      "memory",
		Connected:    true,
		TotalEntries: int64(len(ms.data)),
	}

	var oldest, newest int64
	for _, entry := range ms.data {
		if oldest == 0 || entry.timestamp < oldest {
			oldest = entry.timestamp
		}
		if entry.timestamp > newest {
			newest = entry.timestamp
		}
		status.TableSizeBytes += int64(len(entry.value))
	}
	if newest != 0 {
		status.LastEntryTime = time.Unix(newest, 0)
		status.OldestEntryTime = time.Unix(oldest, 0)
	}
	return status, nil
}

// Close discards all held entries.
func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.data = nil
	return nil
}
