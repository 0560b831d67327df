package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/schema"
)

// responseTable is the name of the table for API response caching.
const responseTable = "response_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitCaching initializes the global cache manager with separate
// response-cache and run-history stores. Either backend can be empty
// to disable the corresponding store.
func InitCaching(cacheBackend schema.DatabaseBackend, cacheConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var err error

		// Initialize response cache store only if backend is configured.
		// NoneBackend still gets a process-local memory store so repeated
		// page fetches within one run are served without extra API calls.
		var responseStore contract.CacheStore
		switch cacheBackend {
		case "":
		case schema.NoneBackend:
			responseStore = NewMemoryStore()
		default:
			responseStore, err = NewCacheStore(responseTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize response caching: %w", err)
				return
			}
		}

		// Initialize run-history store only if backend is configured
		var runStore contract.RunStore
		if runsBackend != "" {
			runStore, err = NewRunStore(runsBackend, runsConnStr)
			if err != nil {
				if responseStore != nil {
					_ = responseStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize run store: %w", err)
				return
			}
		}

		// Assign to global manager
		Manager.responses = responseStore
		Manager.runs = runStore
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.responses != nil {
			_ = Manager.responses.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearCache clears the response cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTable("mysql", connStr, responseTable)

	case schema.PostgreSQLBackend:
		return clearSQLTable("pgx", connStr, responseTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearRuns clears the run history for the specified backend.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTable("mysql", connStr, runsTable)

	case schema.PostgreSQLBackend:
		return clearSQLTable("pgx", connStr, runsTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported runs backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
