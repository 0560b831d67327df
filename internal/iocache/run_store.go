package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/schema"
)

// runsTable is the name of the run-history table.
const runsTable = "prpulse_runs"

// RunStoreImpl implements the RunStore interface on top of SQL backends.
// The table layout is portable across SQLite, MySQL and PostgreSQL:
// timestamps are stored as unix seconds and run IDs are generated in
// Go, so no backend-specific column types are needed.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunsDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{db: nil, backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the database server is running and accessible", backend, err)
	}

	// Create the table schema
	query := fmt.Sprintf(createRunsTableSQL, quoteTableName(runsTable, backend))
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", runsTable, err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunsTableSQL is valid SQL on every supported backend.
const createRunsTableSQL = `
	CREATE TABLE IF NOT EXISTS %s (
		run_id BIGINT PRIMARY KEY,
		owner VARCHAR(255) NOT NULL,
		scope VARCHAR(255) NOT NULL,
		period_start BIGINT NOT NULL,
		period_end BIGINT NOT NULL,
		started_at BIGINT NOT NULL,
		finished_at BIGINT,
		total_prs INT,
		assisted_prs INT
	);
`

// placeholder returns the nth parameter placeholder for the backend.
func (rs *RunStoreImpl) placeholder(n int) string {
	if rs.backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// BeginRun creates a new run row and returns its unique ID. IDs are
// derived from the start timestamp in nanoseconds, which is unique
// enough for a single-process CLI.
func (rs *RunStoreImpl) BeginRun(startedAt time.Time, owner, scope string, periodStart, periodEnd time.Time) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	runID := startedAt.UnixNano()
	quoted := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(
		`INSERT INTO %s (run_id, owner, scope, period_start, period_end, started_at) VALUES (%s, %s, %s, %s, %s, %s)`,
		quoted,
		rs.placeholder(1), rs.placeholder(2), rs.placeholder(3),
		rs.placeholder(4), rs.placeholder(5), rs.placeholder(6),
	)

	_, err := rs.db.Exec(query, runID, owner, scope, periodStart.Unix(), periodEnd.Unix(), startedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run row with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, finishedAt time.Time, totalPRs, assistedPRs int) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quoted := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(
		`UPDATE %s SET finished_at = %s, total_prs = %s, assisted_prs = %s WHERE run_id = %s`,
		quoted,
		rs.placeholder(1), rs.placeholder(2), rs.placeholder(3), rs.placeholder(4),
	)

	_, err := rs.db.Exec(query, finishedAt.Unix(), totalPRs, assistedPRs, runID)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", runID, err)
	}
	return nil
}

// GetAllRuns retrieves every recorded run, oldest first.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quoted := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(
		`SELECT run_id, owner, scope, period_start, period_end, started_at, finished_at, total_prs, assisted_prs FROM %s ORDER BY run_id`,
		quoted,
	)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var periodStart, periodEnd, startedAt int64
		var finishedAt, totalPRs, assistedPRs sql.NullInt64

		if err := rows.Scan(&record.ID, &record.Owner, &record.Scope,
			&periodStart, &periodEnd, &startedAt,
			&finishedAt, &totalPRs, &assistedPRs); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		record.PeriodStart = time.Unix(periodStart, 0).UTC()
		record.PeriodEnd = time.Unix(periodEnd, 0).UTC()
		record.StartedAt = time.Unix(startedAt, 0).UTC()
		if finishedAt.Valid {
			record.FinishedAt = time.Unix(finishedAt.Int64, 0).UTC()
		}
		record.TotalPRs = int(totalPRs.Int64)
		record.AssistedPRs = int(assistedPRs.Int64)

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:   string(rs.backend),
		Connected: rs.db != nil,
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, rs.backend))
	row := rs.db.QueryRow(countQuery)
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	return status, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
