package schema

// Custom string types for type safety.
type (
	// AssistCategory is the Copilot-assistance category of a pull request.
	AssistCategory string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching
	// and run history.
	DatabaseBackend string
)

// All assistance categories supported. A PR lands in exactly one.
const (
	AgentAssist  AssistCategory = "agent"  // Copilot authored the PR
	ReviewAssist AssistCategory = "review" // Copilot reviewed the PR
	NoAssist     AssistCategory = "none"   // no Copilot signal found
)

// All output modes supported.
const (
	TextOut     OutputMode = "text" // default
	JSONOut     OutputMode = "json"
	CSVOut      OutputMode = "csv"
	MarkdownOut OutputMode = "markdown"
	ParquetOut  OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:     {},
	JSONOut:     {},
	CSVOut:      {},
	MarkdownOut: {},
	ParquetOut:  {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
