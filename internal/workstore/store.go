// Package workstore is the local workspace store: a durable record of the
// runs this machine has seen and a mirror of their chat histories, so
// listings keep working when the backend is unreachable.
package workstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/schema"
)

// Table names for the workspace store.
const (
	runsTable     = "pilotctl_runs"
	messagesTable = "pilotctl_chat_messages"
)

// WorkspaceStoreImpl handles durable storage using various database backends.
type WorkspaceStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.WorkspaceStore = &WorkspaceStoreImpl{} // Compile-time check

// NewWorkspaceStore initializes and returns a new workspace store for the backend type.
func NewWorkspaceStore(backend schema.DatabaseBackend, connStr string) (contract.WorkspaceStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetStoreDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL store: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL store: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &WorkspaceStoreImpl{
			db:      nil,
			backend: backend,
			connStr: connStr,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s store. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	// Create the table schemas
	if err := createStoreTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create store tables: %w", err)
	}

	return &WorkspaceStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// createStoreTables creates the workspace tables.
func createStoreTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{messagesTable, getCreateMessagesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for pilotctl_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id VARCHAR(255) PRIMARY KEY,
			created_at VARCHAR(64) NOT NULL,
			files_uploaded INTEGER NOT NULL,
			analysis VARCHAR(16) NOT NULL,
			active INTEGER NOT NULL,
			last_seen BIGINT NOT NULL
		);
	`, quoteTableName(runsTable, backend))
}

// getCreateMessagesQuery returns the CREATE TABLE query for pilotctl_chat_messages.
func getCreateMessagesQuery(backend schema.DatabaseBackend) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id VARCHAR(255) NOT NULL,
			message_id VARCHAR(255) NOT NULL,
			user_query TEXT NOT NULL,
			sql_query TEXT NOT NULL,
			commentary TEXT NOT NULL,
			msg_timestamp VARCHAR(64) NOT NULL,
			executed INTEGER NOT NULL,
			result_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, message_id)
		);
	`, quoteTableName(messagesTable, backend))
}

// quoteTableName quotes a table identifier for the backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// placeholders returns n parameter placeholders for the backend, starting at 1.
func (ws *WorkspaceStoreImpl) placeholders(n int) []string {
	out := make([]string, n)
	for i := range out {
		if ws.backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// UpsertRun inserts or refreshes the local record of a run.
func (ws *WorkspaceStoreImpl) UpsertRun(rec schema.RunRecord) error {
	if ws.backend == schema.NoneBackend || ws.db == nil {
		return nil
	}

	table := quoteTableName(runsTable, ws.backend)
	ph := ws.placeholders(6)
	cols := "run_id, created_at, files_uploaded, analysis, active, last_seen"
	values := strings.Join(ph, ", ")

	var query string
	switch ws.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE created_at = new.created_at, files_uploaded = new.files_uploaded,
			analysis = new.analysis, active = new.active, last_seen = new.last_seen`, table, cols, values)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (run_id) DO UPDATE SET created_at = EXCLUDED.created_at, files_uploaded = EXCLUDED.files_uploaded,
			analysis = EXCLUDED.analysis, active = EXCLUDED.active, last_seen = EXCLUDED.last_seen`, table, cols, values)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, table, cols, values)
	}

	_, err := ws.db.Exec(query, rec.RunID, rec.CreatedAt, rec.FilesUploaded, string(rec.Analysis), boolToInt(rec.Active), rec.LastSeen.Unix())
	return err
}

// GetRun retrieves one run record by id.
func (ws *WorkspaceStoreImpl) GetRun(runID string) (*schema.RunRecord, error) {
	if ws.backend == schema.NoneBackend || ws.db == nil {
		return nil, sql.ErrNoRows
	}

	query := fmt.Sprintf(`SELECT run_id, created_at, files_uploaded, analysis, active, last_seen FROM %s WHERE run_id = %s`,
		quoteTableName(runsTable, ws.backend), ws.placeholders(1)[0])

	rec, err := scanRunRecord(ws.db.QueryRow(query, runID))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRuns retrieves all run records, most recently seen first.
func (ws *WorkspaceStoreImpl) ListRuns() ([]schema.RunRecord, error) {
	if ws.backend == schema.NoneBackend || ws.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, created_at, files_uploaded, analysis, active, last_seen FROM %s ORDER BY last_seen DESC`,
		quoteTableName(runsTable, ws.backend))

	rows, err := ws.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RunRecord
	for rows.Next() {
		rec, err := scanRunRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// DeleteRun removes a run record and its mirrored messages.
func (ws *WorkspaceStoreImpl) DeleteRun(runID string) error {
	if ws.backend == schema.NoneBackend || ws.db == nil {
		return nil
	}

	ph := ws.placeholders(1)[0]
	if _, err := ws.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE run_id = %s`, quoteTableName(messagesTable, ws.backend), ph), runID); err != nil {
		return err
	}
	_, err := ws.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE run_id = %s`, quoteTableName(runsTable, ws.backend), ph), runID)
	return err
}

// SetActiveRun marks one run as active and clears the flag everywhere else.
func (ws *WorkspaceStoreImpl) SetActiveRun(runID string) error {
	if ws.backend == schema.NoneBackend || ws.db == nil {
		return nil
	}

	table := quoteTableName(runsTable, ws.backend)
	if _, err := ws.db.Exec(fmt.Sprintf(`UPDATE %s SET active = 0`, table)); err != nil {
		return err
	}
	res, err := ws.db.Exec(fmt.Sprintf(`UPDATE %s SET active = 1 WHERE run_id = %s`, table, ws.placeholders(1)[0]), runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("run %s is not recorded in the workspace store", runID)
	}
	return err
}

// GetActiveRun returns the active run id, or empty when none is set.
func (ws *WorkspaceStoreImpl) GetActiveRun() (string, error) {
	if ws.backend == schema.NoneBackend || ws.db == nil {
		return "", nil
	}

	query := fmt.Sprintf(`SELECT run_id FROM %s WHERE active = 1`, quoteTableName(runsTable, ws.backend))
	var runID string
	if err := ws.db.QueryRow(query).Scan(&runID); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return runID, nil
}

// SaveMessages mirrors chat messages for a run, replacing on message id.
func (ws *WorkspaceStoreImpl) SaveMessages(runID string, msgs []schema.MessageRecord) error {
	if ws.backend == schema.NoneBackend || ws.db == nil {
		return nil
	}

	table := quoteTableName(messagesTable, ws.backend)
	ph := ws.placeholders(8)
	cols := "run_id, message_id, user_query, sql_query, commentary, msg_timestamp, executed, result_count"
	values := strings.Join(ph, ", ")

	var query string
	switch ws.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE user_query = new.user_query, sql_query = new.sql_query, commentary = new.commentary,
			msg_timestamp = new.msg_timestamp, executed = new.executed, result_count = new.result_count`, table, cols, values)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (run_id, message_id) DO UPDATE SET user_query = EXCLUDED.user_query, sql_query = EXCLUDED.sql_query,
			commentary = EXCLUDED.commentary, msg_timestamp = EXCLUDED.msg_timestamp, executed = EXCLUDED.executed,
			result_count = EXCLUDED.result_count`, table, cols, values)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, table, cols, values)
	}

	tx, err := ws.db.Begin()
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if _, err := tx.Exec(query, runID, m.MessageID, m.UserQuery, m.SQLQuery, m.Commentary, m.Timestamp, boolToInt(m.Executed), m.ResultCount); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListMessages retrieves the mirrored messages for a run, newest first.
func (ws *WorkspaceStoreImpl) ListMessages(runID string) ([]schema.MessageRecord, error) {
	if ws.backend == schema.NoneBackend || ws.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, message_id, user_query, sql_query, commentary, msg_timestamp, executed, result_count
		FROM %s WHERE run_id = %s ORDER BY msg_timestamp DESC`,
		quoteTableName(messagesTable, ws.backend), ws.placeholders(1)[0])

	rows, err := ws.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []schema.MessageRecord
	for rows.Next() {
		var rec schema.MessageRecord
		var executed int
		if err := rows.Scan(&rec.RunID, &rec.MessageID, &rec.UserQuery, &rec.SQLQuery, &rec.Commentary, &rec.Timestamp, &executed, &rec.ResultCount); err != nil {
			return nil, err
		}
		rec.Executed = executed != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying DB connection.
func (ws *WorkspaceStoreImpl) Close() error {
	if ws.db != nil {
		return ws.db.Close()
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunRecord(row rowScanner) (*schema.RunRecord, error) {
	var rec schema.RunRecord
	var analysis string
	var active int
	var lastSeen int64
	if err := row.Scan(&rec.RunID, &rec.CreatedAt, &rec.FilesUploaded, &analysis, &active, &lastSeen); err != nil {
		return nil, err
	}
	rec.Analysis = schema.AnalysisState(analysis)
	rec.Active = active != 0
	rec.LastSeen = time.Unix(lastSeen, 0)
	return &rec, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
