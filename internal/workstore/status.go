package workstore

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/schemapilot/pilotctl/schema"
)

// GetStatus returns status information about the workspace store.
func (ws *WorkspaceStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(ws.backend),
		Connected:  ws.db != nil,
		TableSizes: map[string]int64{},
	}

	if ws.backend == schema.NoneBackend || ws.db == nil {
		return status, nil
	}

	runs := quoteTableName(runsTable, ws.backend)
	msgs := quoteTableName(messagesTable, ws.backend)

	if err := ws.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to count runs: %w", err)
	}
	if err := ws.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", msgs)).Scan(&status.TotalMessages); err != nil {
		return status, fmt.Errorf("failed to count messages: %w", err)
	}

	if activeRun, err := ws.GetActiveRun(); err == nil {
		status.ActiveRunID = activeRun
	}

	if status.TotalRuns == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	if err := ws.db.QueryRow(fmt.Sprintf("SELECT MAX(last_seen) FROM %s", runs)).Scan(&lastTs); err != nil {
		return status, fmt.Errorf("failed to get last seen time: %w", err)
	}
	if err := ws.db.QueryRow(fmt.Sprintf("SELECT MIN(last_seen) FROM %s", runs)).Scan(&oldestTs); err != nil {
		return status, fmt.Errorf("failed to get oldest seen time: %w", err)
	}
	status.LastSeenTime = time.Unix(lastTs, 0)
	status.OldestSeenTime = time.Unix(oldestTs, 0)

	for _, table := range []string{runsTable, messagesTable} {
		status.TableSizes[table] = ws.tableSizeBytes(table, status.TotalRuns+status.TotalMessages)
	}

	return status, nil
}

// PrintStoreStatus prints workspace store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	fmt.Printf("Total Messages: %d\n", status.TotalMessages)
	if status.ActiveRunID != "" {
		fmt.Printf("Active Run: %s\n", status.ActiveRunID)
	}
	if status.TotalRuns > 0 {
		fmt.Printf("Last Seen: %s\n", status.LastSeenTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Seen: %s\n", status.OldestSeenTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Table Sizes:")
	for table, size := range status.TableSizes {
		fmt.Printf("  %s: %d bytes\n", table, size)
	}
}

// tableSizeBytes estimates the on-disk size of one table. Failures fall
// back to a rough per-row estimate rather than erroring the status view.
func (ws *WorkspaceStoreImpl) tableSizeBytes(tableName string, totalRows int) int64 {
	fallback := int64(totalRows) * 1000

	switch ws.backend {
	case schema.SQLiteBackend:
		// SQLite sizes are per database file, not per table
		var size int64
		row := ws.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ws.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		var size int64
		query := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := ws.db.QueryRow(query, cfg.DBName, tableName).Scan(&size); err != nil {
			return fallback
		}
		return size

	case schema.PostgreSQLBackend:
		var size int64
		if err := ws.db.QueryRow("SELECT pg_total_relation_size($1)", tableName).Scan(&size); err != nil {
			return fallback
		}
		return size

	default:
		return fallback
	}
}
