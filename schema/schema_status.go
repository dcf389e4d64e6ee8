package schema

import "time"

// StoreStatus represents the status of the workspace store.
type StoreStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	TotalMessages  int              `json:"total_messages"`
	LastSeenTime   time.Time        `json:"last_seen_time"`
	OldestSeenTime time.Time        `json:"oldest_seen_time"`
	ActiveRunID    string           `json:"active_run_id"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the pilotctl_runs table: the last known
// local view of a backend run.
type RunRecord struct {
	RunID         string
	CreatedAt     string
	FilesUploaded int
	Analysis      AnalysisState
	Active        bool
	LastSeen      time.Time
}

// MessageRecord represents a row from the pilotctl_chat_messages table,
// mirroring one chat-history entry for offline listing.
type MessageRecord struct {
	RunID       string
	MessageID   string
	UserQuery   string
	SQLQuery    string
	Commentary  string
	Timestamp   string
	Executed    bool
	ResultCount int
}
