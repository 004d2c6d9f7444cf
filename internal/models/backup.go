package models

import "time"

// BackupStatus tracks a backup job through the queue.
type BackupStatus string

const (
	BackupQueued    BackupStatus = "QUEUED"
	BackupRunning   BackupStatus = "RUNNING"
	BackupCompleted BackupStatus = "COMPLETED"
	BackupFailed    BackupStatus = "FAILED"
)

// BackupJob describes a requested database backup.
type BackupJob struct {
	ID          string       `json:"id"`
	Status      BackupStatus `json:"status"`
	FileName    string       `json:"file_name"`
	Error       string       `json:"error,omitempty"`
	RequestedBy string       `json:"requested_by"`
	CreatedAt   time.Time    `json:"created_at"`
	FinishedAt  *time.Time   `json:"finished_at,omitempty"`
}

// BackupFile is a stored backup dump.
type BackupFile struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupLink is a signed, expiring download URL for a backup file.
type BackupLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BackupDump is the JSON document written for a backup.
type BackupDump struct {
	GeneratedAt time.Time                           `json:"generated_at"`
	Tables      map[string][]map[string]interface{} `json:"tables"`
}

// TableCount reports the number of rows in a table.
type TableCount struct {
	Table string `db:"table_name" json:"table"`
	Rows  int    `db:"row_count" json:"rows"`
}

// DatabaseInfo summarises the database for the maintenance page.
type DatabaseInfo struct {
	Tables       []TableCount `json:"tables"`
	TotalRows    int          `json:"total_rows"`
	DatabaseSize string       `json:"database_size"`
	LastBackup   *BackupFile  `json:"last_backup,omitempty"`
}

// MaintenanceResult reports the outcome of an optimize, reset or restore operation.
type MaintenanceResult struct {
	Operation    string    `json:"operation"`
	Tables       []string  `json:"tables"`
	Source       string    `json:"source,omitempty"`
	SafetyBackup string    `json:"safety_backup,omitempty"`
	Completed    time.Time `json:"completed_at"`
}
