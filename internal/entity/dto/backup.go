package dto

import "time"

// BackupStatus reports the state of the SQL snapshot job.
type BackupStatus struct {
	Path        string     `json:"path"`
	Dialect     string     `json:"dialect"`
	Running     bool       `json:"running"`
	Exists      bool       `json:"exists"`
	SizeBytes   int64      `json:"size_bytes"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastSuccess bool       `json:"last_success"`
	Interval    string     `json:"interval"`
}
