package models

import (
	"strconv"
	"time"
)

type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// LogEntry is a single system log record stored by the backend.
type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
}

// LogSummary aggregates the stored logs by level and component.
type LogSummary struct {
	Total        int64            `json:"total"`
	ByLevel      map[string]int64 `json:"by_level"`
	ByComponent  map[string]int64 `json:"by_component"`
	OldestEntry  *time.Time       `json:"oldest_entry,omitempty"`
	NewestEntry  *time.Time       `json:"newest_entry,omitempty"`
	SizeEstimate int64            `json:"size_estimate,omitempty"`
}

// LogQuery carries the filter and pagination parameters of the log
// listing endpoint.
type LogQuery struct {
	Level     LogLevel
	Component string
	Search    string
	From      time.Time
	To        time.Time
	Page      int
	PageSize  int
}

// Params converts the query into URL query parameters, omitting unset
// fields.
func (q LogQuery) Params() map[string]string {
	params := make(map[string]string)
	if q.Level != "" {
		params["level"] = string(q.Level)
	}
	if q.Component != "" {
		params["component"] = q.Component
	}
	if q.Search != "" {
		params["search"] = q.Search
	}
	if !q.From.IsZero() {
		params["from_timestamp"] = strconv.FormatInt(q.From.Unix(), 10)
	}
	if !q.To.IsZero() {
		params["to_timestamp"] = strconv.FormatInt(q.To.Unix(), 10)
	}
	if q.Page > 0 {
		params["page"] = strconv.Itoa(q.Page)
	}
	if q.PageSize > 0 {
		params["page_size"] = strconv.Itoa(q.PageSize)
	}
	return params
}

// LogPage is one page of log entries plus the total match count.
type LogPage struct {
	Entries []LogEntry `json:"entries"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
}

// CleanupResult reports how many entries a cleanup removed.
type CleanupResult struct {
	Deleted int64 `json:"deleted"`
}
