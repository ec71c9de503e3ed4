package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/osmak/agentctl/internal/models"
)

// CleanupData represents the structure of the cleanup timestamp data stored in the file
type CleanupData struct {
	LastCleanup int64 `json:"last_cleanup"`
	UpdatedAt   int64 `json:"updated_at"`
}

// TaskRecord is one line of the local task history file.
type TaskRecord struct {
	TaskID     models.TaskID     `json:"task_id"`
	SessionID  models.SessionID  `json:"session_id"`
	Status     models.TaskStatus `json:"status"`
	Error      string            `json:"error,omitempty"`
	RecordedAt int64             `json:"recorded_at"`
}

// TaskRecordFromResult builds a history record from a poll outcome.
// A nil result means the task was never observed (first fetch failed).
func TaskRecordFromResult(taskID models.TaskID, sessionID models.SessionID, result *models.TaskResult) TaskRecord {
	record := TaskRecord{
		TaskID:     taskID,
		SessionID:  sessionID,
		RecordedAt: time.Now().Unix(),
	}
	if result != nil {
		record.Status = result.Status
		record.Error = result.Error
	}
	return record
}

// GetAppDataDir returns the application data directory
func GetAppDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDataDir := filepath.Join(homeDir, ".agentctl")
	if err := os.MkdirAll(appDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create app data directory: %w", err)
	}

	return appDataDir, nil
}

// GetCleanupFilePath returns the path to the cleanup timestamp file for a specific component
func GetCleanupFilePath(component string) (string, error) {
	appDataDir, err := GetAppDataDir()
	if err != nil {
		return "", err
	}

	if component == "" {
		component = "all"
	}
	return filepath.Join(appDataDir, fmt.Sprintf("%s_cleanup.json", component)), nil
}

// SaveCleanupTimestamp saves the timestamp of the last cleanup for a component
func SaveCleanupTimestamp(component string, timestamp int64) error {
	filePath, err := GetCleanupFilePath(component)
	if err != nil {
		return err
	}

	data := CleanupData{
		LastCleanup: timestamp,
		UpdatedAt:   time.Now().Unix(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup data: %w", err)
	}

	if err := os.WriteFile(filePath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write cleanup file: %w", err)
	}

	return nil
}

// GetLastCleanupTimestamp gets the last cleanup timestamp for a component
func GetLastCleanupTimestamp(component string) (int64, error) {
	filePath, err := GetCleanupFilePath(component)
	if err != nil {
		return 0, err
	}

	if _, statErr := os.Stat(filePath); os.IsNotExist(statErr) {
		return 0, nil
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read cleanup file: %w", err)
	}

	var data CleanupData
	if err := json.Unmarshal(fileData, &data); err != nil {
		return 0, fmt.Errorf("failed to unmarshal cleanup data: %w", err)
	}

	return data.LastCleanup, nil
}

// taskHistoryPath returns the path of the task history file
func taskHistoryPath() (string, error) {
	appDataDir, err := GetAppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDataDir, "task_history.jsonl"), nil
}

// AppendTaskRecord appends a record to the task history file, one JSON
// object per line
func AppendTaskRecord(record TaskRecord) error {
	filePath, err := taskHistoryPath()
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal task record: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open task history file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write task record: %w", err)
	}

	return nil
}

// ReadTaskHistory reads all records from the task history file
func ReadTaskHistory() ([]TaskRecord, error) {
	filePath, err := taskHistoryPath()
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open task history file: %w", err)
	}
	defer file.Close()

	var records []TaskRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record TaskRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task record: %w", err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read task history file: %w", err)
	}

	return records, nil
}
