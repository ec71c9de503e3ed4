package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/models"
)

var csvHeader = []string{"id", "timestamp", "level", "component", "message", "details"}

// WriteCSV writes log entries as CSV to the given writer, header first.
func WriteCSV(w io.Writer, entries []models.LogEntry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			strconv.FormatInt(entry.ID, 10),
			entry.Timestamp.UTC().Format(time.RFC3339),
			string(entry.Level),
			entry.Component,
			entry.Message,
			entry.Details,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}

	return nil
}

// ExportLogsToFile writes log entries to a CSV file. An empty path
// produces a timestamped file in the export directory. Returns the
// path of the written file.
func ExportLogsToFile(entries []models.LogEntry, exportDir, path string) (string, error) {
	if path == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		path = filepath.Join(exportDir, fmt.Sprintf("logs_%s.csv", timestamp))
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, entries); err != nil {
		return "", err
	}

	logger.Info("Exported %d log entries to %s", len(entries), path)
	return path, nil
}
