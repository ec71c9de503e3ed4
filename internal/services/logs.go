package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/osmak/agentctl/internal/client"
	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/models"
)

// exportPageSize is the page size used when draining logs for export.
const exportPageSize = 500

// LogService handles system log operations
type LogService struct {
	client *client.APIClient
}

// NewLogService creates a new log service
func NewLogService(client *client.APIClient) *LogService {
	return &LogService{
		client: client,
	}
}

// GetSummary retrieves the aggregate log statistics
func (s *LogService) GetSummary() (*models.LogSummary, error) {
	var response models.APIResponse[models.LogSummary]
	if err := s.client.Get("/logs/summary", &response); err != nil {
		return nil, fmt.Errorf("failed to get log summary: %w", err)
	}

	logger.Debug("Log summary: %d entries across %d components", response.Result.Total, len(response.Result.ByComponent))
	return &response.Result, nil
}

// ListLogs retrieves one page of log entries matching the query
func (s *LogService) ListLogs(query models.LogQuery) (*models.LogPage, error) {
	endpoint := client.BuildURLWithParams("/logs", query.Params())

	var response models.APIResponse[models.LogPage]
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	logger.Debug("Fetched %d of %d log entries (page %d)", len(response.Result.Entries), response.Result.Total, response.Result.Page)
	return &response.Result, nil
}

// CleanupLogs deletes log entries older than the given timestamp,
// optionally restricted to one component. Returns the number of
// entries removed.
func (s *LogService) CleanupLogs(before time.Time, component string) (int64, error) {
	params := map[string]string{
		"before_timestamp": strconv.FormatInt(before.Unix(), 10),
	}
	if component != "" {
		params["component"] = component
	}
	endpoint := client.BuildURLWithParams("/logs", params)

	var response models.APIResponse[models.CleanupResult]
	if err := s.client.Delete(endpoint, nil, &response); err != nil {
		return 0, fmt.Errorf("failed to cleanup logs: %w", err)
	}

	logger.Info("Removed %d log entries", response.Result.Deleted)
	return response.Result.Deleted, nil
}

// CollectLogs drains all pages matching the query, for export. The
// query's own page settings are ignored.
func (s *LogService) CollectLogs(query models.LogQuery) ([]models.LogEntry, error) {
	var entries []models.LogEntry

	query.PageSize = exportPageSize
	for page := 1; ; page++ {
		query.Page = page

		result, err := s.ListLogs(query)
		if err != nil {
			return nil, fmt.Errorf("failed to collect logs on page %d: %w", page, err)
		}

		entries = append(entries, result.Entries...)
		if len(result.Entries) < exportPageSize || int64(len(entries)) >= result.Total {
			break
		}
	}

	logger.Info("Collected %d log entries for export", len(entries))
	return entries, nil
}
