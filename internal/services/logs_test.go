package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmak/agentctl/internal/client"
	"github.com/osmak/agentctl/internal/config"
	"github.com/osmak/agentctl/internal/models"
)

func testAPIClient(t *testing.T, handler http.Handler) *client.APIClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NewConfig()
	cfg.BaseURL = server.URL
	return client.NewAPIClient(cfg)
}

func writeResult(t *testing.T, w http.ResponseWriter, result interface{}) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"result": result}))
}

func TestGetSummary(t *testing.T) {
	s := NewLogService(testAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/logs/summary", r.URL.Path)
		writeResult(t, w, models.LogSummary{
			Total:   10,
			ByLevel: map[string]int64{"error": 3, "info": 7},
		})
	})))

	summary, err := s.GetSummary()
	require.NoError(t, err)
	assert.EqualValues(t, 10, summary.Total)
	assert.EqualValues(t, 3, summary.ByLevel["error"])
}

func TestListLogs_QueryParams(t *testing.T) {
	s := NewLogService(testAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "error", query.Get("level"))
		assert.Equal(t, "scheduler", query.Get("component"))
		assert.Equal(t, "2", query.Get("page"))
		assert.Equal(t, "25", query.Get("page_size"))

		writeResult(t, w, models.LogPage{
			Entries: []models.LogEntry{{ID: 1, Level: models.LogLevelError, Message: "boom"}},
			Total:   51,
			Page:    2,
		})
	})))

	result, err := s.ListLogs(models.LogQuery{
		Level:     models.LogLevelError,
		Component: "scheduler",
		Page:      2,
		PageSize:  25,
	})
	require.NoError(t, err)
	assert.Len(t, result.Entries, 1)
	assert.EqualValues(t, 51, result.Total)
}

func TestCleanupLogs(t *testing.T) {
	before := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	s := NewLogService(testAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, strconv.FormatInt(before.Unix(), 10), r.URL.Query().Get("before_timestamp"))
		assert.Equal(t, "scheduler", r.URL.Query().Get("component"))
		writeResult(t, w, models.CleanupResult{Deleted: 17})
	})))

	deleted, err := s.CleanupLogs(before, "scheduler")
	require.NoError(t, err)
	assert.EqualValues(t, 17, deleted)
}

func TestCollectLogs_DrainsAllPages(t *testing.T) {
	// Two full pages plus a final partial one.
	total := int64(exportPageSize*2 + 10)

	s := NewLogService(testAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		require.GreaterOrEqual(t, page, 1)
		require.LessOrEqual(t, page, 3)

		count := exportPageSize
		if page == 3 {
			count = 10
		}
		entries := make([]models.LogEntry, count)
		for i := range entries {
			entries[i] = models.LogEntry{
				ID:      int64((page-1)*exportPageSize + i + 1),
				Level:   models.LogLevelInfo,
				Message: fmt.Sprintf("entry %d", i),
			}
		}
		writeResult(t, w, models.LogPage{Entries: entries, Total: total, Page: page})
	})))

	entries, err := s.CollectLogs(models.LogQuery{})
	require.NoError(t, err)
	assert.Len(t, entries, int(total))
	assert.EqualValues(t, 1, entries[0].ID)
	assert.EqualValues(t, total, entries[len(entries)-1].ID)
}
