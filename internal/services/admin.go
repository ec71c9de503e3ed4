package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/osmak/agentctl/internal/client"
	"github.com/osmak/agentctl/internal/config"
	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/models"
	"github.com/osmak/agentctl/internal/poller"
	"github.com/osmak/agentctl/internal/storage"
)

// Overview bundles the data shown on the admin landing view.
type Overview struct {
	Logs     *models.LogSummary
	Sessions []models.Session
}

// AdminService wires the log and session services together with the
// task poller
type AdminService struct {
	config   *config.Config
	client   *client.APIClient
	logs     *LogService
	sessions *SessionService
	watcher  *poller.Watcher
}

// NewAdminService creates an admin service with all dependencies
func NewAdminService(cfg *config.Config) *AdminService {
	apiClient := client.NewAPIClient(cfg)
	sessions := NewSessionService(apiClient)

	return &AdminService{
		config:   cfg,
		client:   apiClient,
		logs:     NewLogService(apiClient),
		sessions: sessions,
		watcher:  poller.NewWatcher(poller.StatusFetcherFunc(sessions.FetchTaskStatus), cfg),
	}
}

// Logs returns the log service
func (s *AdminService) Logs() *LogService {
	return s.logs
}

// Sessions returns the session service
func (s *AdminService) Sessions() *SessionService {
	return s.sessions
}

// Watcher returns the task status watcher
func (s *AdminService) Watcher() *poller.Watcher {
	return s.watcher
}

// WaitForAPIReady waits for the API to become ready
func (s *AdminService) WaitForAPIReady(ctx context.Context) error {
	return s.client.WaitForReady(ctx)
}

// GetOverview fetches the log summary and session list concurrently
func (s *AdminService) GetOverview(ctx context.Context) (*Overview, error) {
	overview := &Overview{}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.logs.GetSummary()
		if err != nil {
			return err
		}
		overview.Logs = summary
		return nil
	})
	g.Go(func() error {
		sessions, err := s.sessions.ListSessions()
		if err != nil {
			return err
		}
		overview.Sessions = sessions
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch overview: %w", err)
	}

	return overview, nil
}

// RunTask submits an instruction to the session and polls the resulting
// task until it reaches a terminal state. The outcome is appended to
// the local task history.
func (s *AdminService) RunTask(ctx context.Context, sessionID models.SessionID, instruction string) (*models.TaskResult, error) {
	taskID, err := s.sessions.ExecuteTask(sessionID, instruction)
	if err != nil {
		return nil, err
	}

	result, err := s.watcher.Watch(ctx, taskID)
	if recordErr := storage.AppendTaskRecord(storage.TaskRecordFromResult(taskID, sessionID, result)); recordErr != nil {
		logger.Warn("Failed to record task %s in history: %v", taskID, recordErr)
	}
	if err != nil {
		return result, fmt.Errorf("task %s did not finish: %w", taskID, err)
	}

	return result, nil
}

// WatchTask polls an already-submitted task until it reaches a terminal
// state
func (s *AdminService) WatchTask(ctx context.Context, taskID models.TaskID) (*models.TaskResult, error) {
	result, err := s.watcher.Watch(ctx, taskID)
	if err != nil {
		return result, fmt.Errorf("task %s did not finish: %w", taskID, err)
	}
	return result, nil
}
