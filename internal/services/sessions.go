package services

import (
	"context"
	"fmt"

	"github.com/osmak/agentctl/internal/client"
	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/models"
)

// SessionService handles agent session operations
type SessionService struct {
	client *client.APIClient
}

// NewSessionService creates a new session service
func NewSessionService(client *client.APIClient) *SessionService {
	return &SessionService{
		client: client,
	}
}

// CreateSession starts a new agent session for the given agent
func (s *SessionService) CreateSession(agentID string) (*models.Session, error) {
	request := models.SessionRequest{AgentID: agentID}

	var response models.APIResponse[models.Session]
	if err := s.client.Post("/sessions", request, &response); err != nil {
		return nil, fmt.Errorf("failed to create session for agent %s: %w", agentID, err)
	}

	logger.Info("Created session %s for agent %s", response.Result.SessionID, agentID)
	return &response.Result, nil
}

// ListSessions retrieves all known sessions
func (s *SessionService) ListSessions() ([]models.Session, error) {
	var response models.APIResponse[[]models.Session]
	if err := s.client.Get("/sessions", &response); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	logger.Debug("Found %d sessions", len(response.Result))
	return response.Result, nil
}

// ListTools retrieves the tools available to a session's agent
func (s *SessionService) ListTools(sessionID models.SessionID) ([]models.Tool, error) {
	endpoint := fmt.Sprintf("/sessions/%s/tools", sessionID)

	var response models.APIResponse[[]models.Tool]
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list tools for session %s: %w", sessionID, err)
	}

	logger.Debug("Session %s has %d tools", sessionID, len(response.Result))
	return response.Result, nil
}

// ExecuteTask submits an instruction to the session and returns the id
// of the task the backend created for it. The task runs asynchronously;
// track it with the poller.
func (s *SessionService) ExecuteTask(sessionID models.SessionID, instruction string) (models.TaskID, error) {
	endpoint := fmt.Sprintf("/sessions/%s/tasks", sessionID)
	request := models.TaskRequest{Instruction: instruction}

	var response models.APIResponse[models.AsyncTaskResponse]
	if err := s.client.Post(endpoint, request, &response); err != nil {
		return "", fmt.Errorf("failed to execute task on session %s: %w", sessionID, err)
	}

	logger.Info("Submitted task %s to session %s", response.Result.TaskID, sessionID)
	return response.Result.TaskID, nil
}

// FetchTaskStatus retrieves the current snapshot of a task. This is the
// fetch function behind the poller's StatusFetcher.
func (s *SessionService) FetchTaskStatus(ctx context.Context, taskID models.TaskID) (*models.TaskResult, error) {
	endpoint := fmt.Sprintf("/tasks/%s", taskID)

	var response models.APIResponse[models.TaskResult]
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch status for task %s: %w", taskID, err)
	}

	return &response.Result, nil
}
