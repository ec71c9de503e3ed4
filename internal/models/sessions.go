package models

import (
	"encoding/json"
	"time"
)

type SessionID string

// Session is an agent session as reported by the backend.
type Session struct {
	SessionID SessionID `json:"session_id"`
	AgentID   string    `json:"agent_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Tool describes a tool available to a session's agent.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// SessionRequest is the payload for creating a session.
type SessionRequest struct {
	AgentID string `json:"agent_id"`
}
