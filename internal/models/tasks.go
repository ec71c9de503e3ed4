package models

import (
	"encoding/json"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// IsTerminal reports whether a task in this status will never transition
// again.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

type TaskID string

// TaskStep is a single sub-operation performed by a task.
type TaskStep struct {
	Tool   string          `json:"tool"`
	Action string          `json:"action"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// TaskResult is a snapshot of an asynchronously executed task. The
// server owns the lifecycle; clients only read snapshots of it.
// Result is populated only for completed tasks, Error only for
// failure-type terminal states.
type TaskResult struct {
	TaskID    TaskID          `json:"task_id"`
	Status    TaskStatus      `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Steps     []TaskStep      `json:"steps,omitempty"`
}

type AsyncTaskResponse struct {
	TaskID TaskID `json:"task_id"`
}

// TaskRequest is the payload for submitting a task to a session.
type TaskRequest struct {
	Instruction string `json:"instruction"`
}
