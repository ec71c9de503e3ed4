package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/models"
	"github.com/osmak/agentctl/internal/services"
)

// TaskMonitor runs the task monitor TUI on top of the admin service's
// watcher.
type TaskMonitor struct {
	admin   *services.AdminService
	program *tea.Program
}

func NewTaskMonitor(admin *services.AdminService) *TaskMonitor {
	return &TaskMonitor{
		admin: admin,
	}
}

// Run polls the task in the background and displays its snapshots until
// the user quits. Blocks until the TUI exits.
func (tm *TaskMonitor) Run(ctx context.Context, taskID models.TaskID) error {
	model := NewModel(taskID)
	tm.program = tea.NewProgram(model, tea.WithAltScreen())

	watcher := tm.admin.Watcher()
	watcher.SetOnUpdate(func(snapshot models.TaskResult) {
		tm.program.Send(SnapshotMsg(snapshot))
	})

	go func() {
		if _, err := tm.admin.WatchTask(ctx, taskID); err != nil {
			logger.Error("Polling task %s failed: %v", taskID, err)
			tm.program.Send(PollErrorMsg{Err: err})
		}
	}()

	_, err := tm.program.Run()
	return err
}
