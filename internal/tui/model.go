package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/osmak/agentctl/internal/models"
)

// SnapshotMsg carries a freshly observed task snapshot into the model.
type SnapshotMsg models.TaskResult

// PollErrorMsg reports that the poll chain ended without a terminal
// snapshot.
type PollErrorMsg struct {
	Err error
}

type Model struct {
	taskID    models.TaskID
	snapshot  *models.TaskResult
	pollErr   error
	startTime time.Time
	spinner   spinner.Model
	width     int
	height    int
	quit      bool
}

func NewModel(taskID models.TaskID) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		taskID:    taskID,
		startTime: time.Now(),
		spinner:   sp,
		width:     80,
		height:    24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SnapshotMsg:
		snapshot := models.TaskResult(msg)
		m.snapshot = &snapshot

	case PollErrorMsg:
		m.pollErr = msg.Err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) done() bool {
	if m.pollErr != nil {
		return true
	}
	return m.snapshot != nil && m.snapshot.Status.IsTerminal()
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Header
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	s.WriteString(headerStyle.Render("🛰  Task Monitor"))
	s.WriteString("\n\n")

	// Status line
	statusLine := fmt.Sprintf("Task: %s | Status: %s | Elapsed: %s",
		m.taskID, m.statusLabel(), time.Since(m.startTime).Round(time.Second))
	if !m.done() {
		statusLine = m.spinner.View() + " " + statusLine
	}

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.statusColor()))
	s.WriteString(statusStyle.Render(statusLine))
	s.WriteString("\n\n")

	// Steps section
	stepSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1).
		Width(m.width - 2)

	var steps strings.Builder
	steps.WriteString("🛠  Steps\n")
	steps.WriteString(strings.Repeat("─", 60) + "\n")

	if m.snapshot == nil || len(m.snapshot.Steps) == 0 {
		steps.WriteString("No steps reported yet\n")
	}
	if m.snapshot != nil {
		for i, step := range m.snapshot.Steps {
			stepLine := fmt.Sprintf("%2d. %-20s %s", i+1, truncate(step.Tool, 20), step.Action)
			if step.Error != "" {
				errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
				stepLine += " " + errorStyle.Render(fmt.Sprintf("Error: %s", step.Error))
			}
			steps.WriteString(stepLine + "\n")
		}
	}

	s.WriteString(stepSectionStyle.Render(steps.String()))
	s.WriteString("\n\n")

	// Outcome section, once the task has finished
	if m.done() {
		outcomeStyle := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(m.width - 2)

		var outcome strings.Builder
		switch {
		case m.pollErr != nil:
			outcome.WriteString(fmt.Sprintf("❌ Polling stopped: %v\n", m.pollErr))
		case m.snapshot.Error != "":
			outcome.WriteString(fmt.Sprintf("❌ Task %s: %s\n", m.snapshot.Status, m.snapshot.Error))
		default:
			outcome.WriteString(fmt.Sprintf("✅ Task %s\n", m.snapshot.Status))
			if len(m.snapshot.Result) > 0 {
				outcome.WriteString(truncate(string(m.snapshot.Result), 200) + "\n")
			}
		}

		s.WriteString(outcomeStyle.Render(outcome.String()))
		s.WriteString("\n\n")
	}

	// Footer
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	footer := "Press 'q' to quit | Logs: logs/agentctl_*.log"
	s.WriteString(footerStyle.Render(footer))

	return s.String()
}

func (m Model) statusLabel() string {
	if m.snapshot == nil {
		return "waiting"
	}
	return string(m.snapshot.Status)
}

func (m Model) statusColor() string {
	if m.pollErr != nil {
		return "196"
	}
	if m.snapshot == nil {
		return "244"
	}
	switch m.snapshot.Status {
	case models.TaskStatusCompleted:
		return "42"
	case models.TaskStatusFailed, models.TaskStatusCancelled:
		return "196"
	case models.TaskStatusRunning:
		return "39"
	default:
		return "244"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
