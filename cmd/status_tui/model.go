// Package status_tui renders a live view of one orchestrator job's task
// graph: job status/summary at the top, one row per task underneath,
// refreshed on a timer by re-reading the store directly (no push
// notifications — the store is the only source of truth).
package status_tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/moxxy/internal/store"
)

const refreshInterval = 2 * time.Second

var statusColors = map[string]lipgloss.Color{
	"succeeded":   lipgloss.Color("42"),  // green
	"completed":   lipgloss.Color("42"),
	"failed":      lipgloss.Color("196"), // red
	"canceled":    lipgloss.Color("240"), // gray
	"in_progress": lipgloss.Color("33"),  // blue
	"executing":   lipgloss.Color("33"),
	"pending":     lipgloss.Color("244"), // muted
	"queued":      lipgloss.Color("244"),
	"skipped":     lipgloss.Color("240"),
}

func styleFor(status string) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		c = lipgloss.Color("250")
	}
	return lipgloss.NewStyle().Foreground(c)
}

type refreshMsg struct {
	job   store.Job
	tasks []store.Task
	err   error
}

// Model polls a single agent's orchestrator job and renders its task
// graph. It satisfies tea.Model.
type Model struct {
	Store *store.Store
	JobID string

	job     store.Job
	tasks   []store.Task
	lastErr error
	quitting bool
}

func New(s *store.Store, jobID string) Model {
	return Model{Store: s, JobID: jobID}
}

func (m Model) Init() tea.Cmd {
	return m.poll()
}

func (m Model) poll() tea.Cmd {
	return func() tea.Msg {
		job, err := m.Store.GetJob(m.JobID)
		if err != nil {
			return refreshMsg{err: err}
		}
		tasks, err := m.Store.ListTasks(m.JobID)
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{job: job, tasks: tasks}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

type tickMsg struct{}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tickMsg:
		return m, m.poll()
	case refreshMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.job = msg.job
			m.tasks = msg.tasks
			m.lastErr = nil
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.lastErr != nil {
		return fmt.Sprintf("error polling job %s: %v\n", m.JobID, m.lastErr)
	}

	var b strings.Builder
	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("job %s", m.job.JobID))
	b.WriteString(header + "  " + styleFor(string(m.job.Status)).Render(string(m.job.Status)) + "\n")
	if m.job.Summary != "" {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render(m.job.Summary) + "\n")
	}
	b.WriteString("\n")

	for _, t := range m.tasks {
		line := fmt.Sprintf("  %-20s %-12s %s", t.TaskID, t.Role, styleFor(t.Status).Render(t.Status))
		if t.WorkerAgent != "" {
			line += lipgloss.NewStyle().Faint(true).Render(" -> " + t.WorkerAgent)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render("q to quit") + "\n")
	return b.String()
}
