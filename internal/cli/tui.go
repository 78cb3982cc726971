package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kirmse-prom/prominence/pkg/driver"
)

var (
	progressLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	progressBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	progressCountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const progressBarWidth = 30

// progressMsg carries one driver.ProgressFunc callback into the
// bubbletea model.
type progressMsg struct {
	stage       string
	done, total int
}

// progressDoneMsg tells the model the run finished and it should quit.
type progressDoneMsg struct{}

type progressModel struct {
	stage       string
	done, total int
	finished    bool
}

func (m progressModel) Init() tea.Cmd { return nil }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.stage, m.done, m.total = msg.stage, msg.done, msg.total
		return m, nil
	case progressDoneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.finished || m.stage == "" {
		return ""
	}
	filled := 0
	if m.total > 0 {
		filled = progressBarWidth * m.done / m.total
		if filled > progressBarWidth {
			filled = progressBarWidth
		}
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	return fmt.Sprintf("%s %s %s\n",
		progressLabelStyle.Render(m.stage),
		progressBarStyle.Render(bar),
		progressCountStyle.Render(fmt.Sprintf("%d/%d", m.done, m.total)))
}

// TUIProgress drives a bubbletea progress view from driver.ProgressFunc
// callbacks, one line updated in place as tile loads and merge rounds
// complete.
type TUIProgress struct {
	program *tea.Program
}

// NewTUIProgress creates a progress view; call Run in its own goroutine
// before starting the driver run, and Finish once the run completes.
func NewTUIProgress() *TUIProgress {
	return &TUIProgress{program: tea.NewProgram(progressModel{})}
}

// Run blocks rendering the progress view until Finish is called or the
// user presses ctrl+c.
func (t *TUIProgress) Run() error {
	_, err := t.program.Run()
	return err
}

// Func returns a driver.ProgressFunc that feeds this view.
func (t *TUIProgress) Func() driver.ProgressFunc {
	return func(stage string, done, total int) {
		t.program.Send(progressMsg{stage: stage, done: done, total: total})
	}
}

// Finish signals the view to stop.
func (t *TUIProgress) Finish() {
	t.program.Send(progressDoneMsg{})
}
