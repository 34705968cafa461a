// Package ui renders the interactive prune progress view.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	adprogress "adforge/internal/progress"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	keptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	deletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// maxLogLines bounds the rolling outcome log.
const maxLogLines = 8

type eventMsg adprogress.Event

type streamClosedMsg struct{}

// pruneModel is the bubbletea model for one prune run.
type pruneModel struct {
	adsetID string
	events  <-chan adprogress.Event

	bar      progress.Model
	current  int
	total    int
	scored   int
	deleted  int
	kept     int
	log      []string
	done     bool
	doneLine string
	width    int
}

// RunPruneView drains the event channel into an interactive view. It
// returns when the stream ends or the user quits.
func RunPruneView(adsetID string, ch *adprogress.Channel) error {
	m := pruneModel{
		adsetID: adsetID,
		events:  ch.Events(),
		bar:     progress.New(progress.WithDefaultGradient()),
		width:   80,
	}
	_, err := tea.NewProgram(m).Run()
	return err
}

// waitForEvent blocks on the next pipeline event.
func waitForEvent(events <-chan adprogress.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m pruneModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m pruneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 8

	case eventMsg:
		m.apply(adprogress.Event(msg))
		if m.done {
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)

	case streamClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

// apply folds one pipeline event into the view state.
func (m *pruneModel) apply(ev adprogress.Event) {
	switch p := ev.Payload.(type) {
	case adprogress.ProgressPayload:
		m.current = p.Progress
		m.total = p.Total

	case adprogress.CompletePayload:
		m.current = p.Progress
		m.total = p.Total
		m.scored = p.Scored
		m.deleted = p.Deleted
		m.kept = p.Kept

		line := fmt.Sprintf("%s  score %d", p.CombinationID, p.Score)
		if p.Type == adprogress.OutcomeDeleted {
			m.pushLog(deletedStyle.Render("✗ " + line))
		} else {
			m.pushLog(keptStyle.Render("✓ " + line))
		}

	case adprogress.ErrorPayload:
		m.pushLog(errorStyle.Render(fmt.Sprintf("! %s  %s", p.CombinationID, p.Message)))

	case adprogress.DonePayload:
		m.done = true
		m.scored = p.Scored
		m.deleted = p.Deleted
		m.kept = p.Kept
		m.doneLine = p.Message
	}
}

func (m *pruneModel) pushLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

func (m pruneModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Pruning %s", m.adsetID)))
	sb.WriteString("\n\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.current) / float64(m.total)
	}
	sb.WriteString(m.bar.ViewAs(pct))
	sb.WriteString(fmt.Sprintf("  %d/%d\n\n", m.current, m.total))

	sb.WriteString(fmt.Sprintf("scored %d   %s   %s\n\n",
		m.scored,
		keptStyle.Render(fmt.Sprintf("kept %d", m.kept)),
		deletedStyle.Render(fmt.Sprintf("deleted %d", m.deleted)),
	))

	for _, line := range m.log {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if m.done {
		sb.WriteString("\n" + m.doneLine + "\n")
	} else {
		sb.WriteString("\n" + dimStyle.Render("q to quit") + "\n")
	}
	return sb.String()
}
