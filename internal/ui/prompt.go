package ui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Confirm asks a yes/no question on stderr. Multi-line questions show the
// first line as the prompt and the rest as detail above it.
func Confirm(question string, bypassHint string) (bool, error) {
	if err := RequireInteraction(bypassHint); err != nil {
		return false, fmt.Errorf("confirmation required: %w", err)
	}

	m := &confirmModel{question: question}
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	if _, err := p.Run(); err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.confirmed, nil
}

type confirmModel struct {
	question  string
	confirmed bool
	cancelled bool
	answered  bool
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			m.confirmed = true
			m.answered = true
			return m, tea.Quit
		case "n", "N", "enter":
			m.confirmed = false
			m.answered = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *confirmModel) View() string {
	if m.answered || m.cancelled {
		return ""
	}
	head, detail, _ := strings.Cut(strings.TrimSpace(m.question), "\n")
	var sb strings.Builder
	if detail = strings.TrimSpace(detail); detail != "" {
		for _, ln := range strings.Split(detail, "\n") {
			sb.WriteString("  " + Muted(ln) + "\n")
		}
	}
	sb.WriteString(AccentStyle.Render("?") + " " + head + " " + MutedStyle.Render("[y/N]") + " ")
	return sb.String()
}
