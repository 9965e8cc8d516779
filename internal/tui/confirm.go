package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"tasnim.dev/lambda-logs/internal/tui/theme"
)

// previewLimit caps how many items the prompt lists before summarizing the rest.
const previewLimit = 10

// ConfirmModel is a yes/no prompt shown before a destructive operation.
type ConfirmModel struct {
	title     string
	items     []string
	confirmed bool
	done      bool
}

// NewConfirmModel creates a prompt asking about title, previewing items.
func NewConfirmModel(title string, items []string) ConfirmModel {
	return ConfirmModel{title: title, items: items}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch msg.String() {
		case "y", "Y":
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "enter", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ConfirmModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}

	var b strings.Builder
	b.WriteString(theme.WarningStyle.Render(m.title) + "\n\n")
	for i, item := range m.items {
		if i == previewLimit {
			b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("  … and %d more", len(m.items)-previewLimit)) + "\n")
			break
		}
		b.WriteString("  " + item + "\n")
	}
	b.WriteString(theme.HelpStyle.Render("y confirm • n/esc cancel"))

	return tea.NewView(theme.PromptBoxStyle.Render(b.String()) + "\n")
}

// Confirmed reports whether the user answered yes.
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Confirm runs the prompt on the terminal and returns the answer.
func Confirm(title string, items []string) (bool, error) {
	final, err := tea.NewProgram(NewConfirmModel(title, items)).Run()
	if err != nil {
		return false, fmt.Errorf("running prompt: %w", err)
	}
	m, ok := final.(ConfirmModel)
	return ok && m.Confirmed(), nil
}
