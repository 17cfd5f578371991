package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type prompt struct {
	input textinput.Model
	value string
}

func newPrompt() prompt {
	ti := textinput.New()
	ti.Placeholder = "username"
	ti.CharLimit = 32
	ti.Focus()
	return prompt{input: ti}
}

func (p prompt) Init() tea.Cmd {
	return textinput.Blink
}

func (p prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			p.value = p.input.Value()
			return p, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			p.value = ""
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p prompt) View() string {
	return "Enter your username:\n\n" + p.input.View() + "\n"
}
