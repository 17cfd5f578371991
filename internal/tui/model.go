package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/omochice/typing-chat/internal/chat"
)

// Session is the part of *chat.Session the terminal drives.
type Session interface {
	SendChat(text string) error
	Keystroke()
	Tick(now time.Time) error
	Drain() error
	Ready() <-chan struct{}
}

type tickMsg time.Time

type inboxMsg struct{}

// Model is the bubbletea model for a running chat session. Update is the
// interactive goroutine: every session and screen mutation happens there.
type Model struct {
	session  Session
	screen   *Screen
	input    textinput.Model
	interval time.Duration
	height   int
	err      error
}

// NewModel creates a Model that ticks the session every interval.
func NewModel(session Session, screen *Screen, interval time.Duration) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message and press Enter"
	ti.Focus()

	return &Model{
		session:  session,
		screen:   screen,
		input:    ti,
		interval: interval,
		height:   24,
	}
}

// Err returns why the session ended, or nil if the user quit.
func (m *Model) Err() error { return m.err }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick(), m.waitInbox())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitInbox() tea.Cmd {
	ready := m.session.Ready()
	return func() tea.Msg {
		<-ready
		return inboxMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if err := m.session.Tick(time.Time(msg)); err != nil {
			return m.end(err)
		}
		return m, m.tick()

	case inboxMsg:
		if err := m.session.Drain(); err != nil {
			return m.end(err)
		}
		return m, m.waitInbox()

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if err := m.session.SendChat(m.input.Value()); err != nil {
				m.screen.ShowError(chat.TitleSendError, "Could not send message.")
				return m.end(err)
			}
			m.input.Reset()
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.session.Keystroke()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) end(err error) (tea.Model, tea.Cmd) {
	m.err = err
	return m, tea.Quit
}

func (m *Model) View() string {
	// transcript + typing line + blank + input
	visible := max(m.height-3, 1)
	lines := m.screen.Transcript()
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}

	var b strings.Builder
	for i := len(lines); i < visible; i++ {
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteByte('\n')
	b.WriteString(typingStyle.Render(m.screen.Typing()))
	b.WriteString("\n\n")
	if fatal := m.screen.Fatal(); fatal != "" {
		b.WriteString(errorStyle.Render(fatal))
	} else {
		b.WriteString(m.input.View())
	}
	return b.String()
}

// Run drives session until the user quits or the session ends. A fatal
// error shown during the run is printed once the terminal is restored.
func Run(session Session, screen *Screen, interval time.Duration) error {
	m := NewModel(session, screen, interval)

	screen.running = true
	p := tea.NewProgram(m,
		tea.WithInput(screen.in),
		tea.WithOutput(screen.out),
		tea.WithAltScreen())
	_, err := p.Run()
	screen.running = false

	screen.flushError()
	if err != nil {
		return err
	}
	return m.Err()
}
