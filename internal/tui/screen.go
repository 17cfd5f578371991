// Package tui is a terminal implementation of chat.UI built on bubbletea.
package tui

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxTranscript = 500

var (
	selfStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	remoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	typingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Screen holds everything the user sees. Its chat.UI methods are called by
// the dispatcher from inside the bubbletea update loop, so the state needs
// no locking.
type Screen struct {
	in   io.Reader
	out  io.Writer
	bell io.Writer

	transcript []string
	typing     string
	fatal      string
	running    bool
}

// NewScreen creates a Screen reading keys from in and drawing to out. The
// alert bell is written to bell.
func NewScreen(in io.Reader, out, bell io.Writer) *Screen {
	return &Screen{in: in, out: out, bell: bell}
}

// PromptUsername runs a one-field form and returns what the user entered,
// or "" if they cancelled.
func (s *Screen) PromptUsername() string {
	p := tea.NewProgram(newPrompt(), tea.WithInput(s.in), tea.WithOutput(s.out))
	final, err := p.Run()
	if err != nil {
		return ""
	}
	return final.(prompt).value
}

// ShowError records a fatal error. Outside the chat program it is printed
// immediately; inside, it is shown until the program exits and printed
// afterwards.
func (s *Screen) ShowError(title, message string) {
	s.fatal = title + ": " + message
	if !s.running {
		s.flushError()
	}
}

// AppendChatLine adds a "[HH:MM:SS] sender: body" line to the transcript.
func (s *Screen) AppendChatLine(at time.Time, sender, body string, isSelf bool) {
	style := remoteStyle
	if isSelf {
		style = selfStyle
	}
	line := fmt.Sprintf("[%s] %s: %s", at.Format(time.TimeOnly), sender, body)
	s.transcript = append(s.transcript, style.Render(line))
	if len(s.transcript) > maxTranscript {
		s.transcript = s.transcript[len(s.transcript)-maxTranscript:]
	}
}

// SetTypingIndicator replaces the typing line.
func (s *Screen) SetTypingIndicator(text string) {
	s.typing = text
}

// RingAlert writes the terminal bell.
func (s *Screen) RingAlert() {
	if s.bell != nil {
		_, _ = io.WriteString(s.bell, "\a")
	}
}

// Transcript returns the rendered chat lines, oldest first.
func (s *Screen) Transcript() []string { return s.transcript }

// Typing returns the current typing indicator text.
func (s *Screen) Typing() string { return s.typing }

// Fatal returns the last fatal error, if any.
func (s *Screen) Fatal() string { return s.fatal }

func (s *Screen) flushError() {
	if s.fatal != "" {
		fmt.Fprintln(s.out, errorStyle.Render(s.fatal))
	}
}
