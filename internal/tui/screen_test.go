package tui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/omochice/typing-chat/internal/chat"
	"github.com/stretchr/testify/assert"
)

func TestScreen_AppendChatLine(t *testing.T) {
	screen := NewScreen(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	at := time.Date(2024, 1, 1, 15, 9, 26, 0, time.UTC)

	screen.AppendChatLine(at, "alice", "hello", true)
	screen.AppendChatLine(at, "bob", "hi", false)

	lines := screen.Transcript()
	if assert.Len(t, lines, 2) {
		assert.Contains(t, lines[0], "[15:09:26] alice: hello")
		assert.Contains(t, lines[1], "[15:09:26] bob: hi")
	}
}

func TestScreen_TranscriptIsBounded(t *testing.T) {
	screen := NewScreen(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})

	for i := 0; i < maxTranscript+10; i++ {
		screen.AppendChatLine(time.Now(), "bob", fmt.Sprint(i), false)
	}

	lines := screen.Transcript()
	assert.Len(t, lines, maxTranscript)
	assert.Contains(t, lines[len(lines)-1], fmt.Sprint(maxTranscript+9))
}

func TestScreen_RingAlert(t *testing.T) {
	var bell bytes.Buffer
	screen := NewScreen(strings.NewReader(""), &bytes.Buffer{}, &bell)

	screen.RingAlert()
	screen.RingAlert()

	assert.Equal(t, "\a\a", bell.String())
}

func TestScreen_ShowError(t *testing.T) {
	t.Run("outside the program prints immediately", func(t *testing.T) {
		var out bytes.Buffer
		screen := NewScreen(strings.NewReader(""), &out, &bytes.Buffer{})

		screen.ShowError(chat.TitleConnectError, "Could not connect to server.")

		assert.Contains(t, out.String(), "Connection Error: Could not connect to server.")
	})

	t.Run("inside the program is deferred", func(t *testing.T) {
		var out bytes.Buffer
		screen := NewScreen(strings.NewReader(""), &out, &bytes.Buffer{})
		screen.running = true

		screen.ShowError(chat.TitleReceiveError, "Connection lost.")

		assert.Empty(t, out.String())
		assert.Equal(t, "Receive Error: Connection lost.", screen.Fatal())
	})
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		name  string
		final tea.KeyType
		want  string
	}{
		{name: "enter accepts", final: tea.KeyEnter, want: "alice"},
		{name: "esc cancels", final: tea.KeyEsc, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m tea.Model = newPrompt()
			for _, r := range "alice" {
				m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
			}
			m, cmd := m.Update(tea.KeyMsg{Type: tt.final})

			assert.True(t, isQuit(cmd))
			assert.Equal(t, tt.want, m.(prompt).value)
		})
	}
}
