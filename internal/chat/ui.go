package chat

//go:generate go run go.uber.org/mock/mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

import "time"

// UI is the external user interface. Every method except PromptUsername is
// called only from the interactive goroutine.
type UI interface {
	// PromptUsername asks the user for a name. An empty result means none
	// was given.
	PromptUsername() string

	// ShowError presents a fatal error.
	ShowError(title, message string)

	// AppendChatLine adds one line to the transcript.
	AppendChatLine(at time.Time, sender, body string, isSelf bool)

	// SetTypingIndicator replaces the "who is typing" text. Empty clears it.
	SetTypingIndicator(text string)

	// RingAlert plays the audible alert for a remote message.
	RingAlert()
}
