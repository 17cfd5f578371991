package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/omochice/typing-chat/pkg/protocol"
)

var (
	// ErrSessionEnded is returned once the connection is gone and the
	// session must be torn down.
	ErrSessionEnded = errors.New("session ended")

	// ErrEmptyUsername is returned when no usable username was provided.
	ErrEmptyUsername = errors.New("username cannot be empty")

	// ErrInvalidUsername is returned for usernames that would make the
	// user's own messages decode under another sender.
	ErrInvalidUsername = errors.New("username cannot contain ':', '<TYPING>' or line breaks")
)

// ValidateUsername trims name and checks it can be used as a sender.
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch err := protocol.ValidateSender(name); {
	case errors.Is(err, protocol.ErrEmptySender):
		return "", ErrEmptyUsername
	case err != nil:
		return "", fmt.Errorf("%w: %q", ErrInvalidUsername, name)
	}
	return name, nil
}

// Error dialog titles.
const (
	TitleConnectError  = "Connection Error"
	TitleUsernameError = "Username Error"
	TitleSendError     = "Send Error"
	TitleReceiveError  = "Receive Error"
)
