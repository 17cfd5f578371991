// Package protocol implements the plain-text chat wire format and the
// framing that delimits it on a byte stream.
package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// TypingSuffix marks a unit as a presence event rather than chat.
const TypingSuffix = "<TYPING>"

const (
	typingStartMarker = "is typing"
	typingStopMarker  = "stopped typing"
	chatSeparator     = ":"
)

var (
	// ErrEmptySender is returned when encoding a message without a sender.
	ErrEmptySender = errors.New("sender must not be empty")

	// ErrInvalidSender is returned by ValidateSender for names containing
	// the chat separator, the typing suffix or a line break.
	ErrInvalidSender = errors.New("sender contains reserved characters")

	// ErrMalformed matches every *DecodeError.
	ErrMalformed = errors.New("malformed message")
)

// Kind represents the type of message
type Kind int

const (
	KindChat Kind = iota
	KindTypingStart
	KindTypingStop
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindChat:
		return "CHAT"
	case KindTypingStart:
		return "TYPING_START"
	case KindTypingStop:
		return "TYPING_STOP"
	default:
		return "UNKNOWN"
	}
}

// Message is a decoded chat or presence event.
// Body is only meaningful for KindChat.
type Message struct {
	Kind   Kind
	Sender string
	Body   string
}

// Chat builds a chat message.
func Chat(sender, body string) Message {
	return Message{Kind: KindChat, Sender: sender, Body: body}
}

// TypingStart builds a typing-start presence message.
func TypingStart(sender string) Message {
	return Message{Kind: KindTypingStart, Sender: sender}
}

// TypingStop builds a typing-stop presence message.
func TypingStop(sender string) Message {
	return Message{Kind: KindTypingStop, Sender: sender}
}

// DecodeError describes an inbound unit that could not be classified.
type DecodeError struct {
	Raw    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode message %q: %s", e.Raw, e.Reason)
}

// Is lets errors.Is(err, ErrMalformed) match any DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

// Encode encodes the message into its wire text.
func (m Message) Encode() ([]byte, error) {
	switch m.Kind {
	case KindChat:
		return EncodeChat(m.Sender, m.Body)
	case KindTypingStart:
		return EncodeTypingStart(m.Sender)
	case KindTypingStop:
		return EncodeTypingStop(m.Sender)
	default:
		return nil, fmt.Errorf("failed to encode message: unknown kind %d", m.Kind)
	}
}

// Label is the text shown for the message in the typing indicator or
// transcript. A typing stop has no label.
func (m Message) Label() string {
	switch m.Kind {
	case KindTypingStart:
		return m.Sender + " " + typingStartMarker + "..."
	case KindTypingStop:
		return ""
	default:
		return m.Sender + chatSeparator + " " + m.Body
	}
}

// EncodeChat produces "{sender}: {body}".
func EncodeChat(sender, body string) ([]byte, error) {
	if sender == "" {
		return nil, ErrEmptySender
	}
	return []byte(sender + chatSeparator + " " + body), nil
}

// EncodeTypingStart produces "{sender} is typing...<TYPING>".
func EncodeTypingStart(sender string) ([]byte, error) {
	if sender == "" {
		return nil, ErrEmptySender
	}
	return []byte(sender + " " + typingStartMarker + "..." + TypingSuffix), nil
}

// EncodeTypingStop produces "{sender} stopped typing<TYPING>".
func EncodeTypingStop(sender string) ([]byte, error) {
	if sender == "" {
		return nil, ErrEmptySender
	}
	return []byte(sender + " " + typingStopMarker + TypingSuffix), nil
}

// Decode classifies one already-delimited unit of wire text.
func Decode(data []byte) (Message, error) {
	text := string(data)

	if info, ok := strings.CutSuffix(text, TypingSuffix); ok {
		return decodeTyping(text, info)
	}

	sender, rest, ok := strings.Cut(text, chatSeparator)
	if !ok {
		return Message{}, &DecodeError{Raw: text, Reason: "missing separator"}
	}
	if sender == "" {
		return Message{}, &DecodeError{Raw: text, Reason: "empty sender"}
	}
	return Chat(sender, strings.TrimPrefix(rest, " ")), nil
}

func decodeTyping(raw, info string) (Message, error) {
	kind, marker := classifyTyping(info)

	// the sender may itself contain a marker, so cut at the last one
	idx := strings.LastIndex(info, marker)
	if idx < 0 {
		return Message{}, &DecodeError{Raw: raw, Reason: "typing event without marker"}
	}
	sender := strings.TrimSuffix(info[:idx], " ")
	if sender == "" {
		return Message{}, &DecodeError{Raw: raw, Reason: "empty sender"}
	}
	return Message{Kind: kind, Sender: sender}, nil
}

func classifyTyping(info string) (Kind, string) {
	switch {
	case strings.HasSuffix(info, typingStopMarker):
		return KindTypingStop, typingStopMarker
	case strings.HasSuffix(info, typingStartMarker+"..."):
		return KindTypingStart, typingStartMarker
	case strings.Contains(info, typingStopMarker):
		return KindTypingStop, typingStopMarker
	default:
		return KindTypingStart, typingStartMarker
	}
}

// ValidateSender reports whether name can be used as a sender without
// making its own messages ambiguous on the wire.
func ValidateSender(name string) error {
	switch {
	case name == "":
		return ErrEmptySender
	case strings.Contains(name, chatSeparator),
		strings.Contains(name, TypingSuffix),
		strings.ContainsAny(name, "\r\n"):
		return ErrInvalidSender
	}
	return nil
}
