// Package message defines the clipdeck control protocol.
//
// All messages are newline-delimited JSON, one message per line. A client
// sends one request and reads one response:
//
//	TOGGLE            -> OK
//	QUIT              -> OK
//	PUSH {text}       -> OK {changed}
//	LIST {query,limit}-> HISTORY {entries}
//
// Any failure is answered with ERROR {error}.
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

const (
	TypeToggle  Type = "TOGGLE"
	TypeQuit    Type = "QUIT"
	TypePush    Type = "PUSH"
	TypeList    Type = "LIST"
	TypeHistory Type = "HISTORY"
	TypeOK      Type = "OK"
	TypeError   Type = "ERROR"
)

// Entry is a history entry as it appears on the wire. Score is set only when
// the listing was ranked against a query.
type Entry struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Score     int       `json:"score,omitempty"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// PUSH
	Text string `json:"text,omitempty"`

	// LIST
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`

	// OK (reply to PUSH)
	Changed bool `json:"changed,omitempty"`

	// HISTORY
	Entries []Entry `json:"entries,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Errorf builds an ERROR message.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// Err returns the message as a Go error if it is an ERROR, nil otherwise.
func (m *Message) Err() error {
	if m.Type != TypeError {
		return nil
	}
	return fmt.Errorf("remote: %s", m.Error)
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message decode: missing type")
	}
	return &m, nil
}
