package memory

import (
	"encoding/json"
	"fmt"
)

// Role tags a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole validates a persisted role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), nil
	}
	return "", fmt.Errorf("memory: unknown role %q", s)
}

// Message is one turn of a thread.
type Message struct {
	Role    Role   `json:"role" jsonschema:"enum=user,enum=assistant" jsonschema_description:"Who produced the turn."`
	Content string `json:"content" jsonschema_description:"Turn text, including ingested document text."`
}

// Transcript is the ordered, append-only history of one thread. Entries are
// never reordered or removed; the slice is replayed as-is to the completion
// call.
type Transcript struct {
	entries []Message
}

// NewTranscript returns a transcript seeded with entries, in order.
func NewTranscript(entries ...Message) *Transcript {
	t := &Transcript{}
	t.entries = append(t.entries, entries...)
	return t
}

// Append adds a turn at the end.
func (t *Transcript) Append(role Role, content string) {
	t.entries = append(t.entries, Message{Role: role, Content: content})
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the entries so callers cannot rewrite history.
func (t *Transcript) Entries() []Message {
	if t == nil {
		return []Message{}
	}
	out := make([]Message, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) MarshalJSON() ([]byte, error) {
	if len(t.entries) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(t.entries)
}

func (t *Transcript) UnmarshalJSON(data []byte) error {
	entries, err := decodeEntries(data)
	if err != nil {
		return err
	}
	t.entries = entries
	return nil
}
