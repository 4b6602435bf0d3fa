package memory

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Threads maps thread id to transcript, in creation order.
type Threads = orderedmap.OrderedMap[string, *Transcript]

// NewThreads returns an empty thread map.
func NewThreads() *Threads {
	return orderedmap.New[string, *Transcript]()
}

// AssistantRecord is the persisted form of one assistant.
type AssistantRecord struct {
	APIKey       string   `json:"api_key"`
	Model        string   `json:"model"`
	Instructions string   `json:"instructions"`
	Threads      *Threads `json:"threads"`
}

// Snapshot is the complete durable state: assistant name to record, in
// creation order. It encodes as a single JSON object keyed by name.
type Snapshot struct {
	Assistants *orderedmap.OrderedMap[string, *AssistantRecord]
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Assistants: orderedmap.New[string, *AssistantRecord]()}
}

// Len returns the number of assistants.
func (s *Snapshot) Len() int {
	if s == nil || s.Assistants == nil {
		return 0
	}
	return s.Assistants.Len()
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	s.normalize()
	return s.Assistants.MarshalJSON()
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	s.Assistants = orderedmap.New[string, *AssistantRecord]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, s.Assistants); err != nil {
		return err
	}
	s.normalize()
	return nil
}

// normalize replaces absent thread maps and transcripts with empty ones so
// the document always encodes "threads": {} and [] rather than null.
func (s *Snapshot) normalize() {
	if s.Assistants == nil {
		s.Assistants = orderedmap.New[string, *AssistantRecord]()
	}
	for pair := s.Assistants.Oldest(); pair != nil; pair = pair.Next() {
		rec := pair.Value
		if rec == nil {
			rec = &AssistantRecord{}
			s.Assistants.Set(pair.Key, rec)
		}
		if rec.Threads == nil {
			rec.Threads = NewThreads()
		}
		for tp := rec.Threads.Oldest(); tp != nil; tp = tp.Next() {
			if tp.Value == nil {
				rec.Threads.Set(tp.Key, NewTranscript())
			}
		}
	}
}
