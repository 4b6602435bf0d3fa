// Package metrics derives size features from prompt and transcript text.
// Only counts leave this package; raw text never does.
package metrics

import (
	"strings"
	"unicode/utf8"

	"github.com/petasbytes/go-assistants/memory"
)

// Features holds basic size counts for one piece of text.
type Features struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// CountFeatures computes byte, rune, word and line counts. Words split on
// Unicode whitespace; an empty string has zero lines, otherwise lines are one
// plus the number of '\n'.
func CountFeatures(s string) Features {
	f := Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
	}
	if s != "" {
		f.Lines = 1 + strings.Count(s, "\n")
	}
	return f
}

// entryOverhead is the fixed per-entry cost added by EstimateTokens for role
// and framing.
const entryOverhead = 4

// TranscriptStats summarizes what a completion call replays.
type TranscriptStats struct {
	Entries          int `json:"entries"`
	UserEntries      int `json:"user_entries"`
	AssistantEntries int `json:"assistant_entries"`
	EstimatedTokens  int `json:"estimated_tokens"`
}

// Summarize counts entries by role and estimates the replayed input size.
func Summarize(system string, entries []memory.Message) TranscriptStats {
	st := TranscriptStats{Entries: len(entries), EstimatedTokens: EstimateTokens(system, entries)}
	for _, m := range entries {
		switch m.Role {
		case memory.RoleUser:
			st.UserEntries++
		case memory.RoleAssistant:
			st.AssistantEntries++
		}
	}
	return st
}

// EstimateTokens is a deterministic input-size heuristic: system runes plus,
// per entry, content runes and a fixed overhead.
func EstimateTokens(system string, entries []memory.Message) int {
	total := utf8.RuneCountInString(system)
	for _, m := range entries {
		total += utf8.RuneCountInString(m.Content) + entryOverhead
	}
	return total
}
