// Package telemetry appends structured JSONL events describing registry
// activity. Events never carry prompt, response or credential text.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Emit writes a single JSON line to <Dir()>/events.jsonl when Enabled.
// It augments fields with RFC3339Nano time, the event name and whatever turn
// ID and scope ctx carries. Failures are reported on stderr and otherwise
// ignored.
func Emit(ctx context.Context, name string, fields map[string]any) {
	if !Enabled() {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+5)
	for k, v := range fields {
		m[k] = v
	}
	if id, ok := TurnIDFromContext(ctx); ok {
		m["turn_id"] = id
	}
	if s := ScopeFromContext(ctx); s.Assistant != "" {
		m["assistant"] = s.Assistant
		if s.Thread != "" {
			m["thread"] = s.Thread
		}
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}

	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", dir, err)
		return
	}

	path := filepath.Join(dir, "events.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", path, err)
	}
}
