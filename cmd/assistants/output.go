package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/go-assistants/internal/registry"
	"github.com/petasbytes/go-assistants/memory"
)

// render writes v in the requested format; text is produced lazily.
func render(w io.Writer, format string, v any, text func() string) error {
	switch strings.ToLower(format) {
	case "", "text":
		_, err := io.WriteString(w, text())
		return err
	case "json":
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return writeJSONBytes(w, b)
	case "yaml", "yml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return usageError{msg: fmt.Sprintf("unknown format %q (want text, json or yaml)", format)}
}

// writeJSONBytes pretty-prints b, which pretty terminates with a newline.
func writeJSONBytes(w io.Writer, b []byte) error {
	_, err := w.Write(pretty.Pretty(b))
	return err
}

func transcriptText(entries []memory.Message) string {
	if len(entries) == 0 {
		return "(empty)\n"
	}
	var sb strings.Builder
	for _, m := range entries {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	return sb.String()
}

func assistantHistoryText(h registry.AssistantHistory) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Assistant: %s\n", h.Name)
	if len(h.Threads) == 0 {
		sb.WriteString("(no threads)\n")
	}
	for _, t := range h.Threads {
		fmt.Fprintf(&sb, "\n== %s ==\n", t.ID)
		sb.WriteString(transcriptText(t.Entries))
	}
	return sb.String()
}
