package memory

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// documentShape mirrors the encoded Snapshot with plain maps so the schema
// reflector can see through the ordered containers.
type documentShape map[string]assistantShape

type assistantShape struct {
	APIKey       string               `json:"api_key" jsonschema_description:"Credential used for completion calls. Never logged."`
	Model        string               `json:"model" jsonschema_description:"Model identifier."`
	Instructions string               `json:"instructions" jsonschema_description:"System directive prefixed to every completion call."`
	Threads      map[string][]Message `json:"threads" jsonschema_description:"Thread id to ordered transcript."`
}

// Schema returns the JSON Schema of the snapshot document.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(documentShape{})
	s.Title = "assistant registry snapshot"
	s.Description = "Assistant name to configuration and threads."
	return json.MarshalIndent(s, "", "  ")
}
