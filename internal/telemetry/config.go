package telemetry

import "os"

// Enabled reports whether JSONL emission is on (AGT_OBSERVE_JSON=1).
// The variable is read on every call so tests can toggle it with t.Setenv.
func Enabled() bool {
	return os.Getenv("AGT_OBSERVE_JSON") == "1"
}

// Dir returns the directory events.jsonl is written to: AGT_ARTIFACTS_DIR
// when set, otherwise .agent in the working directory.
func Dir() string {
	if d := os.Getenv("AGT_ARTIFACTS_DIR"); d != "" {
		return d
	}
	return ".agent"
}
