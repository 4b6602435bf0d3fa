package telemetry

import (
	"context"

	"github.com/petasbytes/go-assistants/internal/metrics"
	"github.com/petasbytes/go-assistants/memory"
)

// FeaturesVersion identifies the shape of the feature payloads below.
const FeaturesVersion = "1"

func featureFields(f metrics.Features) map[string]any {
	return map[string]any{
		"bytes": f.Bytes,
		"runes": f.Runes,
		"words": f.Words,
		"lines": f.Lines,
	}
}

// EmitPromptSent records a completed or failed turn. Only counts are
// emitted: features of the prompt and reply, and a summary of the replayed
// transcript.
func EmitPromptSent(ctx context.Context, model, instructions, prompt, reply string, replayed []memory.Message, err error) {
	if !Enabled() {
		return
	}
	st := metrics.Summarize(instructions, replayed)
	fields := map[string]any{
		"features_version": FeaturesVersion,
		"model":            model,
		"user":             featureFields(metrics.CountFeatures(prompt)),
		"transcript": map[string]any{
			"entries":           st.Entries,
			"user_entries":      st.UserEntries,
			"assistant_entries": st.AssistantEntries,
			"estimated_tokens":  st.EstimatedTokens,
		},
		"ok": err == nil,
	}
	if err == nil {
		fields["reply"] = featureFields(metrics.CountFeatures(reply))
	}
	Emit(ctx, "prompt_sent", fields)
}

// EmitContextIngested records text appended to a thread from files.
func EmitContextIngested(ctx context.Context, files, skipped int, texts ...string) {
	if !Enabled() {
		return
	}
	var total metrics.Features
	for _, t := range texts {
		f := metrics.CountFeatures(t)
		total.Bytes += f.Bytes
		total.Runes += f.Runes
		total.Words += f.Words
		total.Lines += f.Lines
	}
	Emit(ctx, "context_ingested", map[string]any{
		"features_version": FeaturesVersion,
		"files":            files,
		"skipped":          skipped,
		"text":             featureFields(total),
	})
}
