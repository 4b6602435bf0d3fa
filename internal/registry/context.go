package registry

import (
	"context"

	"github.com/petasbytes/go-assistants/internal/ingest"
	"github.com/petasbytes/go-assistants/internal/telemetry"
	"github.com/petasbytes/go-assistants/memory"
)

// AddContextFile copies path into <root>/<assistant>/<thread>/, extracts its
// text and appends it as a User entry. Any file type is accepted. A degraded
// read appends nothing and returns an apperr.ErrDegradedRead.
func (r *Registry) AddContextFile(ctx context.Context, name, threadID, path string) (ingest.ContextUnit, error) {
	_, tr, err := r.thread(name, threadID)
	if err != nil {
		return ingest.ContextUnit{}, err
	}
	unit, err := r.ingestor.File(path, name, threadID)
	if err != nil {
		return ingest.ContextUnit{}, err
	}

	tr.Append(memory.RoleUser, unit.Text)
	if err := r.Save(); err != nil {
		return ingest.ContextUnit{}, err
	}

	ctx = telemetry.WithScope(ctx, telemetry.Scope{Assistant: name, Thread: threadID})
	r.log.Info("context file added", "assistant", name, "thread", threadID, "path", path)
	telemetry.EmitContextIngested(ctx, 1, 0, unit.Text)
	return unit, nil
}

// AddContextFolder adds every recognized document in dir, in listing order,
// one User entry per file. Skipped and degraded files are reported, not
// raised. The snapshot is persisted once after the batch.
func (r *Registry) AddContextFolder(ctx context.Context, name, threadID, dir string) (ingest.Report, error) {
	_, tr, err := r.thread(name, threadID)
	if err != nil {
		return ingest.Report{}, err
	}
	report, err := r.ingestor.Folder(dir, name, threadID)
	// Units staged before a fatal error are still appended so the transcript
	// matches what was copied into thread storage.
	texts := make([]string, 0, len(report.Units))
	for _, u := range report.Units {
		tr.Append(memory.RoleUser, u.Text)
		texts = append(texts, u.Text)
	}
	if len(report.Units) > 0 {
		if saveErr := r.Save(); saveErr != nil {
			return report, saveErr
		}
	}
	if err != nil {
		return report, err
	}

	ctx = telemetry.WithScope(ctx, telemetry.Scope{Assistant: name, Thread: threadID})
	r.log.Info("context folder added", "assistant", name, "thread", threadID, "path", dir,
		"files", len(report.Units), "skipped", len(report.Skipped))
	telemetry.EmitContextIngested(ctx, len(report.Units), len(report.Skipped), texts...)
	return report, nil
}
