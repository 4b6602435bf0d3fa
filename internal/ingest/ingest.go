// Package ingest converts files and folders into transcript-ready text.
//
// Files added to a thread are first copied into the thread storage area,
// <root>/<assistant>/<threadID>/<filename>, and text is extracted from that copy, so the
// original may move or disappear without affecting the thread. The ingestor
// holds no conversation state; callers append the returned text themselves.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/petasbytes/go-assistants/internal/apperr"
	"github.com/petasbytes/go-assistants/internal/extract"
	"github.com/petasbytes/go-assistants/internal/fsops"
	"github.com/petasbytes/go-assistants/internal/safety"
)

// ErrUnsupported marks folder entries without a recognized document extension.
var ErrUnsupported = errors.New("unsupported document type")

// ContextUnit is the text taken from one source file. Only Text is persisted.
type ContextUnit struct {
	SourcePath string
	StoredPath string
	Text       string
}

// Skip records a folder entry that produced no context.
type Skip struct {
	Path   string
	Reason error
}

// Report is the outcome of a folder operation, in listing order.
type Report struct {
	Units   []ContextUnit
	Skipped []Skip
}

// Ingestor reads documents and stages them into thread storage.
type Ingestor struct {
	root      string
	extractor extract.Extractor
	log       *slog.Logger
}

// New returns an Ingestor storing thread files under root. A nil extractor
// means extract.Documents; a nil logger discards.
func New(root string, ex extract.Extractor, log *slog.Logger) (*Ingestor, error) {
	abs, err := safety.ResolveRoot(root)
	if err != nil {
		return nil, fmt.Errorf("ingest: thread storage root: %w", err)
	}
	if ex == nil {
		ex = extract.Documents{}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ingestor{root: abs, extractor: ex, log: log}, nil
}

// Root returns the absolute thread storage root.
func (in *Ingestor) Root() string { return in.root }

// ReadFile extracts the text of path. On failure it returns "" and an
// apperr.ErrDegradedRead the caller may report and move past.
func (in *Ingestor) ReadFile(path string) (string, error) {
	text, err := in.extractor.ExtractText(path)
	if err != nil {
		in.log.Warn("degraded read", "path", path, "error", err)
		return "", apperr.DegradedRead(path, err)
	}
	return text, nil
}

// ReadFolder extracts every recognized document in dir, in listing order, and
// joins the texts with a newline. Entries that are not documents or cannot be
// read are skipped and reported.
func (in *Ingestor) ReadFolder(dir string) (string, Report, error) {
	var report Report
	names, err := fsops.ListFiles(dir)
	if err != nil {
		return "", report, err
	}

	texts := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if !in.matches(name) {
			in.skip(&report, p, ErrUnsupported)
			continue
		}
		text, err := in.ReadFile(p)
		if err != nil {
			in.skip(&report, p, err)
			continue
		}
		texts = append(texts, text)
		report.Units = append(report.Units, ContextUnit{SourcePath: p, Text: text})
	}
	return strings.Join(texts, "\n"), report, nil
}

// Stage copies src into <root>/<assistant>/<threadID>/<basename(src)> and
// returns the stored path. Copy failures are degraded reads; an invalid
// assistant name, thread id or file name is a policy violation.
func (in *Ingestor) Stage(src, assistant, threadID string) (string, error) {
	dst, err := safety.ThreadFilePath(in.root, assistant, threadID, filepath.Base(src))
	if err != nil {
		return "", err
	}
	if err := fsops.CopyFile(src, dst); err != nil {
		in.log.Warn("stage failed", "path", src, "assistant", assistant, "thread", threadID, "error", err)
		return "", apperr.DegradedRead(src, err)
	}
	return dst, nil
}

// File stages src for the assistant's thread and extracts text from the
// staged copy. Any file type is accepted; non-PDF files are read as text.
func (in *Ingestor) File(src, assistant, threadID string) (ContextUnit, error) {
	stored, err := in.Stage(src, assistant, threadID)
	if err != nil {
		return ContextUnit{}, err
	}
	// Read back through the read policy so staged copies stay inside the root.
	stored, err = safety.ValidateRelPath(in.root, filepath.Join(assistant, threadID, filepath.Base(stored)))
	if err != nil {
		return ContextUnit{}, err
	}
	text, err := in.ReadFile(stored)
	if err != nil {
		return ContextUnit{}, err
	}
	return ContextUnit{SourcePath: src, StoredPath: stored, Text: text}, nil
}

// Folder runs File for every recognized document in dir, in listing order.
// Degraded files are reported in Skipped and do not stop the batch.
func (in *Ingestor) Folder(dir, assistant, threadID string) (Report, error) {
	var report Report
	names, err := fsops.ListFiles(dir)
	if err != nil {
		return report, err
	}

	for _, name := range names {
		p := filepath.Join(dir, name)
		if !in.matches(name) {
			in.skip(&report, p, ErrUnsupported)
			continue
		}
		unit, err := in.File(p, assistant, threadID)
		if errors.Is(err, apperr.ErrDegradedRead) {
			in.skip(&report, p, err)
			continue
		}
		if err != nil {
			return report, err
		}
		report.Units = append(report.Units, unit)
	}
	return report, nil
}

func (in *Ingestor) matches(name string) bool {
	return !strings.HasSuffix(name, "/") && in.extractor.Supports(name)
}

func (in *Ingestor) skip(r *Report, path string, reason error) {
	in.log.Info("skipping file", "path", path, "reason", reason)
	r.Skipped = append(r.Skipped, Skip{Path: path, Reason: reason})
}
