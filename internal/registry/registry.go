// Package registry is the single source of truth for assistants, their
// threads and the ordered transcripts replayed to the completion call.
//
// Every successful mutation rewrites the whole snapshot through the Store.
// A Registry is not safe for concurrent use, and nothing coordinates two
// processes sharing one document: the later save wins.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/petasbytes/go-assistants/internal/apperr"
	"github.com/petasbytes/go-assistants/internal/ingest"
	"github.com/petasbytes/go-assistants/internal/provider"
	"github.com/petasbytes/go-assistants/internal/safety"
	"github.com/petasbytes/go-assistants/internal/telemetry"
	"github.com/petasbytes/go-assistants/memory"
)

// EmptyListing is the single display line List returns when no assistants
// exist. It is a marker for display, not data.
const EmptyListing = "No assistants created."

// DefaultModel is used by Create when no model is given and Options leaves
// DefaultModel empty.
const DefaultModel = "gpt-4"

// Options wires a Registry to its collaborators. Store is required; nil
// collaborators fall back to defaults.
type Options struct {
	Store        Store
	Completer    provider.Completer // nil means provider.NewRouter()
	Ingestor     *ingest.Ingestor   // nil means an ingestor rooted at thread_files
	Logger       *slog.Logger       // nil discards
	DefaultModel string
	MaxTokens    int64

	// Credentials resolves a credential for model when an assistant has
	// none stored. Nil leaves the request credential empty.
	Credentials func(model string) (string, error)
}

type Registry struct {
	store        Store
	completer    provider.Completer
	ingestor     *ingest.Ingestor
	log          *slog.Logger
	defaultModel string
	maxTokens    int64
	credentials  func(model string) (string, error)

	assistants *orderedmap.OrderedMap[string, *Assistant]
}

// Summary is the data form of one List line.
type Summary struct {
	Name  string `json:"name" yaml:"name"`
	Model string `json:"model" yaml:"model"`
}

// Open loads the snapshot from opts.Store and returns a Registry over it. A
// missing document yields an empty registry; a malformed one is an error.
func Open(ctx context.Context, opts Options) (*Registry, error) {
	if opts.Store == nil {
		return nil, errors.New("registry: nil store")
	}
	r := &Registry{
		store:        opts.Store,
		completer:    opts.Completer,
		ingestor:     opts.Ingestor,
		log:          opts.Logger,
		defaultModel: opts.DefaultModel,
		maxTokens:    opts.MaxTokens,
		credentials:  opts.Credentials,
		assistants:   orderedmap.New[string, *Assistant](),
	}
	if r.log == nil {
		r.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.completer == nil {
		r.completer = provider.NewRouter()
	}
	if r.defaultModel == "" {
		r.defaultModel = DefaultModel
	}
	if r.ingestor == nil {
		in, err := ingest.New("thread_files", nil, r.log)
		if err != nil {
			return nil, err
		}
		r.ingestor = in
	}

	snap, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("registry: load: %w", err)
	}
	for pair := snap.Assistants.Oldest(); pair != nil; pair = pair.Next() {
		r.assistants.Set(pair.Key, fromRecord(pair.Key, pair.Value))
	}

	r.log.Debug("registry loaded", "assistants", r.assistants.Len())
	telemetry.Emit(ctx, "registry_loaded", map[string]any{"assistants": r.assistants.Len()})
	return r, nil
}

func (r *Registry) snapshot() *memory.Snapshot {
	s := memory.NewSnapshot()
	for pair := r.assistants.Oldest(); pair != nil; pair = pair.Next() {
		s.Assistants.Set(pair.Key, pair.Value.record())
	}
	return s
}

// Save rewrites the full snapshot. Mutating operations call it themselves.
func (r *Registry) Save() error {
	if err := r.store.Save(r.snapshot()); err != nil {
		return fmt.Errorf("registry: save: %w", err)
	}
	return nil
}

// Create registers a new assistant and persists. When instructions names an
// existing file its text is used; a directory contributes the joined text
// of its documents. Unreadable instruction sources degrade to empty text.
// The name becomes a thread storage directory, so it must pass
// safety.ValidName.
func (r *Registry) Create(ctx context.Context, name, model, instructions, credential string) (*Assistant, error) {
	if err := safety.ValidName(name); err != nil {
		return nil, err
	}
	if _, ok := r.assistants.Get(name); ok {
		return nil, apperr.DuplicateEntity("assistant %q already exists", name)
	}
	if model == "" {
		model = r.defaultModel
	}

	a := newAssistant(name, model, r.resolveInstructions(instructions), credential)
	r.assistants.Set(name, a)
	if err := r.Save(); err != nil {
		r.assistants.Delete(name)
		return nil, err
	}

	ctx = telemetry.WithScope(ctx, telemetry.Scope{Assistant: name})
	r.log.Info("assistant created", "name", name, "model", model)
	telemetry.Emit(ctx, "assistant_created", map[string]any{"model": model})
	return a, nil
}

func (r *Registry) resolveInstructions(instructions string) string {
	if instructions == "" {
		return ""
	}
	fi, err := os.Stat(instructions)
	if err != nil {
		return instructions
	}
	if fi.IsDir() {
		text, report, err := r.ingestor.ReadFolder(instructions)
		if err != nil {
			r.log.Warn("instructions folder unreadable", "path", instructions, "error", err)
			return ""
		}
		if len(report.Skipped) > 0 {
			r.log.Info("instructions folder entries skipped", "path", instructions, "skipped", len(report.Skipped))
		}
		return text
	}
	// ReadFile already logs the degraded read.
	text, _ := r.ingestor.ReadFile(instructions)
	return text
}

// Get returns the shared assistant for name.
func (r *Registry) Get(name string) (*Assistant, error) {
	a, ok := r.assistants.Get(name)
	if !ok {
		return nil, apperr.NotFound("assistant %q not found", name)
	}
	return a, nil
}

// Remove releases any upstream resources the assistant holds, detaches it
// and persists. A failed release leaves the assistant registered.
func (r *Registry) Remove(ctx context.Context, name string) error {
	a, err := r.Get(name)
	if err != nil {
		return err
	}
	if rel, ok := r.completer.(provider.Releaser); ok {
		if err := rel.Release(ctx, a.model, a.credential); err != nil {
			return apperr.ExternalServiceFailure(err, "release assistant %q", name)
		}
	}

	r.assistants.Delete(name)
	if err := r.Save(); err != nil {
		return err
	}

	ctx = telemetry.WithScope(ctx, telemetry.Scope{Assistant: name})
	r.log.Info("assistant removed", "name", name)
	telemetry.Emit(ctx, "assistant_removed", map[string]any{"threads": a.threads.Len()})
	return nil
}

// Summaries returns name and model per assistant in creation order.
func (r *Registry) Summaries() []Summary {
	out := make([]Summary, 0, r.assistants.Len())
	for pair := r.assistants.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Summary{Name: pair.Key, Model: pair.Value.model})
	}
	return out
}

// List returns one display line per assistant, or the EmptyListing marker.
func (r *Registry) List() []string {
	if r.assistants.Len() == 0 {
		return []string{EmptyListing}
	}
	lines := make([]string, 0, r.assistants.Len())
	for _, s := range r.Summaries() {
		lines = append(lines, fmt.Sprintf("Name: %s, Model: %s", s.Name, s.Model))
	}
	return lines
}

// SetModel changes the model used for future turns and persists.
func (r *Registry) SetModel(name, model string) error {
	a, err := r.Get(name)
	if err != nil {
		return err
	}
	if model == "" {
		return fmt.Errorf("registry: empty model for %q", name)
	}
	a.model = model
	r.log.Info("model changed", "name", name, "model", model)
	return r.Save()
}

// SetCredential replaces the stored credential and persists.
func (r *Registry) SetCredential(name, credential string) error {
	a, err := r.Get(name)
	if err != nil {
		return err
	}
	a.credential = credential
	r.log.Info("credential changed", "name", name)
	return r.Save()
}
