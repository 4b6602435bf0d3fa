package registry

import (
	"context"
	"errors"

	"github.com/petasbytes/go-assistants/internal/apperr"
	"github.com/petasbytes/go-assistants/internal/provider"
	"github.com/petasbytes/go-assistants/internal/safety"
	"github.com/petasbytes/go-assistants/internal/telemetry"
	"github.com/petasbytes/go-assistants/memory"
)

// ThreadHistory is one thread's transcript within an AssistantHistory.
type ThreadHistory struct {
	ID      string           `json:"id" yaml:"id"`
	Entries []memory.Message `json:"entries" yaml:"entries"`
}

// AssistantHistory is every thread of one assistant, in creation order.
type AssistantHistory struct {
	Name    string          `json:"name" yaml:"name"`
	Threads []ThreadHistory `json:"threads" yaml:"threads"`
}

func (r *Registry) thread(name, threadID string) (*Assistant, *memory.Transcript, error) {
	a, err := r.Get(name)
	if err != nil {
		return nil, nil, err
	}
	tr, ok := a.Thread(threadID)
	if !ok {
		return nil, nil, apperr.NotFound("thread %q not found for assistant %q", threadID, name)
	}
	return a, tr, nil
}

// CreateThread starts an empty thread and persists. An empty threadID
// synthesizes thread_<n+1> from the current thread count; an id already in
// use, explicit or synthesized, is a duplicate. Explicit ids name a storage
// directory and must pass safety.ValidName.
func (r *Registry) CreateThread(ctx context.Context, name, threadID string) (string, error) {
	a, err := r.Get(name)
	if err != nil {
		return "", err
	}
	synthesized := threadID == ""
	if synthesized {
		threadID = a.nextThreadID()
	} else if err := safety.ValidName(threadID); err != nil {
		return "", err
	}
	if _, ok := a.threads.Get(threadID); ok {
		return "", apperr.DuplicateEntity("thread %q already exists for assistant %q", threadID, name)
	}

	a.threads.Set(threadID, memory.NewTranscript())
	if err := r.Save(); err != nil {
		a.threads.Delete(threadID)
		return "", err
	}

	ctx = telemetry.WithScope(ctx, telemetry.Scope{Assistant: name, Thread: threadID})
	r.log.Info("thread created", "assistant", name, "thread", threadID)
	telemetry.Emit(ctx, "thread_created", map[string]any{"synthesized": synthesized})
	return threadID, nil
}

// ListThreads returns the assistant's thread ids in creation order.
func (r *Registry) ListThreads(name string) ([]string, error) {
	a, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return a.ThreadIDs(), nil
}

// SendPrompt appends prompt as a User entry, replays the instructions and the
// whole transcript to the completer, appends the reply as an Assistant entry
// and persists.
//
// When the completer fails the User entry stays in the transcript and is
// persisted, so the thread records an unanswered prompt; the error is an
// apperr.ErrExternalServiceFailure. Unknown assistants or threads fail
// before anything is written, as does an assistant with no stored credential
// when Options.Credentials cannot supply one.
func (r *Registry) SendPrompt(ctx context.Context, name, threadID, prompt string) (string, error) {
	a, tr, err := r.thread(name, threadID)
	if err != nil {
		return "", err
	}

	if _, ok := telemetry.TurnIDFromContext(ctx); !ok {
		ctx = telemetry.WithTurnID(ctx, telemetry.NewTurnID())
	}
	ctx = telemetry.WithScope(ctx, telemetry.Scope{Assistant: name, Thread: threadID})

	credential := a.credential
	if credential == "" && r.credentials != nil {
		if credential, err = r.credentials(a.model); err != nil {
			return "", err
		}
	}

	tr.Append(memory.RoleUser, prompt)
	replayed := tr.Entries()

	reply, err := r.completer.Complete(ctx, provider.Request{
		Model:      a.model,
		Credential: credential,
		System:     a.instructions,
		Messages:   replayed,
		MaxTokens:  r.maxTokens,
	})
	if err != nil {
		r.log.Error("completion failed", "assistant", name, "thread", threadID, "model", a.model, "error", err)
		telemetry.EmitPromptSent(ctx, a.model, a.instructions, prompt, "", replayed, err)
		failure := apperr.ExternalServiceFailure(err, "completion for %s/%s failed", name, threadID)
		if saveErr := r.Save(); saveErr != nil {
			return "", errors.Join(failure, saveErr)
		}
		return "", failure
	}

	tr.Append(memory.RoleAssistant, reply)
	if err := r.Save(); err != nil {
		return "", err
	}

	r.log.Debug("prompt answered", "assistant", name, "thread", threadID, "entries", tr.Len())
	telemetry.EmitPromptSent(ctx, a.model, a.instructions, prompt, reply, replayed, nil)
	return reply, nil
}

// History returns a copy of the thread's entries in order.
func (r *Registry) History(name, threadID string) ([]memory.Message, error) {
	_, tr, err := r.thread(name, threadID)
	if err != nil {
		return nil, err
	}
	return tr.Entries(), nil
}

// AssistantHistory returns every thread of name with its entries.
func (r *Registry) AssistantHistory(name string) (AssistantHistory, error) {
	a, err := r.Get(name)
	if err != nil {
		return AssistantHistory{}, err
	}
	h := AssistantHistory{Name: name, Threads: make([]ThreadHistory, 0, a.threads.Len())}
	for pair := a.threads.Oldest(); pair != nil; pair = pair.Next() {
		h.Threads = append(h.Threads, ThreadHistory{ID: pair.Key, Entries: pair.Value.Entries()})
	}
	return h, nil
}
