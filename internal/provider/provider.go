// Package provider sends a full conversation to a hosted model and returns
// the reply text. Backends are stateless: every call carries the whole
// transcript.
package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/petasbytes/go-assistants/memory"
)

// DefaultMaxTokens caps reply length when a Request leaves MaxTokens unset.
const DefaultMaxTokens int64 = 1024

// ErrEmptyReply is returned when the upstream answered without any text
// candidate to pick from.
var ErrEmptyReply = errors.New("provider: reply contained no choices")

// Request is one completion call: the system prompt plus the ordered
// transcript, replayed in full.
type Request struct {
	Model      string
	Credential string
	System     string
	Messages   []memory.Message
	MaxTokens  int64
}

func (r Request) maxTokens() int64 {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// Completer produces the next assistant turn for a conversation.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Releaser is implemented by completers that hold upstream resources for an
// assistant and must free them when the assistant is removed.
type Releaser interface {
	Release(ctx context.Context, model, credential string) error
}

// IsAnthropicModel reports whether model names a Claude model.
func IsAnthropicModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "claude")
}

// Router dispatches Claude models to Anthropic and everything else to OpenAI.
type Router struct {
	Anthropic Completer
	OpenAI    Completer
}

// NewRouter returns a Router over default-configured backends.
func NewRouter() *Router {
	return &Router{Anthropic: &Anthropic{}, OpenAI: &OpenAI{}}
}

func (r *Router) Complete(ctx context.Context, req Request) (string, error) {
	if IsAnthropicModel(req.Model) {
		return r.Anthropic.Complete(ctx, req)
	}
	return r.OpenAI.Complete(ctx, req)
}
