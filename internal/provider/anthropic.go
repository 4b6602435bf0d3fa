package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/go-assistants/memory"
)

// APIVersion is the Anthropic API version the SDK targets.
const APIVersion = "2023-06-01"

// Anthropic completes conversations with the Messages API. Options are
// appended after the per-request API key, so tests can inject a transport.
type Anthropic struct {
	Options []aoption.RequestOption
}

func (a *Anthropic) client(credential string) anthropic.Client {
	var opts []aoption.RequestOption
	if key := strings.TrimSpace(credential); key != "" {
		opts = append(opts, aoption.WithAPIKey(key))
	}
	return anthropic.NewClient(append(opts, a.Options...)...)
}

func anthropicMessages(entries []memory.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(entries))
	for _, m := range entries {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == memory.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: req.maxTokens(),
		Messages:  anthropicMessages(req.Messages),
	}
	if s := strings.TrimSpace(req.System); s != "" {
		params.System = []anthropic.TextBlockParam{{Text: s}}
	}

	c := a.client(req.Credential)
	msg, err := c.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(v.Text)
		}
	}
	return sb.String(), nil
}
