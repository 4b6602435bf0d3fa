package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"

	"github.com/petasbytes/go-assistants/memory"
)

// OpenAI completes conversations with the Chat Completions API. Options are
// appended after the per-request API key.
type OpenAI struct {
	Options []ooption.RequestOption
}

// client leaves a blank credential to the SDK's OPENAI_API_KEY default.
func (o *OpenAI) client(credential string) openai.Client {
	var opts []ooption.RequestOption
	if key := strings.TrimSpace(credential); key != "" {
		opts = append(opts, ooption.WithAPIKey(key))
	}
	return openai.NewClient(append(opts, o.Options...)...)
}

func openAIMessages(system string, entries []memory.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(entries)+1)
	if s := strings.TrimSpace(system); s != "" {
		out = append(out, openai.SystemMessage(s))
	}
	for _, m := range entries {
		if m.Role == memory.RoleAssistant {
			out = append(out, openai.AssistantMessage(m.Content))
		} else {
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(req.Model),
		Messages:  openAIMessages(req.System, req.Messages),
		MaxTokens: openai.Int(req.maxTokens()),
	}

	c := o.client(req.Credential)
	resp, err := c.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
