package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	aoption "github.com/anthropics/anthropic-sdk-go/option"
	ooption "github.com/openai/openai-go/option"

	"github.com/petasbytes/go-assistants/internal/provider"
	"github.com/petasbytes/go-assistants/memory"
)

type capture struct {
	method string
	url    string
	header http.Header
	body   []byte
	calls  int
}

type fakeTransport struct {
	respStatus int
	respBody   []byte
	captured   *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.header = req.Header.Clone()
		f.captured.body = b
		f.captured.calls++
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

const anthropicReply = `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",
"content":[{"type":"text","text":"hi "},{"type":"text","text":"there"}],
"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`

const openAIReply = `{"id":"chatcmpl-1","object":"chat.completion","created":0,"model":"gpt-4",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hi"}}]}`

func conversation() []memory.Message {
	return []memory.Message{
		{Role: memory.RoleUser, Content: "document text"},
		{Role: memory.RoleUser, Content: "hello"},
		{Role: memory.RoleAssistant, Content: "hi"},
		{Role: memory.RoleUser, Content: "again"},
	}
}

type sentMessages struct {
	System   json.RawMessage `json:"system"`
	Model    string          `json:"model"`
	Messages []struct {
		Role string `json:"role"`
	} `json:"messages"`
}

func roles(t *testing.T, body []byte) (sentMessages, []string) {
	t.Helper()
	var sm sentMessages
	if err := json.Unmarshal(body, &sm); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, body)
	}
	out := make([]string, 0, len(sm.Messages))
	for _, m := range sm.Messages {
		out = append(out, m.Role)
	}
	return sm, out
}

func TestAnthropic_ReplaysWholeTranscript(t *testing.T) {
	capReq := &capture{}
	a := &provider.Anthropic{Options: []aoption.RequestOption{
		aoption.WithHTTPClient(&http.Client{Transport: &fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: capReq}}),
	}}

	got, err := a.Complete(context.Background(), provider.Request{
		Model: "claude-sonnet-4-5", Credential: "test-key", System: "be brief", Messages: conversation(),
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hi there" {
		t.Fatalf("reply: %q", got)
	}

	if capReq.method != http.MethodPost || !strings.HasSuffix(capReq.url, "/v1/messages") {
		t.Fatalf("unexpected request %s %s", capReq.method, capReq.url)
	}
	if capReq.header.Get("X-Api-Key") != "test-key" {
		t.Fatalf("credential not sent: %v", capReq.header)
	}
	sm, rs := roles(t, capReq.body)
	if strings.Join(rs, ",") != "user,user,assistant,user" {
		t.Fatalf("roles: %v", rs)
	}
	if !strings.Contains(string(sm.System), "be brief") || sm.Model != "claude-sonnet-4-5" {
		t.Fatalf("system/model: %s %s", sm.System, sm.Model)
	}
}

func TestAnthropic_EmptyInstructionsOmitSystem(t *testing.T) {
	capReq := &capture{}
	a := &provider.Anthropic{Options: []aoption.RequestOption{
		aoption.WithHTTPClient(&http.Client{Transport: &fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: capReq}}),
	}}
	if _, err := a.Complete(context.Background(), provider.Request{Model: "claude-x", Credential: "k", Messages: conversation()[:1]}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	sm, _ := roles(t, capReq.body)
	if len(sm.System) != 0 {
		t.Fatalf("system should be omitted, got %s", sm.System)
	}
}

func TestAnthropic_BlankCredentialUsesEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	capReq := &capture{}
	a := &provider.Anthropic{Options: []aoption.RequestOption{
		aoption.WithHTTPClient(&http.Client{Transport: &fakeTransport{respStatus: 200, respBody: []byte(anthropicReply), captured: capReq}}),
	}}
	if _, err := a.Complete(context.Background(), provider.Request{Model: "claude-x", Messages: conversation()[:1]}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := capReq.header.Get("X-Api-Key"); got != "env-key" {
		t.Fatalf("X-Api-Key = %q, want environment key", got)
	}
}

func TestAnthropic_UpstreamError(t *testing.T) {
	body := `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`
	a := &provider.Anthropic{Options: []aoption.RequestOption{
		aoption.WithHTTPClient(&http.Client{Transport: &fakeTransport{respStatus: 400, respBody: []byte(body)}}),
	}}
	if _, err := a.Complete(context.Background(), provider.Request{Model: "claude-x", Credential: "k", Messages: conversation()}); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenAI_SystemFirstThenTranscript(t *testing.T) {
	capReq := &capture{}
	o := &provider.OpenAI{Options: []ooption.RequestOption{
		ooption.WithHTTPClient(&http.Client{Transport: &fakeTransport{respStatus: 200, respBody: []byte(openAIReply), captured: capReq}}),
	}}

	got, err := o.Complete(context.Background(), provider.Request{
		Model: "gpt-4", Credential: "test-key", System: "be brief", Messages: conversation(),
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hi" {
		t.Fatalf("reply: %q", got)
	}

	if !strings.HasSuffix(capReq.url, "/chat/completions") {
		t.Fatalf("url: %s", capReq.url)
	}
	if capReq.header.Get("Authorization") != "Bearer test-key" {
		t.Fatalf("credential not sent: %v", capReq.header)
	}
	_, rs := roles(t, capReq.body)
	if strings.Join(rs, ",") != "system,user,user,assistant,user" {
		t.Fatalf("roles: %v", rs)
	}
	if !strings.Contains(string(capReq.body), "document text") {
		t.Fatalf("context entry not replayed: %s", capReq.body)
	}
}

func TestOpenAI_BlankCredentialUsesEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	capReq := &capture{}
	o := &provider.OpenAI{Options: []ooption.RequestOption{
		ooption.WithHTTPClient(&http.Client{Transport: &fakeTransport{respStatus: 200, respBody: []byte(openAIReply), captured: capReq}}),
	}}

	if _, err := o.Complete(context.Background(), provider.Request{Model: "gpt-4", Credential: "  ", Messages: conversation()}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := capReq.header.Get("Authorization"); got != "Bearer env-key" {
		t.Fatalf("Authorization = %q, want environment key", got)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	body := `{"id":"x","object":"chat.completion","created":0,"model":"gpt-4","choices":[]}`
	o := &provider.OpenAI{Options: []ooption.RequestOption{
		ooption.WithHTTPClient(&http.Client{Transport: &fakeTransport{respStatus: 200, respBody: []byte(body)}}),
	}}
	_, err := o.Complete(context.Background(), provider.Request{Model: "gpt-4", Credential: "k", Messages: conversation()})
	if !errors.Is(err, provider.ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
}

type recorder struct {
	name  string
	calls *[]string
}

func (r recorder) Complete(_ context.Context, req provider.Request) (string, error) {
	*r.calls = append(*r.calls, r.name+":"+req.Model)
	return r.name, nil
}

func TestRouter_ByModelFamily(t *testing.T) {
	var calls []string
	r := &provider.Router{
		Anthropic: recorder{name: "anthropic", calls: &calls},
		OpenAI:    recorder{name: "openai", calls: &calls},
	}
	for _, m := range []string{"claude-sonnet-4-5", "gpt-4", "Claude-3-opus", "o3-mini"} {
		if _, err := r.Complete(context.Background(), provider.Request{Model: m}); err != nil {
			t.Fatalf("Complete(%s): %v", m, err)
		}
	}
	want := "anthropic:claude-sonnet-4-5,openai:gpt-4,anthropic:Claude-3-opus,openai:o3-mini"
	if got := strings.Join(calls, ","); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}
