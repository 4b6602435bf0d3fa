package memory

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// decodeEntries reads a persisted transcript array. Besides the current
// {role, content} shape it accepts two older shapes:
//
//	{"prompt": "...", "response": "..."}  -> user entry, then assistant entry
//	{"role": "...", "text": "..."}        -> text becomes content
func decodeEntries(data []byte) ([]Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("memory: invalid transcript JSON")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsArray() {
		return nil, fmt.Errorf("memory: transcript must be an array, got %s", res.Raw)
	}

	var (
		out   []Message
		bad   error
		index int
	)
	res.ForEach(func(_, v gjson.Result) bool {
		msgs, err := decodeEntry(v)
		if err != nil {
			bad = fmt.Errorf("memory: entry %d: %w", index, err)
			return false
		}
		out = append(out, msgs...)
		index++
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return out, nil
}

func decodeEntry(v gjson.Result) ([]Message, error) {
	if !v.IsObject() {
		return nil, errors.New("not an object")
	}

	if role := v.Get("role"); role.Exists() {
		r, err := ParseRole(role.String())
		if err != nil {
			return nil, err
		}
		content := v.Get("content")
		if !content.Exists() {
			content = v.Get("text")
		}
		return []Message{{Role: r, Content: content.String()}}, nil
	}

	prompt, response := v.Get("prompt"), v.Get("response")
	if !prompt.Exists() && !response.Exists() {
		return nil, errors.New("neither role nor prompt/response present")
	}
	var out []Message
	if prompt.Exists() {
		out = append(out, Message{Role: RoleUser, Content: prompt.String()})
	}
	if response.Exists() {
		out = append(out, Message{Role: RoleAssistant, Content: response.String()})
	}
	return out, nil
}
