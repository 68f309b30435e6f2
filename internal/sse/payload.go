package sse

import (
	"encoding/json"
	"errors"
)

// ErrIncompletePayload is returned when a data frame payload is not
// syntactically complete JSON, typically because the transport cut it short.
var ErrIncompletePayload = errors.New("incomplete payload")

// Chunk is the subset of a chat completion chunk the assembler cares about.
// Every level is optional so frames without text decode cleanly.
type Chunk struct {
	Choices []struct {
		Delta *struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ParseDelta extracts choices[0].delta.content from payload.
//
// ok is false when the payload is well formed but carries no text (no choices,
// no delta, empty or mistyped content). ErrIncompletePayload is returned when
// the payload is not valid JSON.
func ParseDelta(payload string) (text string, ok bool, err error) {
	raw := []byte(payload)
	if !json.Valid(raw) {
		return "", false, ErrIncompletePayload
	}

	var chunk Chunk
	if err := json.Unmarshal(raw, &chunk); err != nil {
		// Valid JSON with an unexpected shape carries no delta.
		return "", false, nil
	}
	if len(chunk.Choices) == 0 {
		return "", false, nil
	}
	delta := chunk.Choices[0].Delta
	if delta == nil || delta.Content == nil || *delta.Content == "" {
		return "", false, nil
	}
	return *delta.Content, true, nil
}
