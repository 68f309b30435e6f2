package sse

import (
	"errors"
	"testing"
)

func TestParseDelta(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		text    string
		ok      bool
		err     error
	}{
		{name: "content", payload: `{"choices":[{"delta":{"content":"Hel"}}]}`, text: "Hel", ok: true},
		{name: "first choice only", payload: `{"choices":[{"delta":{"content":"a"}},{"delta":{"content":"b"}}]}`, text: "a", ok: true},
		{name: "role only", payload: `{"choices":[{"delta":{"role":"assistant"}}]}`},
		{name: "empty content", payload: `{"choices":[{"delta":{"content":""}}]}`},
		{name: "null content", payload: `{"choices":[{"delta":{"content":null}}]}`},
		{name: "no choices", payload: `{"id":"x"}`},
		{name: "empty choices", payload: `{"choices":[]}`},
		{name: "no delta", payload: `{"choices":[{"finish_reason":"stop"}]}`},
		{name: "mistyped content", payload: `{"choices":[{"delta":{"content":5}}]}`},
		{name: "mistyped choices", payload: `{"choices":"nope"}`},
		{name: "null", payload: `null`},
		{name: "truncated", payload: `{"choices":[{"delta":{"content":"Hel`, err: ErrIncompletePayload},
		{name: "empty", payload: ``, err: ErrIncompletePayload},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, ok, err := ParseDelta(tc.payload)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if ok != tc.ok || text != tc.text {
				t.Fatalf("ParseDelta() = %q, %v; want %q, %v", text, ok, tc.text, tc.ok)
			}
		})
	}
}
