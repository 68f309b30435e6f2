package sse

import "testing"

func TestDecodeClassifiesLines(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		kind    Kind
		payload string
	}{
		{name: "comment", line: ": keep-alive", kind: KindIgnore},
		{name: "comment looking like data", line: ":data: {}", kind: KindIgnore},
		{name: "blank", line: "", kind: KindIgnore},
		{name: "whitespace", line: "  \t", kind: KindIgnore},
		{name: "event field", line: "event: message", kind: KindIgnore},
		{name: "data without space", line: "data:{}", kind: KindIgnore},
		{name: "data", line: `data: {"x":1}`, kind: KindData, payload: `{"x":1}`},
		{name: "data trimmed", line: "data:   {}  ", kind: KindData, payload: "{}"},
		{name: "sentinel", line: "data: [DONE]", kind: KindDone},
		{name: "sentinel padded", line: "data:  [DONE] ", kind: KindDone},
		{name: "sentinel lookalike", line: "data: [DONE]x", kind: KindData, payload: "[DONE]x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := Decode(tc.line)
			if ev.Kind != tc.kind {
				t.Fatalf("Decode(%q).Kind = %s, want %s", tc.line, ev.Kind, tc.kind)
			}
			if ev.Payload != tc.payload {
				t.Fatalf("Decode(%q).Payload = %q, want %q", tc.line, ev.Payload, tc.payload)
			}
		})
	}
}
