package sse

import "strings"

const (
	// DataPrefix marks a data frame line.
	DataPrefix = "data: "
	// DoneSentinel is the payload that ends a stream normally.
	DoneSentinel = "[DONE]"
)

// Kind classifies a decoded line.
type Kind int

const (
	// KindIgnore covers comments, keep-alives, blank separators and unknown fields.
	KindIgnore Kind = iota
	// KindData is a data frame carrying a payload.
	KindData
	// KindDone is the terminal sentinel.
	KindDone
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindDone:
		return "done"
	default:
		return "ignore"
	}
}

// Event is one classified line.
type Event struct {
	Kind    Kind
	Payload string
}

// Decode classifies a single line produced by the Splitter.
func Decode(line string) Event {
	if strings.HasPrefix(line, ":") {
		return Event{Kind: KindIgnore}
	}
	if strings.TrimSpace(line) == "" {
		return Event{Kind: KindIgnore}
	}
	if !strings.HasPrefix(line, DataPrefix) {
		return Event{Kind: KindIgnore}
	}

	payload := strings.TrimSpace(line[len(DataPrefix):])
	if payload == DoneSentinel {
		return Event{Kind: KindDone}
	}
	return Event{Kind: KindData, Payload: payload}
}
