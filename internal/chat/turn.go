// Package chat keeps the conversation shown in the chat panel and streams
// assistant replies from the chat endpoint into it.
package chat

// Role identifies who authored a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrorMarker prefixes assistant turns that report a failed request.
const ErrorMarker = "⚠️ Error: "

// Turn is one message of the conversation. The JSON shape is the wire shape
// of an entry in the request's messages array.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// RequestState guards against overlapping requests.
type RequestState int

const (
	StateIdle RequestState = iota
	StateInFlight
)

func (s RequestState) String() string {
	if s == StateInFlight {
		return "in-flight"
	}
	return "idle"
}

// Snapshot is a copy of the conversation published to the rendering layer
// after every change.
type Snapshot struct {
	Generation uint64
	Turns      []Turn
	State      RequestState
}

// Waiting reports whether a request is in flight and no assistant text has
// arrived for it yet.
func (s Snapshot) Waiting() bool {
	if s.State != StateInFlight {
		return false
	}
	return len(s.Turns) == 0 || s.Turns[len(s.Turns)-1].Role != RoleAssistant
}
