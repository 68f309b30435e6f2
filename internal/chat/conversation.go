package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	// ErrEmptyMessage rejects blank input without touching the conversation.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrRequestInFlight rejects a send while another request is streaming.
	ErrRequestInFlight = errors.New("a request is already in flight")
)

// Observer receives a snapshot after every change to the conversation. It is
// called from the goroutine running Send and must not block for long.
type Observer func(Snapshot)

// Conversation is the ordered list of turns shown in the chat panel and the
// request state guarding it. Turns hold display text; the location preamble
// is only added on the wire.
type Conversation struct {
	client Streamer
	mode   Mode
	logger *slog.Logger

	mu         sync.Mutex
	observer   Observer
	location   LocationContext
	turns      []Turn
	state      RequestState
	generation uint64
}

// NewConversation creates an empty conversation about loc.
func NewConversation(client Streamer, mode Mode, loc LocationContext, logger *slog.Logger) *Conversation {
	return &Conversation{
		client:   client,
		mode:     mode,
		logger:   logger,
		location: loc,
	}
}

// SetObserver registers fn to receive snapshots. A nil fn stops notifications.
func (c *Conversation) SetObserver(fn Observer) {
	c.mu.Lock()
	c.observer = fn
	c.mu.Unlock()
}

// Mode returns the conversation's mode.
func (c *Conversation) Mode() Mode {
	return c.mode
}

// Location returns the current location context.
func (c *Conversation) Location() LocationContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// Turns returns a copy of the displayed turns.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.turns...)
}

// State returns the current request state.
func (c *Conversation) State() RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the full conversation state.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SwitchLocation replaces the location context and clears the turns. A
// request still streaming for the old location keeps the request state
// in-flight until it completes, but its fragments and errors are discarded.
func (c *Conversation) SwitchLocation(loc LocationContext) {
	c.mu.Lock()
	c.location = loc
	c.turns = nil
	c.generation++
	snap, observer := c.snapshotLocked(), c.observer
	c.mu.Unlock()

	c.logger.Debug("chat location switched", "city", loc.City.Name, "generation", snap.Generation)
	notify(observer, snap)
}

// Send appends text as a user turn and streams the assistant reply into the
// conversation. It blocks until the stream ends.
//
// Blank text returns ErrEmptyMessage and a send while another is in flight
// returns ErrRequestInFlight; neither changes the conversation. Any other
// failure is appended as an error turn before Send returns it, and the
// request state is always back to idle when Send returns.
func (c *Conversation) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state == StateInFlight {
		c.mu.Unlock()
		return ErrRequestInFlight
	}
	messages := BuildMessages(c.mode, c.location, c.turns, text)
	gen := c.generation
	c.turns = append(c.turns, Turn{Role: RoleUser, Content: text})
	c.state = StateInFlight
	snap, observer := c.snapshotLocked(), c.observer
	c.mu.Unlock()
	notify(observer, snap)

	defer c.finish()

	asm := &Assembler{}
	_, err := c.client.Stream(ctx, messages, func(fragment string) {
		c.applyFragment(gen, asm, fragment)
	})
	if err != nil {
		c.logger.Warn("chat request failed", "error", err, "received_bytes", len(asm.Content()))
		c.appendError(gen, err)
		return fmt.Errorf("chat request: %w", err)
	}
	return nil
}

// BuildMessages assembles the request body for a send: the mode's system
// instruction, every prior turn, and the new user text. User turns carry the
// location preamble; assistant turns are sent as displayed.
func BuildMessages(mode Mode, loc LocationContext, history []Turn, text string) []Turn {
	messages := make([]Turn, 0, len(history)+2)
	messages = append(messages, Turn{Role: RoleSystem, Content: mode.SystemInstruction()})
	for _, t := range history {
		if t.Role == RoleUser {
			t.Content = loc.Outgoing(t.Content)
		}
		messages = append(messages, t)
	}
	return append(messages, Turn{Role: RoleUser, Content: loc.Outgoing(text)})
}

func (c *Conversation) applyFragment(gen uint64, asm *Assembler, fragment string) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	asm.Append(fragment)
	c.turns = asm.Publish(c.turns)
	snap, observer := c.snapshotLocked(), c.observer
	c.mu.Unlock()
	notify(observer, snap)
}

func (c *Conversation) appendError(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.turns = append(c.turns, Turn{Role: RoleAssistant, Content: ErrorMarker + errorText(err)})
	snap, observer := c.snapshotLocked(), c.observer
	c.mu.Unlock()
	notify(observer, snap)
}

func (c *Conversation) finish() {
	c.mu.Lock()
	c.state = StateIdle
	snap, observer := c.snapshotLocked(), c.observer
	c.mu.Unlock()
	notify(observer, snap)
}

func (c *Conversation) snapshotLocked() Snapshot {
	return Snapshot{
		Generation: c.generation,
		Turns:      append([]Turn(nil), c.turns...),
		State:      c.state,
	}
}

func notify(fn Observer, snap Snapshot) {
	if fn != nil {
		fn(snap)
	}
}

// errorText is the user-visible description of a failed request.
func errorText(err error) string {
	var serr *StatusError
	switch {
	case errors.As(err, &serr):
		return serr.Message
	case errors.Is(err, ErrNoResponseBody):
		return "No response body"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	default:
		return err.Error()
	}
}
