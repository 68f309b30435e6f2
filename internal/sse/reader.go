package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// readSize is the size of each read from the response body.
const readSize = 4 * 1024

// Outcome summarizes how a stream ended.
type Outcome struct {
	// Sentinel is true when the [DONE] payload was decoded.
	Sentinel bool
	// Deltas counts the text fragments handed to the callback.
	Deltas int
	// Dropped holds content still buffered when the stream ended without a
	// sentinel: an unterminated final line or a payload that never completed.
	Dropped string
}

// DeltaFunc receives text fragments in arrival order.
type DeltaFunc func(text string)

// Stream holds the decoding state of one response body. It is not safe for
// concurrent use and must not be reused across requests.
type Stream struct {
	splitter Splitter
	onDelta  DeltaFunc
	outcome  Outcome
}

// NewStream returns a Stream that reports fragments to onDelta.
func NewStream(onDelta DeltaFunc) *Stream {
	return &Stream{onDelta: onDelta}
}

// Feed appends one delivered piece and processes every line it completes.
// It returns true once the sentinel has been decoded; later lines, including
// ones already buffered in the same piece, are never processed.
func (s *Stream) Feed(piece []byte) (done bool) {
	if s.outcome.Sentinel {
		return true
	}
	s.splitter.Write(piece)

	for {
		line, ok := s.splitter.Next()
		if !ok {
			return false
		}

		ev := Decode(line)
		switch ev.Kind {
		case KindIgnore:
			continue
		case KindDone:
			s.outcome.Sentinel = true
			return true
		}

		text, has, err := ParseDelta(ev.Payload)
		if err != nil {
			// Retry the whole line once more of the stream has arrived.
			s.splitter.Rewind(line)
			return false
		}
		if !has {
			continue
		}
		s.outcome.Deltas++
		if s.onDelta != nil {
			s.onDelta(text)
		}
	}
}

// Outcome reports the current state of the stream. Dropped is only populated
// when no sentinel was seen.
func (s *Stream) Outcome() Outcome {
	out := s.outcome
	if !out.Sentinel {
		out.Dropped = s.splitter.Remainder()
	}
	return out
}

// ReadDeltas drives body through a fresh Stream until the sentinel, end of
// body, or a read error. A final line without a terminating newline is not
// processed; it is reported in Outcome.Dropped instead.
func ReadDeltas(ctx context.Context, body io.Reader, onDelta DeltaFunc) (Outcome, error) {
	stream := NewStream(onDelta)
	buf := make([]byte, readSize)

	for {
		if err := ctx.Err(); err != nil {
			return stream.Outcome(), err
		}

		n, err := body.Read(buf)
		if n > 0 && stream.Feed(buf[:n]) {
			return stream.Outcome(), nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return stream.Outcome(), nil
			}
			return stream.Outcome(), fmt.Errorf("read stream: %w", err)
		}
	}
}
