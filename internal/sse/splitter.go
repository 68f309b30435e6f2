// Package sse decodes chat completion streams framed as server-sent events.
package sse

import "bytes"

// Splitter turns an incrementally delivered byte stream into complete lines.
//
// Pieces are appended with Write and complete lines are pulled with Next. A
// partial trailing line stays buffered until a later piece completes it. A line
// handed back with Rewind is re-emitted first, but only after the next Write, so
// a caller that could not interpret a line waits for more data before retrying.
type Splitter struct {
	buf      []byte
	rewound  *string
	held     bool
	consumed int
}

// Write appends a delivered piece to the accumulator.
func (s *Splitter) Write(p []byte) {
	s.buf = append(s.buf, p...)
	s.held = false
}

// Next returns the next complete line with its terminator removed. A single
// trailing carriage return is stripped as well. ok is false when no complete
// line is buffered or a rewound line is waiting for more data.
func (s *Splitter) Next() (line string, ok bool) {
	if s.held {
		return "", false
	}
	if s.rewound != nil {
		line = *s.rewound
		s.rewound = nil
		return line, true
	}

	idx := bytes.IndexByte(s.buf, '\n')
	if idx < 0 {
		return "", false
	}
	raw := s.buf[:idx]
	if n := len(raw); n > 0 && raw[n-1] == '\r' {
		raw = raw[:n-1]
	}
	line = string(raw)
	s.buf = s.buf[idx+1:]
	s.consumed += idx + 1
	s.compact()
	return line, true
}

// Rewind pushes line back so the next pull after a Write returns it again.
// Only one line can be rewound at a time; a second call replaces the first.
func (s *Splitter) Rewind(line string) {
	s.rewound = &line
	s.held = true
}

// Pending reports whether a rewound line is waiting to be re-emitted.
func (s *Splitter) Pending() bool {
	return s.rewound != nil
}

// Remainder returns the unterminated tail, including any rewound line, that
// has not been emitted as a complete line.
func (s *Splitter) Remainder() string {
	if s.rewound == nil {
		return string(s.buf)
	}
	return *s.rewound + "\n" + string(s.buf)
}

// compact releases the consumed prefix once it dominates the backing array.
func (s *Splitter) compact() {
	if s.consumed < 4096 || s.consumed < len(s.buf) {
		return
	}
	s.buf = append([]byte(nil), s.buf...)
	s.consumed = 0
}
