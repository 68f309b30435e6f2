package sse

import "testing"

func TestSplitterHoldsPartialLineUntilTerminated(t *testing.T) {
	var s Splitter
	s.Write([]byte("data: a"))
	if line, ok := s.Next(); ok {
		t.Fatalf("unexpected line %q before terminator", line)
	}

	s.Write([]byte("bc\r\ndata: d"))
	line, ok := s.Next()
	if !ok || line != "data: abc" {
		t.Fatalf("Next() = %q, %v; want %q, true", line, ok, "data: abc")
	}
	if _, ok := s.Next(); ok {
		t.Fatalf("expected no second line")
	}
	if got := s.Remainder(); got != "data: d" {
		t.Fatalf("Remainder() = %q, want %q", got, "data: d")
	}
}

func TestSplitterEmitsEveryLineOfOnePiece(t *testing.T) {
	var s Splitter
	s.Write([]byte("a\n\nb\r\n:c\n"))

	var got []string
	for {
		line, ok := s.Next()
		if !ok {
			break
		}
		got = append(got, line)
	}
	want := []string{"a", "", "b", ":c"}
	if len(got) != len(want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitterStripsOnlyOneCarriageReturn(t *testing.T) {
	var s Splitter
	s.Write([]byte("x\r\r\n"))
	line, ok := s.Next()
	if !ok || line != "x\r" {
		t.Fatalf("Next() = %q, %v; want %q", line, ok, "x\r")
	}
}

func TestSplitterRewindWaitsForNextWrite(t *testing.T) {
	var s Splitter
	s.Write([]byte("first\nsecond\n"))

	line, _ := s.Next()
	s.Rewind(line)
	if !s.Pending() {
		t.Fatalf("expected rewound line to be pending")
	}
	if got, ok := s.Next(); ok {
		t.Fatalf("Next() returned %q before more data arrived", got)
	}

	s.Write([]byte("third\n"))
	for _, want := range []string{"first", "second", "third"} {
		got, ok := s.Next()
		if !ok || got != want {
			t.Fatalf("Next() = %q, %v; want %q", got, ok, want)
		}
	}
	if s.Pending() {
		t.Fatalf("rewound line should have been consumed")
	}
}

func TestSplitterRemainderIncludesRewoundLine(t *testing.T) {
	var s Splitter
	s.Write([]byte("data: {\"a\"\ntail"))
	line, _ := s.Next()
	s.Rewind(line)

	if got, want := s.Remainder(), "data: {\"a\"\ntail"; got != want {
		t.Fatalf("Remainder() = %q, want %q", got, want)
	}
}

func TestSplitterKeepsMultibyteRunesSplitAcrossPieces(t *testing.T) {
	text := "data: héllo ⚠️\n"
	raw := []byte(text)

	var s Splitter
	for i := range raw {
		s.Write(raw[i : i+1])
	}
	line, ok := s.Next()
	if !ok || line != "data: héllo ⚠️" {
		t.Fatalf("Next() = %q, %v", line, ok)
	}
}
