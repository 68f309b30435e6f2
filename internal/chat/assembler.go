package chat

import "strings"

// Assembler folds streamed fragments into a single assistant turn. The
// accumulator is the source of truth; the turn only ever mirrors it.
type Assembler struct {
	acc    strings.Builder
	opened bool
}

// Append concatenates fragment to the accumulator and returns the full
// accumulated content.
func (a *Assembler) Append(fragment string) string {
	a.acc.WriteString(fragment)
	return a.acc.String()
}

// Content returns everything appended so far.
func (a *Assembler) Content() string {
	return a.acc.String()
}

// Publish mirrors the accumulator into the trailing assistant turn of turns.
// The first call appends a new assistant turn; later calls replace that turn's
// content rather than appending again.
func (a *Assembler) Publish(turns []Turn) []Turn {
	content := a.acc.String()
	if n := len(turns); a.opened && n > 0 && turns[n-1].Role == RoleAssistant {
		turns[n-1].Content = content
		return turns
	}
	a.opened = true
	return append(turns, Turn{Role: RoleAssistant, Content: content})
}
