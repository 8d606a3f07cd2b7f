// Package token defines the Span type threaded through every AST node for
// error reporting. amberc's lexer and parser are out of scope (spec §1
// Non-goals); this package exists only so the in-scope stages have
// something concrete to attach diagnostics to, matching the shape of
// the (unretrieved) token package the teacher's AST imports.
package token

import "fmt"

// Position is a single point in a source file.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span covers a half-open range [Start, End) within a named source file.
// A zero Span (File == "") denotes a synthetic construct with no source
// location, e.g. a prelude declaration.
type Span struct {
	File  string
	Start Position
	End   Position
}

func (s Span) String() string {
	if s.File == "" {
		return "<builtin>"
	}
	return fmt.Sprintf("%s:%s", s.File, s.Start)
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s.File == "" && s.Start == Position{} && s.End == Position{}
}

// Union returns the smallest span covering both a and b. If either is
// synthetic the other is returned unchanged.
func Union(a, b Span) Span {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	start, end := a.Start, a.End
	if before(b.Start, start) {
		start = b.Start
	}
	if before(end, b.End) {
		end = b.End
	}
	return Span{File: a.File, Start: start, End: end}
}

func before(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}
