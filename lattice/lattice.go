// Package lattice implements joint word segmentation and tagging as a
// structured prediction over a lattice of candidate spans.
//
// A sentence is expanded by a Generator into every plausible (begin, end, tag)
// hypothesis, scored by a Feature engine backed by a sparse Weight store,
// searched by a PathFinder for the best path, and trained online by an
// averaged-perceptron Learner.
package lattice

import "unicode/utf8"

// Span is a half-open character range [Begin, End) over a sentence.
// An empty Label marks an unlabelled span.
type Span struct {
	Begin int
	End   int
	Label string
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.End - s.Begin
}

// Lattice holds one sentence together with its candidate spans.
type Lattice struct {
	Raw   string
	Off   []int // Off[i] is the byte offset of character i; Off[n] == len(Raw)
	Spans []Span
}

// NewLattice builds a lattice for raw with its character offset table.
func NewLattice(raw string) *Lattice {
	return &Lattice{Raw: raw, Off: Offsets(raw)}
}

// Reset points the lattice at a new sentence, reusing its buffers.
func (l *Lattice) Reset(raw string, off []int) {
	l.Raw = raw
	l.Off = off
	l.Spans = l.Spans[:0]
}

// Len returns the number of characters in the sentence.
func (l *Lattice) Len() int {
	if len(l.Off) == 0 {
		return 0
	}
	return len(l.Off) - 1
}

// Text returns the raw text covered by characters [begin, end).
func (l *Lattice) Text(begin, end int) string {
	return l.Raw[l.Off[begin]:l.Off[end]]
}

// Offsets returns the byte offset of every character boundary in s.
func Offsets(s string) []int {
	off := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		off = append(off, i)
	}
	return append(off, len(s))
}

// Equal reports whether two span sequences are identical.
func Equal(a, b []Span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
