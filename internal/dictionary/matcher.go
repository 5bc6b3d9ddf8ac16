package dictionary

import (
	"fmt"

	"github.com/coregx/ahocorasick"
)

// Matcher finds every dictionary key occurring in a text in one pass.
// It is safe for concurrent use.
type Matcher struct {
	*Dictionary
	ac *ahocorasick.Automaton
}

// NewMatcher compiles the keys of d into an Aho-Corasick automaton. d must
// not be modified afterwards.
func NewMatcher(d *Dictionary) (*Matcher, error) {
	m := &Matcher{Dictionary: d}
	if d.Len() == 0 {
		return m, nil
	}
	ac, err := ahocorasick.NewBuilder().
		AddStrings(d.keys).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build matcher: %w", err)
	}
	m.ac = ac
	return m, nil
}

// Match calls fn with the byte range and value of every key occurrence in
// text, overlapping occurrences included.
func (m *Matcher) Match(text string, fn func(start, end int, value string)) {
	if m.ac == nil || text == "" {
		return
	}
	for _, hit := range m.ac.FindAllOverlapping([]byte(text)) {
		fn(hit.Start, hit.End, m.values[hit.PatternID])
	}
}
