// Package corpus reads and writes segmented, tagged text.
//
// A corpus holds one sentence per line as whitespace-separated tokens of the
// form word_tag. The tag follows the first underscore; a token without one is
// an untagged word.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/happyhackingspace/segtag/lattice"
)

// Sentence is a gold-annotated sentence.
type Sentence struct {
	Raw  string
	Off  []int
	Gold []lattice.Span
}

// Len returns the number of characters in the sentence.
func (s Sentence) Len() int {
	if len(s.Off) == 0 {
		return 0
	}
	return len(s.Off) - 1
}

// Words returns the surface string of each gold span.
func (s Sentence) Words() []string {
	words := make([]string, len(s.Gold))
	for i, span := range s.Gold {
		words[i] = s.Raw[s.Off[span.Begin]:s.Off[span.End]]
	}
	return words
}

// SplitToken splits a word_tag token at its first underscore. A token whose
// word part would be empty is returned whole with no tag.
func SplitToken(token string) (word, tag string) {
	i := strings.IndexByte(token, '_')
	if i <= 0 {
		return token, ""
	}
	return token[:i], token[i+1:]
}

// Parse converts one corpus line into a sentence. It reports false for lines
// without tokens.
func Parse(line string) (Sentence, bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Sentence{}, false
	}
	var sb strings.Builder
	s := Sentence{Off: []int{0}}
	for _, tok := range tokens {
		word, tag := SplitToken(tok)
		begin := len(s.Off) - 1
		for _, r := range word {
			sb.WriteRune(r)
			s.Off = append(s.Off, sb.Len())
		}
		s.Gold = append(s.Gold, lattice.Span{Begin: begin, End: len(s.Off) - 1, Label: tag})
	}
	s.Raw = sb.String()
	return s, true
}

// Load reads every sentence from r. Blank lines are skipped.
func Load(r io.Reader) ([]Sentence, error) {
	var sents []Sentence
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !utf8.ValidString(line) {
			slog.Warn("Skipping invalid UTF-8 line", "line", lineNo)
			continue
		}
		if s, ok := Parse(line); ok {
			sents = append(sents, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sents, nil
}

// LoadFile reads a corpus file.
func LoadFile(path string) ([]Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	sents, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	slog.Debug("Loaded corpus", "path", path, "sentences", len(sents))
	return sents, nil
}

// Format renders spans over raw back into corpus form.
func Format(raw string, off []int, spans []lattice.Span) string {
	var sb strings.Builder
	for i, span := range spans {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(raw[off[span.Begin]:off[span.End]])
		if span.Label != "" {
			sb.WriteByte('_')
			sb.WriteString(span.Label)
		}
	}
	return sb.String()
}

// String renders the sentence in corpus form.
func (s Sentence) String() string {
	return Format(s.Raw, s.Off, s.Gold)
}

// Tags returns the distinct gold tags in order of first appearance.
func Tags(sents []Sentence) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, s := range sents {
		for _, span := range s.Gold {
			if !seen[span.Label] {
				seen[span.Label] = true
				tags = append(tags, span.Label)
			}
		}
	}
	return tags
}

// Shuffle reorders sents in place with a generator seeded by seed.
func Shuffle(sents []Sentence, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(sents), func(i, j int) {
		sents[i], sents[j] = sents[j], sents[i]
	})
}
