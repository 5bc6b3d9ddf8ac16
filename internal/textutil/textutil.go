// Package textutil provides character-level text utilities for Chinese text:
// width normalization, character classes and whitespace cleanup.
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Character classes, combinable as bit flags.
const (
	ClassChinese = 1 << iota
	ClassNumber
	ClassLetter
	ClassOtherASCII
)

// CJK unified ideographs range treated as Chinese characters.
const (
	cjkFirst = 0x4E00
	cjkLast  = 0x9FA2
)

// HalfWidth folds full-width forms (ＡＢＣ，１２３) to their half-width
// equivalents. Other characters are returned unchanged.
func HalfWidth(s string) string {
	return width.Narrow.String(s)
}

// CharClass returns the class bits of r. Characters outside the known classes
// return 0.
func CharClass(r rune) int {
	switch {
	case r >= cjkFirst && r <= cjkLast:
		return ClassChinese
	case r >= '0' && r <= '9':
		return ClassNumber
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		return ClassLetter
	case r < utf8.RuneSelf:
		return ClassOtherASCII
	}
	return 0
}

// StringClass returns the class bits of the first character of s.
func StringClass(s string) int {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return CharClass(r)
}

var (
	newlineRe    = regexp.MustCompile(`[\n\r]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// NormalizeWhitespaces replaces newlines and multiple whitespace with a single space.
func NormalizeWhitespaces(text string) string {
	text = newlineRe.ReplaceAllString(text, " ")
	return multiSpaceRe.ReplaceAllString(text, " ")
}

// Sentence cleans a line of running text for segmentation: full-width spaces
// are folded, whitespace runs are collapsed and the ends are trimmed.
func Sentence(text string) string {
	text = strings.ReplaceAll(text, "　", " ")
	return strings.TrimSpace(NormalizeWhitespaces(text))
}

const (
	sentenceEnders = "。！？；!?"
	closers        = "”’」』）》\"')"
)

// SplitSentences cuts text after sentence-final punctuation. Closing quotes
// and brackets directly after the punctuation stay with the sentence.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	inEnd := false
	for i, r := range text {
		switch {
		case strings.ContainsRune(sentenceEnders, r):
			inEnd = true
		case inEnd && strings.ContainsRune(closers, r):
		case inEnd:
			if s := strings.TrimSpace(text[start:i]); s != "" {
				out = append(out, s)
			}
			start = i
			inEnd = false
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
