package segtag

import (
	"fmt"
	"time"

	"github.com/happyhackingspace/segtag/lattice"
)

// Eval accumulates word-level segmentation and tagging counts.
//
// A predicted word is correct for segmentation when a gold word has the same
// boundaries, and correct for tagging when the label matches as well.
type Eval struct {
	Sentences      int `json:"sentences"`
	Gold           int `json:"gold"`
	Predicted      int `json:"predicted"`
	SegCorrect     int `json:"seg_correct"`
	TagCorrect     int `json:"tag_correct"`
	ExactSentences int `json:"exact_sentences"` // output equals gold

	Elapsed time.Duration `json:"elapsed"`
}

// Add scores one sentence. Both sequences must be ordered left to right.
func (e *Eval) Add(gold, output []lattice.Span) {
	e.Sentences++
	e.Gold += len(gold)
	e.Predicted += len(output)
	if lattice.Equal(gold, output) {
		e.ExactSentences++
	}

	i, j := 0, 0
	for i < len(gold) && j < len(output) {
		g, o := gold[i], output[j]
		switch {
		case g.Begin == o.Begin && g.End == o.End:
			e.SegCorrect++
			if g.Label == o.Label {
				e.TagCorrect++
			}
			i++
			j++
		case g.End < o.End:
			i++
		case g.End > o.End:
			j++
		default:
			i++
			j++
		}
	}
}

// Merge adds the counts of o into e.
func (e *Eval) Merge(o *Eval) {
	e.Sentences += o.Sentences
	e.Gold += o.Gold
	e.Predicted += o.Predicted
	e.SegCorrect += o.SegCorrect
	e.TagCorrect += o.TagCorrect
	e.ExactSentences += o.ExactSentences
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Precision is the segmentation precision.
func (e *Eval) Precision() float64 { return ratio(e.SegCorrect, e.Predicted) }

// Recall is the segmentation recall.
func (e *Eval) Recall() float64 { return ratio(e.SegCorrect, e.Gold) }

// F1 is the segmentation F-score.
func (e *Eval) F1() float64 { return f1(e.Precision(), e.Recall()) }

// TagPrecision is the joint segmentation and tagging precision.
func (e *Eval) TagPrecision() float64 { return ratio(e.TagCorrect, e.Predicted) }

// TagRecall is the joint segmentation and tagging recall.
func (e *Eval) TagRecall() float64 { return ratio(e.TagCorrect, e.Gold) }

// TagF1 is the joint segmentation and tagging F-score.
func (e *Eval) TagF1() float64 { return f1(e.TagPrecision(), e.TagRecall()) }

func (e *Eval) String() string {
	return fmt.Sprintf("std %d rst %d cor %d seg P %.4f R %.4f F %.4f | tag P %.4f R %.4f F %.4f",
		e.Gold, e.Predicted, e.SegCorrect,
		e.Precision(), e.Recall(), e.F1(),
		e.TagPrecision(), e.TagRecall(), e.TagF1())
}

// Match classifies a predicted word against a gold bracketing.
type Match int

const (
	// MatchCorrect means the word is a gold word.
	MatchCorrect Match = iota
	// MatchCompatible means the word is not a gold word but does not cross
	// any gold boundary, i.e. it splits or merges gold words.
	MatchCompatible
	// MatchCrossing means the word cuts through a gold word.
	MatchCrossing
)

func (m Match) String() string {
	switch m {
	case MatchCorrect:
		return "correct"
	case MatchCompatible:
		return "compatible"
	case MatchCrossing:
		return "crossing"
	}
	return fmt.Sprintf("Match(%d)", int(m))
}

// Overlap classifies every output word against the gold words. Labels are
// ignored.
func Overlap(gold, output []lattice.Span) []Match {
	type bounds struct{ begin, end int }
	exact := make(map[bounds]bool, len(gold))
	maxEnd := make(map[int]int, len(gold))
	minBegin := make(map[int]int, len(gold))
	for _, g := range gold {
		exact[bounds{g.Begin, g.End}] = true
		if e, ok := maxEnd[g.Begin]; !ok || e < g.End {
			maxEnd[g.Begin] = g.End
		}
		if b, ok := minBegin[g.End]; !ok || b > g.Begin {
			minBegin[g.End] = g.Begin
		}
	}

	out := make([]Match, len(output))
	for k, o := range output {
		m := MatchCompatible
		if exact[bounds{o.Begin, o.End}] {
			m = MatchCorrect
		}
		for i := o.Begin + 1; i < o.End; i++ {
			if e, ok := maxEnd[i]; ok && e > o.End {
				m = MatchCrossing
				break
			}
			if b, ok := minBegin[i]; ok && b < o.Begin {
				m = MatchCrossing
				break
			}
		}
		out[k] = m
	}
	return out
}
