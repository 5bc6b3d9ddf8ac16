package segtag

import (
	"reflect"
	"testing"

	"github.com/happyhackingspace/segtag/lattice"
)

func spans(bounds ...any) []lattice.Span {
	var out []lattice.Span
	for i := 0; i+2 < len(bounds); i += 3 {
		out = append(out, lattice.Span{Begin: bounds[i].(int), End: bounds[i+1].(int), Label: bounds[i+2].(string)})
	}
	return out
}

func TestEvalAdd(t *testing.T) {
	gold := spans(0, 2, "n", 2, 3, "v", 3, 5, "n")
	output := spans(0, 2, "n", 2, 3, "p", 3, 4, "n", 4, 5, "n")

	var ev Eval
	ev.Add(gold, output)
	want := Eval{Sentences: 1, Gold: 3, Predicted: 4, SegCorrect: 2, TagCorrect: 1}
	if ev != want {
		t.Errorf("Eval = %+v, want %+v", ev, want)
	}
	if got := ev.Precision(); got != 0.5 {
		t.Errorf("Precision = %v, want 0.5", got)
	}
	if got := ev.TagRecall(); got != 1.0/3 {
		t.Errorf("TagRecall = %v, want %v", got, 1.0/3)
	}

	ev.Add(gold, gold)
	if ev.ExactSentences != 1 || ev.SegCorrect != 5 {
		t.Errorf("after exact sentence: %+v", ev)
	}
}

func TestEvalZero(t *testing.T) {
	var ev Eval
	if ev.Precision() != 0 || ev.Recall() != 0 || ev.F1() != 0 || ev.TagF1() != 0 {
		t.Errorf("zero Eval scores = %s", ev.String())
	}
	ev.Add(nil, nil)
	if ev.Sentences != 1 || ev.ExactSentences != 1 {
		t.Errorf("empty sentence: %+v", ev)
	}
}

func TestEvalMerge(t *testing.T) {
	a := Eval{Sentences: 1, Gold: 3, Predicted: 2, SegCorrect: 2, TagCorrect: 1}
	b := Eval{Sentences: 2, Gold: 4, Predicted: 4, SegCorrect: 4, TagCorrect: 4, ExactSentences: 2}
	a.Merge(&b)
	want := Eval{Sentences: 3, Gold: 7, Predicted: 6, SegCorrect: 6, TagCorrect: 5, ExactSentences: 2}
	if a != want {
		t.Errorf("Merge = %+v, want %+v", a, want)
	}
}

func TestOverlap(t *testing.T) {
	// gold: 中国 | 人民 | 银行
	gold := spans(0, 2, "", 2, 4, "", 4, 6, "")
	output := spans(0, 2, "", 2, 3, "", 3, 5, "", 5, 6, "")
	got := Overlap(gold, output)
	want := []Match{MatchCorrect, MatchCompatible, MatchCrossing, MatchCompatible}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Overlap = %v, want %v", got, want)
	}

	merged := Overlap(gold, spans(0, 4, "", 4, 6, ""))
	if merged[0] != MatchCompatible || merged[1] != MatchCorrect {
		t.Errorf("Overlap merged = %v", merged)
	}
}

func TestMatchString(t *testing.T) {
	if got := MatchCrossing.String(); got != "crossing" {
		t.Errorf("String = %q, want %q", got, "crossing")
	}
	if got := Match(9).String(); got != "Match(9)" {
		t.Errorf("String = %q, want %q", got, "Match(9)")
	}
}
