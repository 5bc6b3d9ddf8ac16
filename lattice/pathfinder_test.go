package lattice

import (
	"errors"
	"testing"
)

// tableScorer scores candidates from fixed tables.
type tableScorer struct {
	uni    []float64
	bi     map[[2]int]float64
	err    error
	called int
}

func (s *tableScorer) Prepare(*Lattice) error {
	s.called++
	return s.err
}

func (s *tableScorer) Unigram(i int) float64 { return s.uni[i] }

func (s *tableScorer) Bigram(a, b int) float64 { return s.bi[[2]int{a, b}] }

func spanLattice(raw string, spans ...Span) *Lattice {
	lat := NewLattice(raw)
	lat.Spans = spans
	return lat
}

func TestFindPath(t *testing.T) {
	lat := spanLattice("AB", Span{0, 1, ""}, Span{0, 2, ""}, Span{1, 2, ""})

	tests := []struct {
		name string
		uni  []float64
		bi   map[[2]int]float64
		want []Span
	}{
		{"split wins", []float64{1, 1.5, 1}, nil, []Span{{0, 1, ""}, {1, 2, ""}}},
		{"whole wins", []float64{1, 2.5, 1}, nil, []Span{{0, 2, ""}}},
		{"tie keeps first", []float64{1, 2, 1}, nil, []Span{{0, 2, ""}}},
		{"bigram decides", []float64{1, 2.5, 1}, map[[2]int]float64{{0, 2}: 1}, []Span{{0, 1, ""}, {1, 2, ""}}},
	}
	var pf PathFinder
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pf.FindPath(lat, &tableScorer{uni: tt.uni, bi: tt.bi})
			if err != nil {
				t.Fatal(err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("FindPath = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindPathDeterministic(t *testing.T) {
	g := NewGenerator(NewIndexer("B", "I"))
	lat := NewLattice("ABCD")
	g.Generate(lat)
	uni := make([]float64, len(lat.Spans))
	for i := range uni {
		uni[i] = float64(i%3) - 1
	}

	var pf PathFinder
	first, err := pf.FindPath(lat, &tableScorer{uni: uni})
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, _ := pf.FindPath(lat, &tableScorer{uni: uni})
		if !Equal(first, again) {
			t.Fatalf("FindPath = %v, then %v", first, again)
		}
	}
}

func TestFindPathCoversSentence(t *testing.T) {
	g := NewGenerator(NewIndexer("B", "I"))
	for _, raw := range []string{"A", "AB", "我爱北京天安门"} {
		lat := NewLattice(raw)
		g.Generate(lat)
		var pf PathFinder
		path, err := pf.FindPath(lat, &tableScorer{uni: make([]float64, len(lat.Spans))})
		if err != nil {
			t.Fatal(err)
		}
		pos := 0
		for _, span := range path {
			if span.Begin != pos {
				t.Fatalf("%q: path %v is not contiguous", raw, path)
			}
			pos = span.End
		}
		if pos != lat.Len() {
			t.Errorf("%q: path %v ends at %d, want %d", raw, path, pos, lat.Len())
		}
	}
}

func TestFindPathIncomplete(t *testing.T) {
	var pf PathFinder
	got, err := pf.FindPath(spanLattice("AB", Span{0, 1, ""}), &tableScorer{uni: []float64{1}})
	if err != nil || got != nil {
		t.Errorf("FindPath = %v, %v; want nil, nil", got, err)
	}

	got, err = pf.FindPath(NewLattice(""), &tableScorer{})
	if err != nil || got != nil {
		t.Errorf("FindPath(empty) = %v, %v; want nil, nil", got, err)
	}
}

func TestFindPathPrepareError(t *testing.T) {
	want := errors.New("boom")
	var pf PathFinder
	_, err := pf.FindPath(spanLattice("A", Span{0, 1, ""}), &tableScorer{uni: []float64{0}, err: want})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
