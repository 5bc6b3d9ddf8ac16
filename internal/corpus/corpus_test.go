package corpus

import (
	"reflect"
	"strings"
	"testing"

	"github.com/happyhackingspace/segtag/lattice"
)

func TestSplitToken(t *testing.T) {
	tests := []struct {
		token string
		word  string
		tag   string
	}{
		{"北京_NR", "北京", "NR"},
		{"北京", "北京", ""},
		{"a_b_c", "a", "b_c"},
		{"_", "_", ""},
		{"_NN", "_NN", ""},
		{"x_", "x", ""},
	}
	for _, tt := range tests {
		word, tag := SplitToken(tt.token)
		if word != tt.word || tag != tt.tag {
			t.Errorf("SplitToken(%q) = %q, %q; want %q, %q", tt.token, word, tag, tt.word, tt.tag)
		}
	}
}

func TestParse(t *testing.T) {
	s, ok := Parse("我_PN 爱_VV  北京_NR\n")
	if !ok {
		t.Fatal("Parse reported no sentence")
	}
	if s.Raw != "我爱北京" {
		t.Errorf("Raw = %q, want 我爱北京", s.Raw)
	}
	if want := []int{0, 3, 6, 9, 12}; !reflect.DeepEqual(s.Off, want) {
		t.Errorf("Off = %v, want %v", s.Off, want)
	}
	want := []lattice.Span{{Begin: 0, End: 1, Label: "PN"}, {Begin: 1, End: 2, Label: "VV"}, {Begin: 2, End: 4, Label: "NR"}}
	if !lattice.Equal(s.Gold, want) {
		t.Errorf("Gold = %v, want %v", s.Gold, want)
	}
	if got := s.String(); got != "我_PN 爱_VV 北京_NR" {
		t.Errorf("String = %q", got)
	}

	if _, ok := Parse("   "); ok {
		t.Error("blank line should not parse")
	}
}

func TestLoad(t *testing.T) {
	input := "我_r 爱_v\n\n北京_ns 欢迎 你_r\n"
	sents, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(sents) != 2 {
		t.Fatalf("len = %d, want 2", len(sents))
	}
	if got, want := sents[1].Words(), []string{"北京", "欢迎", "你"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %v, want %v", got, want)
	}
	if got := sents[1].String(); got != "北京_ns 欢迎 你_r" {
		t.Errorf("String = %q", got)
	}
	if got, want := Tags(sents), []string{"r", "v", "ns", ""}; !reflect.DeepEqual(got, want) {
		t.Errorf("Tags = %v, want %v", got, want)
	}
}

func TestShuffle(t *testing.T) {
	var a, b []Sentence
	for _, line := range []string{"一", "二", "三", "四", "五", "六", "七", "八"} {
		s, _ := Parse(line)
		a = append(a, s)
		b = append(b, s)
	}
	Shuffle(a, 7)
	Shuffle(b, 7)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should give the same order")
	}
	seen := make(map[string]bool)
	for _, s := range a {
		seen[s.Raw] = true
	}
	if len(seen) != 8 {
		t.Errorf("shuffle lost sentences: %v", seen)
	}
}

func TestMapTags(t *testing.T) {
	s, _ := Parse("我_PN 去_VV 了_AS 。_PU 哈_ZZ")
	got := MapTags(s, CTBUniversal).String()
	want := "我_PRON 去_VERB 了_PRT 。_. 哈_X"
	if got != want {
		t.Errorf("MapTags = %q, want %q", got, want)
	}
	if s.Gold[0].Label != "PN" {
		t.Error("MapTags modified its input")
	}
}

func TestLoadTagMap(t *testing.T) {
	m, err := LoadTagMap(strings.NewReader("NN NOUN\n\nVV  VERB\n"))
	if err != nil {
		t.Fatal(err)
	}
	if want := map[string]string{"NN": "NOUN", "VV": "VERB"}; !reflect.DeepEqual(m, want) {
		t.Errorf("map = %v, want %v", m, want)
	}
	if _, err := LoadTagMap(strings.NewReader("NN\n")); err == nil {
		t.Error("expected error for a one-field line")
	}
}

func TestStats(t *testing.T) {
	sents, err := Load(strings.NewReader("北京_NR 北京_NR 上海_NR 去_VV\n的 中_QQ\n"))
	if err != nil {
		t.Fatal(err)
	}
	stats := Stats(sents, CTBUniversal, 1)
	want := []TagStat{
		{Tag: "NR", Mapped: "NOUN", Count: 3, Top: []string{"北京"}},
		{Tag: "VV", Mapped: "VERB", Count: 1, Top: []string{"去"}},
		{Tag: "QQ", Mapped: "NONE", Count: 1, Top: []string{"中"}},
	}
	if !reflect.DeepEqual(stats, want) {
		t.Errorf("Stats = %+v, want %+v", stats, want)
	}
}
