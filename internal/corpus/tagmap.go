package corpus

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/happyhackingspace/segtag/lattice"
)

// UnknownTag is assigned to tags missing from a tag map.
const UnknownTag = "X"

// CTBUniversal maps Penn Chinese Treebank tags to the universal tag set.
var CTBUniversal = map[string]string{
	"AD": "ADV", "AS": "PRT", "BA": "X", "CC": "CONJ", "CD": "NUM",
	"CS": "CONJ", "DEC": "PRT", "DEG": "PRT", "DER": "PRT", "DEV": "PRT",
	"DT": "DET", "ETC": "PRT", "FW": "X", "IJ": "X", "JJ": "ADJ",
	"LB": "X", "LC": "PRT", "M": "NUM", "MSP": "PRT", "NN": "NOUN",
	"NR": "NOUN", "NT": "NOUN", "OD": "NUM", "ON": "X", "P": "ADP",
	"PN": "PRON", "PU": ".", "SB": "X", "SP": "PRT", "VA": "VERB",
	"VC": "VERB", "VE": "VERB", "VV": "VERB", "X": "X",
}

// LoadTagMap reads a "from to" per line tag map.
func LoadTagMap(r io.Reader) (map[string]string, error) {
	m := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("tag map line %d: want 2 fields, got %d", lineNo, len(fields))
		}
		m[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// MapTags relabels every gold span of s through m. Tags missing from m
// become UnknownTag.
func MapTags(s Sentence, m map[string]string) Sentence {
	out := s
	out.Gold = make([]lattice.Span, len(s.Gold))
	for i, span := range s.Gold {
		to, ok := m[span.Label]
		if !ok {
			to = UnknownTag
		}
		span.Label = to
		out.Gold[i] = span
	}
	return out
}

// TagStat summarizes the use of one tag in a corpus.
type TagStat struct {
	Tag    string
	Mapped string
	Count  int
	Top    []string
}

// Stats counts every tag of sents and lists its most frequent words, at most
// top per tag. Mapped is the tag's image under m, or "NONE".
func Stats(sents []Sentence, m map[string]string, top int) []TagStat {
	words := make(map[string]map[string]int)
	var order []string
	for _, s := range sents {
		for i, w := range s.Words() {
			tag := s.Gold[i].Label
			if tag == "" {
				continue
			}
			if words[tag] == nil {
				words[tag] = make(map[string]int)
				order = append(order, tag)
			}
			words[tag][w]++
		}
	}

	stats := make([]TagStat, 0, len(order))
	for _, tag := range order {
		counts := words[tag]
		st := TagStat{Tag: tag, Mapped: "NONE"}
		if to, ok := m[tag]; ok {
			st.Mapped = to
		}
		for w, c := range counts {
			st.Count += c
			st.Top = append(st.Top, w)
		}
		sort.Slice(st.Top, func(i, j int) bool {
			ci, cj := counts[st.Top[i]], counts[st.Top[j]]
			if ci != cj {
				return ci > cj
			}
			return st.Top[i] < st.Top[j]
		})
		if len(st.Top) > top {
			st.Top = st.Top[:top]
		}
		stats = append(stats, st)
	}
	return stats
}
