package lattice

// MaxSpanLen is the longest candidate span, in characters.
const MaxSpanLen = 10

// DefaultPunctuation lists the characters that always form their own span.
var DefaultPunctuation = []string{"。", "，", "？", "！", "：", "“", "”"}

// Generator enumerates the candidate spans of a sentence.
type Generator struct {
	tags  *Indexer
	punct map[string]bool
	isPun []bool
}

// NewGenerator creates a generator emitting one candidate per tag in tags.
func NewGenerator(tags *Indexer) *Generator {
	g := &Generator{
		tags:  tags,
		punct: make(map[string]bool, len(DefaultPunctuation)),
	}
	g.AddPunctuation(DefaultPunctuation...)
	return g
}

// AddPunctuation extends the punctuation set.
func (g *Generator) AddPunctuation(chars ...string) {
	for _, c := range chars {
		g.punct[c] = true
	}
}

// Generate fills lat.Spans with every candidate (begin, end, tag), ordered by
// begin, then end, then tag ID. A span never extends past MaxSpanLen
// characters, and punctuation only appears as a single-character span.
func (g *Generator) Generate(lat *Lattice) {
	lat.Spans = lat.Spans[:0]
	n := lat.Len()
	if n == 0 {
		return
	}

	g.isPun = g.isPun[:0]
	for i := range n {
		g.isPun = append(g.isPun, g.punct[lat.Text(i, i+1)])
	}

	numTags := g.tags.Size()
	for i := range n {
		for j := i + 1; j <= n && j-i <= MaxSpanLen; j++ {
			for k := range numTags {
				lat.Spans = append(lat.Spans, Span{Begin: i, End: j, Label: g.tags.Tag(k)})
			}
			if g.isPun[i] {
				break
			}
			if j < n && g.isPun[j] {
				break
			}
		}
	}
}
