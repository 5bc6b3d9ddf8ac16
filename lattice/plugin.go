package lattice

import (
	"math"
	"slices"
)

// Lookup is a read-only gazetteer mapping surface strings to values.
type Lookup interface {
	Get(key string) (string, bool)
}

// Matcher is implemented by dictionaries that can report every key
// occurrence in a text at once. start and end are byte offsets.
type Matcher interface {
	Match(text string, fn func(start, end int, value string))
}

// FloatLookup is a read-only gazetteer mapping surface strings to numbers.
type FloatLookup interface {
	Float(key string) (float64, bool)
}

// maxPhraseLen is the longest phrase, in characters, PhraseFeature looks for.
const maxPhraseLen = 11

// DictFeature rewards spans, and pairs of adjacent spans, whose text is found
// in a dictionary. The learned weight is keyed by the dictionary value, so a
// dictionary of "word category" lines learns one weight per category.
type DictFeature struct {
	dict     Lookup
	prefix   string
	biPrefix string

	lat     *Lattice
	weights *Weight
}

// NewDictFeature creates a dictionary feature. name namespaces its weight keys.
func NewDictFeature(name string, dict Lookup) *DictFeature {
	return &DictFeature{
		dict:     dict,
		prefix:   "d:" + name + ":",
		biPrefix: "d:" + name + ":b:",
	}
}

func (d *DictFeature) Prepare(lat *Lattice, weights *Weight) {
	d.lat = lat
	d.weights = weights
}

func (d *DictFeature) Unigram(i int) float64 {
	key, ok := d.unigramKey(d.lat.Spans[i])
	if !ok {
		return 0
	}
	return firstValue(d.weights, key)
}

func (d *DictFeature) Bigram(a, b int) float64 {
	key, ok := d.bigramKey(d.lat.Spans[a], d.lat.Spans[b])
	if !ok {
		return 0
	}
	return firstValue(d.weights, key)
}

func (d *DictFeature) CalcGradient(gold, output []Span, gradient *Weight) error {
	if err := d.addGradient(gold, gradient, 1); err != nil {
		return err
	}
	return d.addGradient(output, gradient, -1)
}

func (d *DictFeature) Clone() Plugin {
	return &DictFeature{dict: d.dict, prefix: d.prefix, biPrefix: d.biPrefix}
}

func (d *DictFeature) addGradient(seq []Span, gradient *Weight, delta float64) error {
	values := []float64{delta}
	for i, span := range seq {
		if i+1 < len(seq) {
			if key, ok := d.bigramKey(span, seq[i+1]); ok {
				if err := gradient.AddFrom(key, values, 1); err != nil {
					return err
				}
			}
		}
		if key, ok := d.unigramKey(span); ok {
			if err := gradient.AddFrom(key, values, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *DictFeature) unigramKey(span Span) (string, bool) {
	if d.dict == nil || d.lat == nil {
		return "", false
	}
	value, ok := d.dict.Get(d.lat.Text(span.Begin, span.End))
	if !ok {
		return "", false
	}
	return d.prefix + value, true
}

func (d *DictFeature) bigramKey(first, second Span) (string, bool) {
	if d.dict == nil || d.lat == nil {
		return "", false
	}
	value, ok := d.dict.Get(d.lat.Text(first.Begin, second.End))
	if !ok {
		return "", false
	}
	return d.biPrefix + value, true
}

// PhraseFeature penalizes or rewards spans that cut through a known phrase.
// A span crosses a phrase when a phrase boundary falls strictly inside the span
// while the phrase extends beyond it.
type PhraseFeature struct {
	dict   Lookup
	prefix string

	lat     *Lattice
	weights *Weight
	phrases []Span
	begins  [][]int
	ends    [][]int
	charAt  map[int]int
}

// NewPhraseFeature creates a phrase feature. name namespaces its weight keys.
func NewPhraseFeature(name string, dict Lookup) *PhraseFeature {
	return &PhraseFeature{dict: dict, prefix: "p:" + name + ":"}
}

func (p *PhraseFeature) Prepare(lat *Lattice, weights *Weight) {
	p.lat = lat
	p.weights = weights
	p.findPhrases()
}

// Phrases returns the phrases found in the current sentence, labelled with
// their dictionary value.
func (p *PhraseFeature) Phrases() []Span {
	return p.phrases
}

func (p *PhraseFeature) findPhrases() {
	p.phrases = p.phrases[:0]
	n := p.lat.Len()
	for len(p.begins) <= n {
		p.begins = append(p.begins, nil)
		p.ends = append(p.ends, nil)
	}
	for i := 0; i <= n; i++ {
		p.begins[i] = p.begins[i][:0]
		p.ends[i] = p.ends[i][:0]
	}
	if p.dict == nil {
		return
	}
	if m, ok := p.dict.(Matcher); ok {
		p.matchPhrases(m)
	} else {
		for i := range n {
			for j := i + 1; j <= n && j-i <= maxPhraseLen; j++ {
				if value, ok := p.dict.Get(p.lat.Text(i, j)); ok {
					p.phrases = append(p.phrases, Span{Begin: i, End: j, Label: value})
				}
			}
		}
	}
	for k, ph := range p.phrases {
		p.begins[ph.Begin] = append(p.begins[ph.Begin], k)
		p.ends[ph.End] = append(p.ends[ph.End], k)
	}
}

// matchPhrases collects phrases from a one-pass matcher, in the same order
// and under the same length bound as the substring scan.
func (p *PhraseFeature) matchPhrases(m Matcher) {
	if p.charAt == nil {
		p.charAt = make(map[int]int)
	}
	clear(p.charAt)
	for i, off := range p.lat.Off {
		p.charAt[off] = i
	}
	m.Match(p.lat.Raw, func(start, end int, value string) {
		i, ok := p.charAt[start]
		j, ok2 := p.charAt[end]
		if !ok || !ok2 || j-i > maxPhraseLen {
			return
		}
		p.phrases = append(p.phrases, Span{Begin: i, End: j, Label: value})
	})
	slices.SortFunc(p.phrases, func(a, b Span) int {
		if a.Begin != b.Begin {
			return a.Begin - b.Begin
		}
		return a.End - b.End
	})
}

// crossing calls fn with the key of every phrase that span cuts through.
func (p *PhraseFeature) crossing(span Span, fn func(key string)) {
	if span.End >= len(p.ends) {
		return
	}
	for j := span.Begin + 1; j < span.End; j++ {
		for _, k := range p.ends[j] {
			if p.phrases[k].Begin < span.Begin {
				fn(p.prefix + p.phrases[k].Label)
			}
		}
		for _, k := range p.begins[j] {
			if p.phrases[k].End > span.End {
				fn(p.prefix + p.phrases[k].Label)
			}
		}
	}
}

func (p *PhraseFeature) Unigram(i int) float64 {
	score := 0.0
	p.crossing(p.lat.Spans[i], func(key string) {
		score += firstValue(p.weights, key)
	})
	return score
}

func (p *PhraseFeature) Bigram(a, b int) float64 {
	return 0
}

func (p *PhraseFeature) CalcGradient(gold, output []Span, gradient *Weight) error {
	var err error
	add := func(seq []Span, delta float64) {
		values := []float64{delta}
		for _, span := range seq {
			p.crossing(span, func(key string) {
				if err == nil {
					err = gradient.AddFrom(key, values, 1)
				}
			})
		}
	}
	add(gold, 1)
	add(output, -1)
	return err
}

func (p *PhraseFeature) Clone() Plugin {
	return &PhraseFeature{dict: p.dict, prefix: p.prefix}
}

// FreqFeature adds a fixed log-frequency prior for spans found in a word
// frequency list. It has no learned weights.
type FreqFeature struct {
	dict FloatLookup
	lat  *Lattice
}

// FreqOffset is subtracted from every log-frequency score, so that unseen
// words are strongly discouraged against frequent ones.
const FreqOffset = 8

// NewFreqFeature creates a frequency prior over dict.
func NewFreqFeature(dict FloatLookup) *FreqFeature {
	return &FreqFeature{dict: dict}
}

func (f *FreqFeature) Prepare(lat *Lattice, _ *Weight) {
	f.lat = lat
}

func (f *FreqFeature) Unigram(i int) float64 {
	if f.dict == nil {
		return 0
	}
	span := f.lat.Spans[i]
	freq, ok := f.dict.Float(f.lat.Text(span.Begin, span.End))
	if !ok || freq < 0 {
		freq = 0
	}
	return math.Log10(freq+1) - FreqOffset
}

func (f *FreqFeature) Bigram(a, b int) float64 {
	return 0
}

func (f *FreqFeature) CalcGradient(gold, output []Span, gradient *Weight) error {
	return nil
}

func (f *FreqFeature) Clone() Plugin {
	return &FreqFeature{dict: f.dict}
}

func firstValue(w *Weight, key string) float64 {
	if w == nil {
		return 0
	}
	vec := w.Get(key)
	if len(vec) == 0 {
		return 0
	}
	return vec[0]
}
