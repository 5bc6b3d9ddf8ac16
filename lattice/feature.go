package lattice

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// numPositions is the number of intra-word roles: Begin, Middle, End, Single.
	numPositions = 4
	// MaxLenClass buckets span lengths for the transition matrix; every span of
	// MaxLenClass characters or more shares class 0.
	MaxLenClass = 2
	// TransitionKey is the weight key of the transition matrix.
	TransitionKey = "transition"
)

const (
	posB = iota
	posM
	posE
	posS
)

var (
	// ErrNotPrepared is returned by CalcGradient before any Prepare.
	ErrNotPrepared = errors.New("feature not prepared")
	// ErrTransitionSize is returned when the stored transition matrix does not
	// match the tag set.
	ErrTransitionSize = errors.New("transition matrix does not match tag set")
)

// Plugin is a pluggable feature module scored alongside the character
// n-gram features.
type Plugin interface {
	// Prepare is called for every sentence before scoring.
	Prepare(lat *Lattice, weights *Weight)
	// Unigram scores candidate i.
	Unigram(i int) float64
	// Bigram scores candidate b following candidate a.
	Bigram(a, b int) float64
	// CalcGradient adds +1 credit for gold and -1 blame for output features.
	CalcGradient(gold, output []Span, gradient *Weight) error
	// Clone returns a plugin sharing read-only resources but no per-sentence state.
	Clone() Plugin
}

// Feature scores lattice candidates from character n-gram emissions, a
// (tag, length class) transition matrix and any configured plugins.
type Feature struct {
	tags      *Indexer
	weights   *Weight
	plugins   []Plugin
	normalize func(string) string
	wordKeys  bool

	lat        *Lattice
	raw        string
	off        []int
	offBuf     []int
	emission   []float64
	transition []float64
	labels     []int
	tagIDs     []int
	charTypes  []int
	keys       []string
}

// NewFeature creates a feature engine over the given tag set.
func NewFeature(tags *Indexer) *Feature {
	return &Feature{tags: tags}
}

// SetWeights sets the weights used for scoring.
func (f *Feature) SetWeights(w *Weight) {
	f.weights = w
}

// Weights returns the weights used for scoring.
func (f *Feature) Weights() *Weight {
	return f.weights
}

// SetNormalizer sets the per-character normalization applied before n-gram
// lookup. A nil function disables normalization.
func (f *Feature) SetNormalizer(fn func(string) string) {
	f.normalize = fn
}

// EnableWordKeys turns on word-level character-class features.
func (f *Feature) EnableWordKeys(on bool) {
	f.wordKeys = on
}

// AddPlugin appends a feature module.
func (f *Feature) AddPlugin(p Plugin) {
	f.plugins = append(f.plugins, p)
}

// Plugins returns the configured feature modules.
func (f *Feature) Plugins() []Plugin {
	return f.plugins
}

// Clone returns an engine with the same configuration and weights and
// cloned plugins, suitable for use on another goroutine as long as the
// weights are not modified.
func (f *Feature) Clone() *Feature {
	c := &Feature{
		tags:      f.tags,
		weights:   f.weights,
		normalize: f.normalize,
		wordKeys:  f.wordKeys,
	}
	for _, p := range f.plugins {
		c.plugins = append(c.plugins, p.Clone())
	}
	return c
}

func (f *Feature) tagsetSize() int {
	if f.tags == nil || f.tags.Size() == 0 {
		return 1
	}
	return f.tags.Size()
}

// Prepare computes the per-sentence emission table and candidate labels.
func (f *Feature) Prepare(lat *Lattice) error {
	if f.weights == nil {
		f.weights = NewWeight()
	}
	for _, p := range f.plugins {
		p.Prepare(lat, f.weights)
	}
	f.lat = lat
	f.normalizeText(lat)

	T := f.tagsetSize()
	f.transition = f.weights.Get(TransitionKey)
	if f.transition != nil && len(f.transition) != (T*MaxLenClass)*(T*MaxLenClass) {
		return fmt.Errorf("have %d values for %d tags: %w", len(f.transition), T, ErrTransitionSize)
	}

	f.emission = resize(f.emission, numPositions*T*lat.Len())
	f.scatter(f.weights, f.emission, false)

	f.labels = f.labels[:0]
	f.tagIDs = f.tagIDs[:0]
	for _, span := range lat.Spans {
		id := f.tags.Get(span.Label)
		f.tagIDs = append(f.tagIDs, id)
		f.labels = append(f.labels, labelIndex(id, span.Len()))
	}

	if f.wordKeys {
		f.calcCharTypes()
	}
	return nil
}

// normalizeText builds the normalized copy of the sentence used as n-gram key
// material. Character boundaries are preserved one-to-one.
func (f *Feature) normalizeText(lat *Lattice) {
	if f.normalize == nil {
		f.raw = lat.Raw
		f.off = lat.Off
		return
	}
	var sb strings.Builder
	sb.Grow(len(lat.Raw))
	f.offBuf = append(f.offBuf[:0], 0)
	for i := range lat.Len() {
		sb.WriteString(f.normalize(lat.Text(i, i+1)))
		f.offBuf = append(f.offBuf, sb.Len())
	}
	f.raw = sb.String()
	f.off = f.offBuf
}

// Unigram returns the score of candidate i on its own.
func (f *Feature) Unigram(i int) float64 {
	span := f.lat.Spans[i]
	score := 0.0

	if l := f.tagIDs[i]; l >= 0 {
		width := numPositions * f.tagsetSize()
		if span.Len() == 1 {
			score += f.emission[span.Begin*width+numPositions*l+posS]
		} else {
			score += f.emission[span.Begin*width+numPositions*l+posB]
			for p := span.Begin + 1; p < span.End-1; p++ {
				score += f.emission[p*width+numPositions*l+posM]
			}
			score += f.emission[(span.End-1)*width+numPositions*l+posE]
		}
	}

	if f.wordKeys {
		f.keys = f.wordKeysOf(span, f.keys[:0])
		for _, key := range f.keys {
			if vec := f.weights.Get(key); vec != nil {
				score += vec[0]
			}
		}
	}

	for _, p := range f.plugins {
		score += p.Unigram(i)
	}
	return score
}

// Bigram returns the score of candidate b directly following candidate a.
func (f *Feature) Bigram(a, b int) float64 {
	score := 0.0
	for _, p := range f.plugins {
		score += p.Bigram(a, b)
	}
	if f.transition != nil && f.labels[a] >= 0 && f.labels[b] >= 0 {
		score += f.transition[f.labels[a]*f.tagsetSize()*MaxLenClass+f.labels[b]]
	}
	return score
}

// CalcGradient writes into gradient the perceptron update that moves the
// weights towards gold and away from output. Both sequences must refer to
// the sentence of the last Prepare. Identical or empty sequences are no-ops.
func (f *Feature) CalcGradient(gold, output []Span, gradient *Weight) error {
	if Equal(gold, output) || len(gold) == 0 || len(output) == 0 {
		return nil
	}
	if f.lat == nil {
		return ErrNotPrepared
	}

	for _, p := range f.plugins {
		if err := p.CalcGradient(gold, output, gradient); err != nil {
			return err
		}
	}

	// character based
	T := f.tagsetSize()
	n := len(f.off) - 1
	f.emission = resize(f.emission, numPositions*T*n)
	for _, span := range gold {
		f.addSpanEmission(span, n, 1)
	}
	for _, span := range output {
		f.addSpanEmission(span, n, -1)
	}
	f.scatter(gradient, f.emission, true)

	// word based
	if f.wordKeys {
		one := []float64{1}
		for _, seq := range [][]Span{gold, output} {
			for _, span := range seq {
				f.keys = f.wordKeysOf(span, f.keys[:0])
				for _, key := range f.keys {
					if err := gradient.AddFrom(key, one, 1); err != nil {
						return err
					}
				}
			}
			one[0] = -1
		}
	}

	// transitions
	trans := make([]float64, (T*MaxLenClass)*(T*MaxLenClass))
	f.addTransitions(trans, gold, 1)
	f.addTransitions(trans, output, -1)
	return gradient.AddFrom(TransitionKey, trans, 1)
}

// scatter slides unigram and bigram windows over the normalized sentence.
// A window of n characters starting at i owns a vector of (n+2) blocks that
// line up with characters i-1 .. i+n of the emission table. With update false
// the vectors are added into emission; with update true emission is added into
// the vectors, creating missing keys.
func (f *Feature) scatter(model *Weight, emission []float64, update bool) {
	f.scatterNgrams(1, model, emission, update)
	f.scatterNgrams(2, model, emission, update)
}

func (f *Feature) scatterNgrams(n int, model *Weight, emission []float64, update bool) {
	width := numPositions * f.tagsetSize()
	chars := len(f.off) - 1
	for i := 0; i+n <= chars; i++ {
		base := (i - 1) * width
		lo := max(0, -base)
		hi := min((n+2)*width, len(emission)-base)

		key := f.raw[f.off[i]:f.off[i+n]]
		vec := model.Get(key)
		if vec == nil {
			if !update || allZero(emission[base+lo:base+hi]) {
				continue
			}
			model.Insert(key, (n+2)*width)
			vec = model.Get(key)
		}
		hi = min(hi, len(vec))

		if update {
			for j := lo; j < hi; j++ {
				vec[j] += emission[base+j]
			}
		} else {
			for j := lo; j < hi; j++ {
				emission[base+j] += vec[j]
			}
		}
	}
}

func (f *Feature) addSpanEmission(span Span, n int, delta float64) {
	l := f.tags.Get(span.Label)
	if l < 0 || span.Begin < 0 || span.End > n || span.Len() <= 0 {
		return
	}
	width := numPositions * f.tagsetSize()
	if span.Len() == 1 {
		f.emission[span.Begin*width+numPositions*l+posS] += delta
		return
	}
	f.emission[span.Begin*width+numPositions*l+posB] += delta
	for p := span.Begin + 1; p < span.End-1; p++ {
		f.emission[p*width+numPositions*l+posM] += delta
	}
	f.emission[(span.End-1)*width+numPositions*l+posE] += delta
}

func (f *Feature) addTransitions(trans []float64, seq []Span, delta float64) {
	size := f.tagsetSize() * MaxLenClass
	for i := 0; i+1 < len(seq); i++ {
		a := labelIndex(f.tags.Get(seq[i].Label), seq[i].Len())
		b := labelIndex(f.tags.Get(seq[i+1].Label), seq[i+1].Len())
		if a < 0 || b < 0 {
			continue
		}
		trans[a*size+b] += delta
	}
}

// labelIndex combines a tag ID and a span length into a transition row.
func labelIndex(tagID, length int) int {
	if tagID < 0 {
		return -1
	}
	if length >= MaxLenClass {
		length = 0
	}
	return tagID*MaxLenClass + length
}
