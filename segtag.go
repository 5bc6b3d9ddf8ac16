// Package segtag segments Chinese text into words and tags each word.
//
// Segmentation and tagging are decided jointly by a lattice model trained with
// an averaged perceptron.
//
//	tg, _ := segtag.Load("model", segtag.Options{})
//	out, _ := tg.TagString("我爱北京天安门")
//	fmt.Println(out) // 我_r 爱_v 北京_ns 天安门_ns
package segtag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/segtag/internal/corpus"
	"github.com/happyhackingspace/segtag/internal/dictionary"
	"github.com/happyhackingspace/segtag/internal/textutil"
	"github.com/happyhackingspace/segtag/lattice"
)

// File suffixes of a saved model.
const (
	WeightsSuffix = ".weights"
	TagsSuffix    = ".tags"
	OptionsSuffix = ".yaml"
)

// ErrNoTags is returned when a tagger would have an empty tag set.
var ErrNoTags = errors.New("empty tag set")

// Sentence is a gold-annotated sentence.
type Sentence = corpus.Sentence

// LoadCorpus reads a corpus of word_tag tokens, one sentence per line.
func LoadCorpus(path string) ([]Sentence, error) {
	sents, err := corpus.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("segtag: %w", err)
	}
	return sents, nil
}

// Options selects the features of a tagger. A model must be used with the
// options it was trained with; Save stores them next to the weights.
type Options struct {
	// Dicts are gazetteers of "word category" lines.
	Dicts []string `yaml:"dicts,omitempty"`
	// Phrases are gazetteers of phrases a word should not cut through.
	Phrases []string `yaml:"phrases,omitempty"`
	// Freq is a "word count" list used as a fixed prior.
	Freq string `yaml:"freq,omitempty"`
	// WordKeys enables character-class features over whole words.
	WordKeys bool `yaml:"word_keys,omitempty"`
	// NoNormalize disables full-width to half-width folding of n-gram keys.
	NoNormalize bool `yaml:"no_normalize,omitempty"`
	// Punctuation adds characters that always stand alone.
	Punctuation []string `yaml:"punctuation,omitempty"`
}

// Tagger segments and tags sentences. A Tagger is not safe for concurrent use.
type Tagger struct {
	opts    Options
	tags    *lattice.Indexer
	weights *lattice.Weight
	feature *lattice.Feature
	gen     *lattice.Generator
	pf      lattice.PathFinder
	lat     lattice.Lattice
}

// New creates an untrained tagger over tags.
func New(tags []string, opts Options) (*Tagger, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("segtag: %w", ErrNoTags)
	}
	t, err := newTagger(lattice.NewIndexer(tags...), lattice.NewWeight(), opts)
	if err != nil {
		return nil, fmt.Errorf("segtag: %w", err)
	}
	return t, nil
}

func newTagger(tags *lattice.Indexer, weights *lattice.Weight, opts Options) (*Tagger, error) {
	feature, err := newFeature(tags, opts)
	if err != nil {
		return nil, err
	}
	feature.SetWeights(weights)
	gen := lattice.NewGenerator(tags)
	gen.AddPunctuation(opts.Punctuation...)
	return &Tagger{
		opts:    opts,
		tags:    tags,
		weights: weights,
		feature: feature,
		gen:     gen,
	}, nil
}

func newFeature(tags *lattice.Indexer, opts Options) (*lattice.Feature, error) {
	f := lattice.NewFeature(tags)
	if !opts.NoNormalize {
		f.SetNormalizer(textutil.HalfWidth)
	}
	f.EnableWordKeys(opts.WordKeys)
	for _, path := range opts.Dicts {
		d, err := dictionary.LoadFile(path)
		if err != nil {
			return nil, err
		}
		f.AddPlugin(lattice.NewDictFeature(filepath.Base(path), d))
	}
	for _, path := range opts.Phrases {
		d, err := dictionary.LoadFile(path)
		if err != nil {
			return nil, err
		}
		m, err := dictionary.NewMatcher(d)
		if err != nil {
			return nil, err
		}
		f.AddPlugin(lattice.NewPhraseFeature(filepath.Base(path), m))
	}
	if opts.Freq != "" {
		d, err := dictionary.LoadFile(opts.Freq)
		if err != nil {
			return nil, err
		}
		f.AddPlugin(lattice.NewFreqFeature(d))
	}
	return f, nil
}

// Load reads a model saved under prefix. When prefix.yaml exists its options
// are used and opts is ignored.
func Load(prefix string, opts Options) (*Tagger, error) {
	if data, err := os.ReadFile(prefix + OptionsSuffix); err == nil {
		opts = Options{}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return nil, fmt.Errorf("segtag: read options: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("segtag: %w", err)
	}

	tags := lattice.NewIndexer()
	if err := tags.LoadFile(prefix + TagsSuffix); err != nil {
		return nil, fmt.Errorf("segtag: %w", err)
	}
	if tags.Size() == 0 {
		return nil, fmt.Errorf("segtag: %w", ErrNoTags)
	}
	weights := lattice.NewWeight()
	if err := weights.LoadFile(prefix + WeightsSuffix); err != nil {
		return nil, fmt.Errorf("segtag: %w", err)
	}
	t, err := newTagger(tags, weights, opts)
	if err != nil {
		return nil, fmt.Errorf("segtag: %w", err)
	}
	return t, nil
}

// Save writes the model to prefix.weights, prefix.tags and prefix.yaml.
func (t *Tagger) Save(prefix string) error {
	if dir := filepath.Dir(prefix); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("segtag: %w", err)
		}
	}
	if err := t.weights.SaveFile(prefix + WeightsSuffix); err != nil {
		return fmt.Errorf("segtag: %w", err)
	}
	if err := t.tags.SaveFile(prefix + TagsSuffix); err != nil {
		return fmt.Errorf("segtag: %w", err)
	}
	data, err := yaml.Marshal(t.opts)
	if err != nil {
		return fmt.Errorf("segtag: %w", err)
	}
	if err := os.WriteFile(prefix+OptionsSuffix, data, 0644); err != nil {
		return fmt.Errorf("segtag: %w", err)
	}
	return nil
}

// Tags returns the tag set in ID order.
func (t *Tagger) Tags() []string {
	return append([]string(nil), t.tags.ToStr...)
}

// Options returns the feature options of the tagger.
func (t *Tagger) Options() Options {
	return t.opts
}

// Weights returns the model weights.
func (t *Tagger) Weights() *lattice.Weight {
	return t.weights
}

// Tag returns the best segmentation and tagging of raw. An empty sentence
// gives no spans.
func (t *Tagger) Tag(raw string) ([]lattice.Span, error) {
	t.lat.Reset(raw, lattice.Offsets(raw))
	t.gen.Generate(&t.lat)
	spans, err := t.pf.FindPath(&t.lat, t.feature)
	if err != nil {
		return nil, fmt.Errorf("segtag: %w", err)
	}
	return spans, nil
}

// TagString tags raw and renders the result as word_tag tokens.
func (t *Tagger) TagString(raw string) (string, error) {
	spans, err := t.Tag(raw)
	if err != nil {
		return "", err
	}
	return corpus.Format(raw, t.lat.Off, spans), nil
}
