package segtag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/segtag/internal/corpus"
	"github.com/happyhackingspace/segtag/lattice"
)

// ErrNoSentences is returned when training data is empty.
var ErrNoSentences = errors.New("no sentences")

// TrainConfig holds configuration for training.
type TrainConfig struct {
	// Train and Dev are corpus paths used by TrainFiles.
	Train string `yaml:"train"`
	Dev   string `yaml:"dev,omitempty"`
	// Model is the output prefix used by the train command.
	Model string `yaml:"model,omitempty"`

	Epochs  int    `yaml:"epochs"`
	Shuffle bool   `yaml:"shuffle"`
	Seed    uint64 `yaml:"seed"`
	// Workers is the number of goroutines used to evaluate the dev set.
	Workers int `yaml:"workers"`

	Options Options `yaml:",inline"`
}

// DefaultTrainConfig returns the default training configuration.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:  10,
		Seed:    1,
		Workers: 1,
	}
}

// LoadTrainConfig reads a YAML training configuration. Fields missing from
// the file keep their DefaultTrainConfig value.
func LoadTrainConfig(path string) (TrainConfig, error) {
	config := DefaultTrainConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("segtag: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("segtag: parse %s: %w", path, err)
	}
	return config, nil
}

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	// Workers is the number of decoding goroutines; 0 uses GOMAXPROCS.
	Workers int
	// KeepOutput stores the predicted spans of every sentence.
	KeepOutput bool
}

// EvalResult holds evaluation counts and, optionally, the predictions.
type EvalResult struct {
	Eval    Eval
	Outputs [][]lattice.Span
}

// TrainFiles trains on config.Train, evaluating on config.Dev when set.
func TrainFiles(ctx context.Context, config TrainConfig) (*Tagger, error) {
	train, err := LoadCorpus(config.Train)
	if err != nil {
		return nil, err
	}
	var dev []Sentence
	if config.Dev != "" {
		if dev, err = LoadCorpus(config.Dev); err != nil {
			return nil, err
		}
	}
	return Train(ctx, train, dev, config)
}

// Train learns a tagger from gold sentences with the averaged perceptron.
// Each epoch decodes every training sentence with the current weights and
// updates towards the gold analysis; dev, when not empty, is evaluated with
// the averaged weights after each epoch. The returned tagger carries the
// averaged weights.
func Train(ctx context.Context, train, dev []Sentence, config TrainConfig) (*Tagger, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("segtag: %w", ErrNoSentences)
	}
	if config.Epochs <= 0 {
		config.Epochs = DefaultTrainConfig().Epochs
	}
	tagSet := corpus.Tags(train)
	slog.Debug("Tag set", "size", len(tagSet), "tags", tagSet)

	learner := lattice.NewLearner()
	t, err := newTagger(lattice.NewIndexer(tagSet...), learner.Weights(), config.Options)
	if err != nil {
		return nil, fmt.Errorf("segtag: %w", err)
	}

	order := append([]Sentence(nil), train...)
	gradient := lattice.NewWeight()
	for epoch := range config.Epochs {
		start := time.Now()
		if config.Shuffle {
			corpus.Shuffle(order, config.Seed+uint64(epoch))
		}

		var ev Eval
		for i, s := range order {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			t.lat.Reset(s.Raw, s.Off)
			t.gen.Generate(&t.lat)
			output, err := t.pf.FindPath(&t.lat, t.feature)
			if err != nil {
				return nil, fmt.Errorf("segtag: sentence %d: %w", i, err)
			}
			gradient.Clear()
			if err := t.feature.CalcGradient(s.Gold, output, gradient); err != nil {
				return nil, fmt.Errorf("segtag: sentence %d: %w", i, err)
			}
			if err := learner.Update(gradient); err != nil {
				return nil, fmt.Errorf("segtag: sentence %d: %w", i, err)
			}
			ev.Add(s.Gold, output)
		}
		ev.Elapsed = time.Since(start)
		slog.Info("Epoch completed", "epoch", epoch+1,
			"seg_f1", fmt.Sprintf("%.4f", ev.F1()),
			"tag_f1", fmt.Sprintf("%.4f", ev.TagF1()),
			"features", learner.Weights().Len(),
			"duration", ev.Elapsed)
		slog.Debug("Training counts", "epoch", epoch+1, "eval", ev.String())

		if len(dev) == 0 {
			continue
		}
		ave, err := learner.Average()
		if err != nil {
			return nil, fmt.Errorf("segtag: %w", err)
		}
		res, err := t.withWeights(ave).Test(ctx, dev, &EvalConfig{Workers: config.Workers})
		if err != nil {
			return nil, err
		}
		slog.Info("Dev evaluation", "epoch", epoch+1,
			"seg_f1", fmt.Sprintf("%.4f", res.Eval.F1()),
			"tag_f1", fmt.Sprintf("%.4f", res.Eval.TagF1()),
			"duration", res.Eval.Elapsed)
	}

	ave, err := learner.Average()
	if err != nil {
		return nil, fmt.Errorf("segtag: %w", err)
	}
	return t.withWeights(ave), nil
}

// withWeights returns a tagger sharing t's tag set and options that scores
// with w.
func (t *Tagger) withWeights(w *lattice.Weight) *Tagger {
	feature := t.feature.Clone()
	feature.SetWeights(w)
	gen := lattice.NewGenerator(t.tags)
	gen.AddPunctuation(t.opts.Punctuation...)
	return &Tagger{
		opts:    t.opts,
		tags:    t.tags,
		weights: w,
		feature: feature,
		gen:     gen,
	}
}

// Test decodes every sentence and scores it against its gold spans. Decoding
// runs on config.Workers goroutines that share the read-only weights.
func (t *Tagger) Test(ctx context.Context, sents []Sentence, config *EvalConfig) (*EvalResult, error) {
	workers := 0
	keep := false
	if config != nil {
		workers = config.Workers
		keep = config.KeepOutput
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(1, min(workers, len(sents)))

	start := time.Now()
	res := &EvalResult{}
	if keep {
		res.Outputs = make([][]lattice.Span, len(sents))
	}
	evals := make([]Eval, workers)

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := range sents {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := range workers {
		worker := t.withWeights(t.weights)
		g.Go(func() error {
			for i := range jobs {
				s := sents[i]
				worker.lat.Reset(s.Raw, s.Off)
				worker.gen.Generate(&worker.lat)
				output, err := worker.pf.FindPath(&worker.lat, worker.feature)
				if err != nil {
					return fmt.Errorf("segtag: sentence %d: %w", i, err)
				}
				evals[w].Add(s.Gold, output)
				if keep {
					res.Outputs[i] = output
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range evals {
		res.Eval.Merge(&evals[i])
	}
	res.Eval.Elapsed = time.Since(start)
	return res, nil
}
