package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/segtag"
	"github.com/happyhackingspace/segtag/internal/textutil"
)

// defaultCacheSize bounds the number of distinct sentences remembered by
// predict. Crawled text repeats boilerplate lines heavily.
const defaultCacheSize = 10_000

func (c *CLI) newPredictCommand() *cobra.Command {
	var modelPrefix string
	var split bool
	var cacheSize int
	var opts segtag.Options

	cmd := &cobra.Command{
		Use:   "predict [file...]",
		Short: "Segment and tag raw text, one sentence per line",
		Example: `  echo "我爱北京天安门" | segtag predict --model model/ctb
  segtag predict --model model/ctb news.txt --split
  segtag wash page.html --sentences | segtag predict --model model/ctb -s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && isStdinTerminal() {
				return cmd.Help()
			}
			start := time.Now()
			tg, err := segtag.Load(modelPrefix, opts)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "prefix", modelPrefix, "duration", time.Since(start))

			in, closeInputs, err := openInputs(args)
			if err != nil {
				return err
			}
			defer closeInputs()

			p := &predictor{tagger: tg, split: split}
			if cacheSize > 0 {
				if p.cache, err = lru.New[string, string](cacheSize); err != nil {
					return err
				}
			}
			return p.run(in, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&modelPrefix, "model", "model", "Model prefix")
	cmd.Flags().BoolVar(&split, "split", false, "Split lines into sentences before tagging")
	cmd.Flags().IntVar(&cacheSize, "cache", defaultCacheSize, "Number of tagged sentences to cache (0 disables)")
	addOptionFlags(cmd, &opts)
	return cmd
}

type predictor struct {
	tagger *segtag.Tagger
	split  bool
	cache  *lru.Cache[string, string]
	lines  int
	hits   int
}

// run tags every line of r and writes the result to w, flushing after each
// line so predict can sit in a pipeline.
func (p *predictor) run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	bw := bufio.NewWriter(w)
	for scanner.Scan() {
		out, err := p.line(scanner.Text())
		if err != nil {
			return err
		}
		_, _ = bw.WriteString(out)
		_ = bw.WriteByte('\n')
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	slog.Debug("Prediction completed", "lines", p.lines, "cache_hits", p.hits)
	return nil
}

func (p *predictor) line(text string) (string, error) {
	p.lines++
	text = textutil.Sentence(text)
	if text == "" {
		return "", nil
	}
	sents := []string{text}
	if p.split {
		sents = textutil.SplitSentences(text)
	}
	parts := make([]string, 0, len(sents))
	for _, s := range sents {
		out, err := p.sentence(s)
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, " "), nil
}

func (p *predictor) sentence(s string) (string, error) {
	if p.cache != nil {
		if out, ok := p.cache.Get(s); ok {
			p.hits++
			return out, nil
		}
	}
	out, err := p.tagger.TagString(s)
	if err != nil {
		return "", err
	}
	if p.cache != nil {
		p.cache.Add(s, out)
	}
	return out, nil
}
