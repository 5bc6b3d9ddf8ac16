package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/happyhackingspace/segtag"
	"github.com/happyhackingspace/segtag/internal/corpus"
	"github.com/happyhackingspace/segtag/lattice"
	"github.com/spf13/cobra"
)

func (c *CLI) newTestCommand() *cobra.Command {
	var modelPrefix string
	var outputPath string
	var workers int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "test <corpus>",
		Short: "Evaluate a model on a gold word_tag corpus",
		Args:  cobra.ExactArgs(1),
		Example: `  segtag test data/test.txt --model model/ctb
  segtag test data/test.txt --model model/ctb --workers 8 --output pred.txt
  segtag test data/test.txt --model model/ctb --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			tg, err := segtag.Load(modelPrefix, segtag.Options{})
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "prefix", modelPrefix, "duration", time.Since(start))

			sents, err := segtag.LoadCorpus(args[0])
			if err != nil {
				return err
			}
			slog.Info("Evaluating", "corpus", args[0], "sentences", len(sents))

			res, err := tg.Test(context.Background(), sents, &segtag.EvalConfig{
				Workers:    workers,
				KeepOutput: outputPath != "",
			})
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", res.Eval.Elapsed)

			if outputPath != "" {
				if err := writePredictions(outputPath, sents, res.Outputs); err != nil {
					return err
				}
				slog.Info("Predictions written", "path", outputPath)
			}

			if asJSON {
				output, _ := json.MarshalIndent(res.Eval, "", "  ")
				fmt.Println(string(output))
				return nil
			}
			ev := res.Eval
			fmt.Printf("Segmentation: P %.2f%%  R %.2f%%  F %.2f%%\n", ev.Precision()*100, ev.Recall()*100, ev.F1()*100)
			fmt.Printf("Tagging:      P %.2f%%  R %.2f%%  F %.2f%%\n", ev.TagPrecision()*100, ev.TagRecall()*100, ev.TagF1()*100)
			fmt.Printf("Exact sentences: %d/%d  gold words: %d  predicted words: %d\n",
				ev.ExactSentences, ev.Sentences, ev.Gold, ev.Predicted)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPrefix, "model", "model", "Model prefix")
	cmd.Flags().StringVar(&outputPath, "output", "", "Write predictions in corpus form to this file")
	cmd.Flags().IntVar(&workers, "workers", 0, "Decoding goroutines (default: number of CPUs)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print counts as JSON")
	return cmd
}

func writePredictions(path string, sents []segtag.Sentence, outputs [][]lattice.Span) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for i, s := range sents {
		_, _ = w.WriteString(corpus.Format(s.Raw, s.Off, outputs[i]))
		_ = w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
