package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/segtag"
	"github.com/happyhackingspace/segtag/lattice"
)

func (c *CLI) newDiffCommand() *cobra.Command {
	var all bool
	var noColor bool

	cmd := &cobra.Command{
		Use:   "diff <gold> <predicted>",
		Short: "Compare predicted segmentation against a gold corpus word by word",
		Long: `Compare two corpora of the same sentences line by line. Every predicted word
is marked as correct, compatible (splits or merges gold words without crossing
a gold boundary) or crossing (cuts through a gold word). Correctly bounded
words with a wrong tag are marked as mistagged.

Without colors the classes are shown as {compatible}, [crossing] and <mistagged>.`,
		Args: cobra.ExactArgs(2),
		Example: `  segtag test data/test.txt --model model/ctb --output pred.txt
  segtag diff data/test.txt pred.txt | less -R
  segtag diff data/test.txt pred.txt --all --no-color`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.Enable = false
			}
			gold, err := segtag.LoadCorpus(args[0])
			if err != nil {
				return err
			}
			pred, err := segtag.LoadCorpus(args[1])
			if err != nil {
				return err
			}
			if len(gold) != len(pred) {
				return fmt.Errorf("%s has %d sentences, %s has %d", args[0], len(gold), args[1], len(pred))
			}

			out := bufio.NewWriter(os.Stdout)
			defer func() { _ = out.Flush() }()
			var ev segtag.Eval
			var counts [3]int
			for i := range gold {
				g, p := gold[i], pred[i]
				if g.Raw != p.Raw {
					slog.Warn("Sentence text differs, skipping", "line", i+1)
					continue
				}
				ev.Add(g.Gold, p.Gold)
				matches := segtag.Overlap(g.Gold, p.Gold)
				for _, m := range matches {
					counts[m]++
				}
				if !all && lattice.Equal(g.Gold, p.Gold) {
					continue
				}
				_, _ = fmt.Fprintf(out, "%d\t%s\n", i+1, g.String())
				_, _ = fmt.Fprintf(out, "\t%s\n", renderDiff(g.Raw, g.Off, g.Gold, p.Gold, matches))
			}
			_, _ = fmt.Fprintf(out, "correct %d  compatible %d  crossing %d\n",
				counts[segtag.MatchCorrect], counts[segtag.MatchCompatible], counts[segtag.MatchCrossing])
			_, _ = fmt.Fprintln(out, ev.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Print sentences without differences too")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors")
	return cmd
}

// renderDiff renders output as word_tag tokens marked by their match class.
func renderDiff(raw string, off []int, gold, output []lattice.Span, matches []segtag.Match) string {
	tags := make(map[[2]int]string, len(gold))
	for _, g := range gold {
		tags[[2]int{g.Begin, g.End}] = g.Label
	}

	words := make([]string, len(output))
	for k, o := range output {
		w := raw[off[o.Begin]:off[o.End]]
		if o.Label != "" {
			w += "_" + o.Label
		}
		switch {
		case matches[k] == segtag.MatchCrossing:
			w = mark(color.Red, "[", w, "]")
		case matches[k] == segtag.MatchCompatible:
			w = mark(color.Yellow, "{", w, "}")
		case tags[[2]int{o.Begin, o.End}] != o.Label:
			w = mark(color.Cyan, "<", w, ">")
		}
		words[k] = w
	}
	return strings.Join(words, " ")
}

func mark(c color.Color, begin, w, end string) string {
	if !color.Enable {
		return begin + w + end
	}
	return c.Sprint(w)
}
