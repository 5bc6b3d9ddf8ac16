package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/segtag/internal/corpus"
)

func (c *CLI) newTagMapCommand() *cobra.Command {
	var mapPath string
	var stats bool
	var top int

	cmd := &cobra.Command{
		Use:   "tagmap [corpus...]",
		Short: "Relabel a corpus through a tag map, or list its tag inventory",
		Example: `  # Map CTB tags to the universal tag set
  segtag tagmap data/ctb.txt > data/universal.txt

  # Custom map of "from to" lines
  cat data/ctb.txt | segtag tagmap --map ctb2pku.map

  # Tag inventory with the most frequent words per tag
  segtag tagmap data/ctb.txt --stats --top 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && isStdinTerminal() {
				return cmd.Help()
			}
			m := corpus.CTBUniversal
			if mapPath != "" {
				f, err := os.Open(mapPath)
				if err != nil {
					return err
				}
				m, err = corpus.LoadTagMap(f)
				_ = f.Close()
				if err != nil {
					return fmt.Errorf("read %s: %w", mapPath, err)
				}
			}

			in, closeInputs, err := openInputs(args)
			if err != nil {
				return err
			}
			defer closeInputs()
			sents, err := corpus.Load(in)
			if err != nil {
				return err
			}

			out := bufio.NewWriter(os.Stdout)
			defer func() { _ = out.Flush() }()
			if stats {
				for _, st := range corpus.Stats(sents, m, top) {
					_, _ = fmt.Fprintf(out, "%s\t%s\t%d\t%s\n", st.Tag, st.Mapped, st.Count, strings.Join(st.Top, " "))
				}
				return nil
			}
			for _, s := range sents {
				_, _ = out.WriteString(corpus.MapTags(s, m).String())
				_ = out.WriteByte('\n')
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mapPath, "map", "", "Tag map of \"from to\" lines (default: CTB to universal)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print tag, mapped tag, count and top words instead of the corpus")
	cmd.Flags().IntVar(&top, "top", 5, "Words listed per tag with --stats")
	return cmd
}
