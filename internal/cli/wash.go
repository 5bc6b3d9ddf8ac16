package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/segtag/internal/htmlutil"
	"github.com/happyhackingspace/segtag/internal/textutil"
)

type washer struct {
	minChinese int
	sentences  bool
	out        *bufio.Writer
	enc        *json.Encoder
	pages      int
	skipped    int
}

func (c *CLI) newWashCommand() *cobra.Command {
	var dump bool
	w := &washer{}

	cmd := &cobra.Command{
		Use:   "wash [url-or-file...]",
		Short: "Extract the Chinese text of HTML pages",
		Example: `  # One JSON object per page: url, domain, title, keywords, content
  segtag wash https://news.sina.com.cn/c/2024-01-01/doc.shtml

  # Plain sentences, ready for predict
  segtag wash page.html --sentences | segtag predict --model model/ctb

  # Crawl dump with <docurl>URL</docurl> page separators
  segtag wash --dump crawl.txt > pages.jsonl
  cat crawl.txt | segtag wash --dump`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w.out = bufio.NewWriter(os.Stdout)
			w.enc = json.NewEncoder(w.out)
			w.enc.SetEscapeHTML(false)
			defer func() { _ = w.out.Flush() }()

			if len(args) == 0 {
				if isStdinTerminal() {
					return cmd.Help()
				}
				if dump {
					return w.dump(os.Stdin)
				}
				page, contentType, url, err := readFromStdin()
				if err != nil {
					return err
				}
				return w.page(url, page, contentType)
			}

			for _, target := range args {
				if dump {
					if err := w.dumpFile(target); err != nil {
						return err
					}
					continue
				}
				slog.Debug("Fetching HTML", "target", target)
				page, contentType, err := fetchPage(target)
				if err != nil {
					return err
				}
				url := ""
				if isURL(target) {
					url = target
				}
				if err := w.page(url, page, contentType); err != nil {
					return err
				}
			}
			slog.Debug("Wash completed", "pages", w.pages, "skipped", w.skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Inputs are crawl dumps of <docurl>-separated pages")
	cmd.Flags().BoolVar(&w.sentences, "sentences", false, "Print one sentence per line instead of JSON")
	cmd.Flags().IntVar(&w.minChinese, "min-chinese", 5, "Drop text blocks with fewer Chinese characters")
	return cmd
}

func (w *washer) dumpFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return w.dump(f)
}

func (w *washer) dump(r io.Reader) error {
	return htmlutil.ReadDocs(r, func(doc htmlutil.Doc) error {
		return w.page(doc.URL, doc.HTML, "")
	})
}

func (w *washer) page(url string, page []byte, contentType string) error {
	doc, err := htmlutil.LoadHTML(bytes.NewReader(page), contentType)
	if err != nil {
		slog.Warn("Skipping unparsable page", "url", url, "error", err)
		w.skipped++
		return nil
	}
	p := htmlutil.Extract(doc, w.minChinese)
	p.URL = url
	p.Domain = htmlutil.Domain(url)
	if len(p.Content) == 0 {
		slog.Debug("Skipping page without text", "url", url)
		w.skipped++
		return nil
	}
	w.pages++

	if !w.sentences {
		if err := w.enc.Encode(p); err != nil {
			return fmt.Errorf("write page: %w", err)
		}
		return nil
	}
	if p.Title != "" {
		_, _ = w.out.WriteString(p.Title)
		_ = w.out.WriteByte('\n')
	}
	for _, block := range p.Content {
		for _, s := range textutil.SplitSentences(block) {
			_, _ = w.out.WriteString(s)
			_ = w.out.WriteByte('\n')
		}
	}
	return nil
}
