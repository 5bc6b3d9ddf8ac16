package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/segtag/internal/crawl"
	"github.com/happyhackingspace/segtag/internal/htmlutil"
)

func (c *CLI) newCrawlCommand() *cobra.Command {
	var (
		sitesFile  string
		outputPath string
		timeout    int
		delay      int
		userAgent  string
		maxTotal   int
		maxPerSite int
		seed       uint64
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl news sites into a page dump for wash",
		Example: `  segtag crawl --sites sites.txt --output crawl.txt
  segtag crawl --sites sites.txt --max-total 1000 --max-per-site 50 | segtag wash --dump --sentences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sites, err := crawl.LoadSites(sitesFile)
			if err != nil {
				return fmt.Errorf("load sites: %w", err)
			}
			slog.Info("Loaded sites", "count", len(sites))

			var out io.Writer = os.Stdout
			if outputPath != "" && outputPath != "-" {
				f, err := os.Create(outputPath)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				out = f
			}
			bw := bufio.NewWriter(out)
			defer func() { _ = bw.Flush() }()

			cr := crawl.New(crawl.NewHTTPClient(time.Duration(timeout)*time.Second), userAgent, seed)
			cr.MaxTotal = maxTotal
			cr.MaxPerSite = maxPerSite
			cr.Delay = time.Duration(delay) * time.Millisecond

			ctx := context.Background()
			for _, site := range sites {
				if cr.Done() {
					break
				}
				n, err := cr.Site(ctx, site, func(doc htmlutil.Doc) error {
					return htmlutil.WriteDoc(bw, doc)
				})
				if err != nil {
					slog.Warn("Failed to crawl site", "site", site, "error", err)
					continue
				}
				slog.Info("Finished site", "site", site, "collected", n, "total", cr.Total())
			}
			if err := bw.Flush(); err != nil {
				return fmt.Errorf("write dump: %w", err)
			}
			slog.Info("Crawl complete", "total", cr.Total())
			return nil
		},
	}

	cmd.Flags().StringVar(&sitesFile, "sites", "", "File with one site per line")
	cmd.Flags().StringVar(&outputPath, "output", "", "Dump file (default: stdout)")
	cmd.Flags().IntVar(&timeout, "timeout", 30, "HTTP timeout in seconds")
	cmd.Flags().IntVar(&delay, "delay", 800, "Delay between requests in ms")
	cmd.Flags().StringVar(&userAgent, "user-agent", "Mozilla/5.0 (compatible; segtag/1.0)", "User-Agent header")
	cmd.Flags().IntVar(&maxTotal, "max-total", 0, "Max total pages (0=unlimited)")
	cmd.Flags().IntVar(&maxPerSite, "max-per-site", 20, "Max pages per site")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed for the link visiting order")
	_ = cmd.MarkFlagRequired("sites")
	return cmd
}
