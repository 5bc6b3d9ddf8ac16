// Package crawl collects news pages for the wash step. Pages are written as
// crawl dumps that htmlutil.ReadDocs reads back.
package crawl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/happyhackingspace/segtag/internal/htmlutil"
)

// maxPageBytes caps the body read from a single response.
const maxPageBytes = 5 * 1024 * 1024

// Client performs HTTP requests.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client with a request timeout that follows at most
// five redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// Crawler follows links within a site and emits every page it fetches.
type Crawler struct {
	Client     Client
	UserAgent  string
	MaxPerSite int
	MaxTotal   int // 0 means unlimited
	Delay      time.Duration
	MinBytes   int

	rng   *rand.Rand
	total int
}

// New creates a crawler. seed fixes the order in which links are visited.
func New(client Client, userAgent string, seed uint64) *Crawler {
	return &Crawler{
		Client:     client,
		UserAgent:  userAgent,
		MaxPerSite: 20,
		MinBytes:   100,
		rng:        rand.New(rand.NewPCG(seed, seed)),
	}
}

// Total returns the number of pages emitted so far.
func (c *Crawler) Total() int {
	return c.total
}

// Done reports whether MaxTotal pages have been emitted.
func (c *Crawler) Done() bool {
	return c.MaxTotal > 0 && c.total >= c.MaxTotal
}

// Site crawls siteURL breadth first, staying on the same registrable domain,
// and calls emit for every page fetched with status 200. It returns the
// number of pages emitted for this site.
func (c *Crawler) Site(ctx context.Context, siteURL string, emit func(htmlutil.Doc) error) (int, error) {
	siteU, err := url.Parse(siteURL)
	if err != nil {
		return 0, err
	}

	page, status, err := c.fetch(ctx, siteURL)
	if err != nil {
		return 0, fmt.Errorf("homepage: %w", err)
	}
	if status >= 400 || len(page) < c.MinBytes {
		return 0, fmt.Errorf("homepage HTTP %d (%d bytes)", status, len(page))
	}
	if err := c.emit(emit, siteURL, page); err != nil {
		return 0, err
	}
	collected := 1
	slog.Debug("Collected homepage", "url", siteURL)

	visited := map[string]bool{normalizeURL(siteURL): true}
	queue := ExtractLinks(page, siteU)
	c.rng.Shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })

	for len(queue) > 0 && collected < c.MaxPerSite && !c.Done() {
		link := queue[0]
		queue = queue[1:]

		linkU, err := url.Parse(link)
		if err != nil || !sameSite(siteU, linkU) || skipURL(linkU) {
			continue
		}
		normalized := normalizeURL(link)
		if visited[normalized] {
			continue
		}
		visited[normalized] = true

		if err := sleep(ctx, c.Delay); err != nil {
			return collected, err
		}
		linkPage, linkStatus, err := c.fetch(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return collected, ctx.Err()
			}
			slog.Debug("Failed to fetch link", "url", link, "error", err)
			continue
		}
		if linkStatus != http.StatusOK || len(linkPage) < c.MinBytes {
			continue
		}
		if err := c.emit(emit, link, linkPage); err != nil {
			return collected, err
		}
		collected++
		slog.Debug("Collected link", "url", link)
		queue = append(queue, ExtractLinks(linkPage, linkU)...)
	}
	return collected, nil
}

func (c *Crawler) emit(emit func(htmlutil.Doc) error, rawURL string, page []byte) error {
	c.total++
	return emit(htmlutil.Doc{URL: rawURL, HTML: page})
}

func (c *Crawler) fetch(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.5")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ExtractLinks returns the absolute targets of the <a href> links of page,
// without duplicates and in document order.
func ExtractLinks(page []byte, base *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(u).String()
		if !seen[resolved] {
			seen[resolved] = true
			links = append(links, resolved)
		}
	})
	return links
}

// sameSite reports whether two URLs share a host or a registrable domain,
// so news.sina.com.cn and finance.sina.com.cn belong to one site.
func sameSite(a, b *url.URL) bool {
	if a.Hostname() == b.Hostname() {
		return true
	}
	da := htmlutil.Domain(a.String())
	return da != "" && da == htmlutil.Domain(b.String())
}

func skipURL(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return true
	}
	path := strings.ToLower(u.Path)
	for _, ext := range []string{".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".pdf", ".zip", ".rar", ".xml", ".json", ".woff", ".woff2", ".ttf", ".mp4", ".mp3", ".flv", ".webp", ".avif", ".exe", ".apk"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}

// LoadSites reads one site per line. Blank lines and lines starting with
// '#' are skipped, and sites without a scheme get https://.
func LoadSites(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var sites []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		site := strings.TrimSpace(scanner.Text())
		if site == "" || strings.HasPrefix(site, "#") {
			continue
		}
		if !strings.HasPrefix(site, "http://") && !strings.HasPrefix(site, "https://") {
			site = "https://" + site
		}
		sites = append(sites, site)
	}
	return sites, scanner.Err()
}
