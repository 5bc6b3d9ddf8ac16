// Package htmlutil extracts plain Chinese text from crawled HTML pages.
package htmlutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"

	"github.com/happyhackingspace/segtag/internal/textutil"
)

// LoadHTML parses an HTML page into a goquery Document. The page is decoded
// to UTF-8 using contentType, a <meta> charset declaration or a byte order
// mark, in that order.
func LoadHTML(r io.Reader, contentType string) (*goquery.Document, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return goquery.NewDocumentFromReader(utf8Reader)
}

// LoadHTMLString parses an HTML string into a goquery Document.
func LoadHTMLString(htmlStr string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
}

// Page is the text content of one HTML page.
type Page struct {
	URL      string   `json:"url"`
	Domain   string   `json:"domain,omitempty"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
	Content  []string `json:"content"`
}

var (
	titleSepRe   = regexp.MustCompile(`\s*(?:[_|｜]|\s-\s|－|—)\s*`)
	keywordSepRe = regexp.MustCompile(`[\s,;|，；、]+`)
)

// Extract returns the title, meta keywords and text blocks of doc. Blocks
// with fewer than minChinese Chinese characters are dropped.
func Extract(doc *goquery.Document, minChinese int) Page {
	var p Page
	p.Title = ShortTitle(doc.Find("title").First().Text())

	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(name, "keywords") {
			return true
		}
		content, _ := s.Attr("content")
		for _, kw := range keywordSepRe.Split(content, -1) {
			if kw != "" {
				p.Keywords = append(p.Keywords, kw)
			}
		}
		return false
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	for _, block := range TextBlocks(root) {
		if countChinese(block) >= minChinese {
			p.Content = append(p.Content, block)
		}
	}
	return p
}

// ShortTitle strips site names appended to a page title, such as
// "标题_新闻频道" or "标题 - 某某网".
func ShortTitle(title string) string {
	title = textutil.Sentence(title)
	for _, part := range titleSepRe.Split(title, -1) {
		if part = strings.TrimSpace(part); part != "" {
			return part
		}
	}
	return ""
}

func countChinese(s string) int {
	n := 0
	for _, r := range s {
		if textutil.CharClass(r) == textutil.ClassChinese {
			n++
		}
	}
	return n
}

// Domain returns the registrable domain of rawURL, e.g. "news.sina.com.cn"
// gives "sina.com.cn". It returns "" when no domain can be derived.
func Domain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// Doc is one page of a crawl dump.
type Doc struct {
	URL  string
	HTML []byte
}

const docURLTag = "<docurl>"

// ReadDocs splits a crawl dump into pages and calls fn for each of them.
// Pages are introduced by a "<docurl>URL</docurl>" line; content before the
// first marker forms a page with an empty URL.
func ReadDocs(r io.Reader, fn func(Doc) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var cur Doc
	var buf bytes.Buffer
	started := false
	flush := func() error {
		if !started && len(bytes.TrimSpace(buf.Bytes())) == 0 {
			return nil
		}
		cur.HTML = append([]byte(nil), buf.Bytes()...)
		buf.Reset()
		return fn(cur)
	}
	for scanner.Scan() {
		line := scanner.Bytes()
		if bytes.HasPrefix(line, []byte(docURLTag)) {
			if err := flush(); err != nil {
				return err
			}
			started = true
			rest := string(line[len(docURLTag):])
			if i := strings.IndexByte(rest, '<'); i >= 0 {
				rest = rest[:i]
			}
			cur = Doc{URL: strings.TrimSpace(rest)}
			continue
		}
		buf.Write(bytes.TrimSpace(line))
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}

// WriteDoc appends doc to a crawl dump in the form ReadDocs reads.
func WriteDoc(w io.Writer, doc Doc) error {
	if _, err := fmt.Fprintf(w, "%s%s</docurl>\n", docURLTag, doc.URL); err != nil {
		return err
	}
	if _, err := w.Write(doc.HTML); err != nil {
		return err
	}
	if len(doc.HTML) > 0 && doc.HTML[len(doc.HTML)-1] != '\n' {
		_, err := w.Write([]byte{'\n'})
		return err
	}
	return nil
}
