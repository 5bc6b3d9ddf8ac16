package htmlutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/happyhackingspace/segtag/internal/textutil"
)

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Iframe: true,
	atom.Head: true, atom.Template: true, atom.Svg: true, atom.Select: true,
	atom.Button: true, atom.Form: true,
}

// blocks end the current run of text.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true,
	atom.Ol: true, atom.Tr: true, atom.Td: true, atom.Th: true, atom.Table: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true,
	atom.H6: true, atom.Section: true, atom.Article: true, atom.Header: true,
	atom.Footer: true, atom.Nav: true, atom.Aside: true, atom.Blockquote: true,
	atom.Pre: true, atom.Dd: true, atom.Dt: true, atom.Hr: true,
}

// TextBlocks returns the visible text under root, one string per block
// element, in document order. Whitespace inside a block is collapsed.
func TextBlocks(root *goquery.Selection) []string {
	var out []string
	var buf []string

	flush := func() {
		text := textutil.Sentence(strings.Join(buf, ""))
		buf = buf[:0]
		if text != "" {
			out = append(out, text)
		}
	}

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf = append(buf, n.Data)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if skipped[n.DataAtom] {
				return
			}
		}

		block := n.Type == html.ElementNode && blocks[n.DataAtom]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
		if block {
			flush()
		}
	}

	for _, n := range root.Nodes {
		visit(n)
	}
	flush()
	return out
}
