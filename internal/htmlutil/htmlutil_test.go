package htmlutil

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

const testHTML = `
<html><head>
<title>北京迎来降雪_新闻频道_某某网</title>
<meta name="keywords" content="北京,降雪；天气">
<style>p { color: red }</style>
<script>var x = "不要";</script>
</head><body>
<div class="nav"><a href="/">首页</a> | <a href="/news">新闻</a></div>
<p>今天北京迎来  今冬
第一场降雪。</p>
<p>气象部门提醒市民注意出行安全<br>道路<b>结冰</b>严重。</p>
<form><input value="搜索"><button>搜索一下</button></form>
<p>Copyright 2024</p>
</body></html>
`

func TestTextBlocks(t *testing.T) {
	doc, err := LoadHTMLString(testHTML)
	if err != nil {
		t.Fatal(err)
	}
	got := TextBlocks(doc.Find("body"))
	want := []string{
		"首页 | 新闻",
		"今天北京迎来 今冬 第一场降雪。",
		"气象部门提醒市民注意出行安全",
		"道路结冰严重。",
		"Copyright 2024",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TextBlocks = %q, want %q", got, want)
	}
}

func TestExtract(t *testing.T) {
	doc, err := LoadHTMLString(testHTML)
	if err != nil {
		t.Fatal(err)
	}
	p := Extract(doc, 5)
	if p.Title != "北京迎来降雪" {
		t.Errorf("Title = %q, want 北京迎来降雪", p.Title)
	}
	if want := []string{"北京", "降雪", "天气"}; !reflect.DeepEqual(p.Keywords, want) {
		t.Errorf("Keywords = %q, want %q", p.Keywords, want)
	}
	want := []string{
		"今天北京迎来 今冬 第一场降雪。",
		"气象部门提醒市民注意出行安全",
		"道路结冰严重。",
	}
	if !reflect.DeepEqual(p.Content, want) {
		t.Errorf("Content = %q, want %q", p.Content, want)
	}
}

func TestShortTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"标题_频道", "标题"},
		{"标题 - 某某网", "标题"},
		{"标题|站点", "标题"},
		{"  标题  ", "标题"},
		{"a-b", "a-b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortTitle(tt.input); got != tt.want {
			t.Errorf("ShortTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoadHTMLCharset(t *testing.T) {
	page := `<html><head><meta charset="gbk"></head><body><p>中文网页</p></body></html>`
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(page)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := LoadHTML(strings.NewReader(encoded), "")
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Find("p").Text(); got != "中文网页" {
		t.Errorf("text = %q, want 中文网页", got)
	}

	doc, err = LoadHTML(strings.NewReader(encoded), "text/html; charset=gbk")
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Find("p").Text(); got != "中文网页" {
		t.Errorf("text with header = %q, want 中文网页", got)
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://news.sina.com.cn/c/2024.shtml", "sina.com.cn"},
		{"https://foo.example.co.uk/path", "example.co.uk"},
		{"www.people.com.cn", "people.com.cn"},
		{"http://localhost:8080/path", "localhost"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Domain(tt.url); got != tt.want {
			t.Errorf("Domain(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestReadDocs(t *testing.T) {
	dump := "<docurl>http://a.com/1</docurl>\n<html>一</html>\n<docurl>http://b.com/2</docurl>\n  <p>二</p>  \n"
	var docs []Doc
	err := ReadDocs(strings.NewReader(dump), func(d Doc) error {
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if docs[0].URL != "http://a.com/1" || string(docs[0].HTML) != "<html>一</html>\n" {
		t.Errorf("doc 0 = %q %q", docs[0].URL, docs[0].HTML)
	}
	if docs[1].URL != "http://b.com/2" || string(docs[1].HTML) != "<p>二</p>\n" {
		t.Errorf("doc 1 = %q %q", docs[1].URL, docs[1].HTML)
	}
}

func TestReadDocsPlainPage(t *testing.T) {
	var docs []Doc
	_ = ReadDocs(bytes.NewReader([]byte("<p>只有一页</p>\n")), func(d Doc) error {
		docs = append(docs, d)
		return nil
	})
	if len(docs) != 1 || docs[0].URL != "" {
		t.Errorf("docs = %+v, want one page without URL", docs)
	}

	stop := errors.New("stop")
	err := ReadDocs(strings.NewReader("<docurl>x</docurl>\na\n<docurl>y</docurl>\nb\n"), func(Doc) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want callback error", err)
	}
}

func TestWriteDoc(t *testing.T) {
	var buf bytes.Buffer
	for _, d := range []Doc{
		{URL: "http://a.com/1", HTML: []byte("<p>一</p>")},
		{URL: "http://a.com/2", HTML: []byte("<p>二</p>\n")},
	} {
		if err := WriteDoc(&buf, d); err != nil {
			t.Fatal(err)
		}
	}
	var docs []Doc
	if err := ReadDocs(&buf, func(d Doc) error {
		docs = append(docs, d)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[1].URL != "http://a.com/2" || string(docs[0].HTML) != "<p>一</p>\n" {
		t.Errorf("docs = %+v", docs)
	}
}
