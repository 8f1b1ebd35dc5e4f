package extract

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// boilerplateSelector matches elements that never hold main content.
const boilerplateSelector = "script, style, nav, footer, header, noscript, template, iframe"

// landmarks are probed in order for the main content of a page.
var landmarks = []string{
	"main",
	`[role="main"]`,
	"article",
	".content",
	".main-content",
	"#content",
}

// commentIndicators mark an embedded comment system in the raw HTML.
var commentIndicators = []string{
	"comment", "reply", "discuss", "disqus", "livefyre",
	"facebook comment", "commento", "utterances",
}

// mainText returns the raw main text of doc. Boilerplate elements are removed
// from doc in the process.
func mainText(doc *goquery.Document, raw, pageURL string) string {
	doc.Find(boilerplateSelector).Remove()

	for _, sel := range landmarks {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := collapse(nodeText(node)); len([]rune(text)) > MinContentLength {
			return text
		}
	}

	if text := readabilityText(raw, pageURL); len([]rune(text)) > MinContentLength {
		return text
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return collapse(nodeText(doc.Selection))
	}
	return collapse(nodeText(body))
}

// readabilityText returns the article text readability finds in raw, or "".
func readabilityText(raw, pageURL string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		u = nil
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(raw), u)
	if err != nil {
		return ""
	}
	return collapse(article.TextContent)
}

// nodeText concatenates the text nodes under sel, separated by spaces so that
// adjacent block elements do not run together.
func nodeText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

// CleanText normalizes s to NFKC, replaces every character other than letters,
// digits, whitespace and - . , ! ? with a space, and collapses whitespace.
func CleanText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r):
			return r
		case r == '-', r == '.', r == ',', r == '!', r == '?':
			return r
		}
		return ' '
	}, s)
	return collapse(s)
}

// collapse trims s and replaces whitespace runs with a single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HasComments reports whether raw HTML mentions a comment system.
func HasComments(raw string) bool {
	lower := strings.ToLower(raw)
	for _, indicator := range commentIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
