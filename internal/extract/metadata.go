package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// digestKeys are the meta tags rendered into the digest, in order.
var digestKeys = []string{
	"description",
	"keywords",
	"author",
	"og:title",
	"og:description",
	"og:site_name",
	"og:type",
}

// metaTags returns the content of every named meta tag in doc, keyed by the
// lower-cased name or property. The first occurrence of a key wins.
func metaTags(doc *goquery.Document) map[string]string {
	tags := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("name")
		if !ok || key == "" {
			key, ok = s.Attr("property")
		}
		if !ok || key == "" {
			key, ok = s.Attr("http-equiv")
		}
		if !ok {
			return
		}
		key = strings.ToLower(strings.TrimSpace(key))
		content := collapse(s.AttrOr("content", ""))
		if key == "" || content == "" {
			return
		}
		if _, exists := tags[key]; !exists {
			tags[key] = content
		}
	})
	return tags
}

// metadataDigest renders the descriptive meta tags of doc and its declared
// language as "key: value; ..." limited to budget words.
func metadataDigest(doc *goquery.Document, lang string, budget int) string {
	tags := metaTags(doc)

	type entry struct{ key, value string }
	entries := make([]entry, 0, len(digestKeys)+1)
	for _, key := range digestKeys {
		if v := tags[key]; v != "" {
			entries = append(entries, entry{key, v})
		}
	}
	if lang != "" {
		entries = append(entries, entry{"lang", lang})
	}

	parts := make([]string, 0, len(entries))
	remaining := budget
	for _, e := range entries {
		if remaining <= 0 {
			break
		}
		words := strings.Fields(e.value)
		if len(words) > remaining {
			words = words[:remaining]
		}
		remaining -= len(words)
		parts = append(parts, e.key+": "+strings.Join(words, " "))
	}
	return strings.Join(parts, "; ")
}

// declaredLanguage returns the primary ISO 639-1 subtag declared by the
// document, from the html lang attribute or a content-language meta tag.
func declaredLanguage(doc *goquery.Document) string {
	lang := doc.Find("html").First().AttrOr("lang", "")
	if strings.TrimSpace(lang) == "" {
		lang = metaTags(doc)["content-language"]
	}
	return primarySubtag(lang)
}

// primarySubtag reduces a language tag such as "en-US" or "pt_BR, en" to "en"
// or "pt".
func primarySubtag(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, ",;"); i >= 0 {
		tag = tag[:i]
	}
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ToLower(strings.TrimSpace(tag))
	if len(tag) < 2 || len(tag) > 3 {
		return ""
	}
	return tag
}
