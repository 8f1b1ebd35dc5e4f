package tokens

import (
	"strings"
	"unicode"
)

// Band caps applied before the bands are merged.
const (
	entityCap     = 20
	phraseCap     = 30
	nounCap       = 40
	descriptorCap = 20
)

// Extractor returns at most limit important terms of text, most important first.
type Extractor interface {
	Extract(text string, limit int) []string
}

// TaggedToken is a word with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// Tagger finds the named entities and part-of-speech tags of a text.
type Tagger interface {
	Tag(text string) (entities []string, tokens []TaggedToken, err error)
}

// Cascade is the default Extractor.
type Cascade struct {
	tagger   Tagger
	stoplist map[string]struct{}
}

// Option configures a Cascade.
type Option func(*Cascade)

// WithTagger replaces the part-of-speech tagger.
func WithTagger(t Tagger) Option {
	return func(c *Cascade) {
		if t != nil {
			c.tagger = t
		}
	}
}

// WithStoplist replaces DefaultStoplist.
func WithStoplist(words []string) Option {
	return func(c *Cascade) {
		lower := make([]string, 0, len(words))
		for _, w := range words {
			lower = append(lower, strings.ToLower(strings.TrimSpace(w)))
		}
		c.stoplist = toSet(lower)
	}
}

// NewCascade creates a Cascade backed by the prose tagger.
func NewCascade(opts ...Option) *Cascade {
	c := &Cascade{
		tagger:   NewProseTagger(),
		stoplist: toSet(DefaultStoplist),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract implements Extractor. A tagger error degrades to plain word
// tokens filtered the same way as nouns.
func (c *Cascade) Extract(text string, limit int) []string {
	if limit <= 0 || strings.TrimSpace(text) == "" {
		return []string{}
	}

	entities, tagged, err := c.tagger.Tag(text)
	if err != nil {
		return merge(limit, capped(c.plainWords(text), nounCap))
	}

	return merge(limit,
		capped(c.entities(entities), entityCap),
		capped(c.nounPhrases(tagged), phraseCap),
		capped(unique(c.words(tagged, isNoun, 2)), nounCap),
		capped(unique(c.words(tagged, isDescriptor, 3)), descriptorCap),
	)
}

func (c *Cascade) entities(entities []string) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		e = strings.TrimSpace(e)
		if len([]rune(e)) <= 2 || strings.IndexFunc(e, unicode.IsDigit) >= 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

// nounPhrases returns runs of adjectives and nouns that end in a noun and
// span at least two words.
func (c *Cascade) nounPhrases(tagged []TaggedToken) []string {
	var (
		out []string
		run []TaggedToken
	)
	flush := func() {
		for len(run) > 0 && !isNoun(run[len(run)-1].Tag) {
			run = run[:len(run)-1]
		}
		if len(run) >= 2 {
			words := make([]string, 0, len(run))
			junk := false
			for _, t := range run {
				if c.stopped(t) {
					junk = true
					break
				}
				words = append(words, strings.ToLower(t.Text))
			}
			phrase := strings.Join(words, " ")
			if !junk && len(phrase) > 3 {
				out = append(out, phrase)
			}
		}
		run = run[:0]
	}

	for _, t := range tagged {
		if isNoun(t.Tag) || isAdjective(t.Tag) {
			run = append(run, t)
			continue
		}
		flush()
	}
	flush()
	return out
}

// words returns the lemmas of tokens accepted by keep that are longer than
// minLen and neither stopwords nor stoplisted.
func (c *Cascade) words(tagged []TaggedToken, keep func(tag string) bool, minLen int) []string {
	out := make([]string, 0, len(tagged))
	for _, t := range tagged {
		if !keep(t.Tag) || !isWord(t.Text) {
			continue
		}
		lower := strings.ToLower(t.Text)
		if len([]rune(lower)) <= minLen {
			continue
		}
		if _, ok := englishStopwords[lower]; ok {
			continue
		}
		if c.stopped(t) {
			continue
		}
		out = append(out, lemma(t))
	}
	return out
}

func (c *Cascade) plainWords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-'
	})
	tagged := make([]TaggedToken, 0, len(fields))
	for _, f := range fields {
		tagged = append(tagged, TaggedToken{Text: f, Tag: "NN"})
	}
	return unique(c.words(tagged, isNoun, 2))
}

// stopped reports whether the token or its lemma is on the stoplist.
func (c *Cascade) stopped(t TaggedToken) bool {
	if _, ok := c.stoplist[strings.ToLower(t.Text)]; ok {
		return true
	}
	_, ok := c.stoplist[lemma(t)]
	return ok
}

// lemma is a light lemmatizer: plural nouns are singularized, everything is
// lower-cased.
func lemma(t TaggedToken) string {
	w := strings.ToLower(t.Text)
	if t.Tag != "NNS" && t.Tag != "NNPS" {
		return w
	}
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return strings.TrimSuffix(w, "ies") + "y"
	case strings.HasSuffix(w, "sses"):
		return strings.TrimSuffix(w, "es")
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return strings.TrimSuffix(w, "s")
	}
	return w
}

func isNoun(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}

func isAdjective(tag string) bool {
	return strings.HasPrefix(tag, "JJ")
}

func isDescriptor(tag string) bool {
	return isAdjective(tag) || strings.HasPrefix(tag, "VB")
}

// isWord reports whether s contains at least one letter.
func isWord(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func capped(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}

// merge concatenates bands, drops case-insensitive duplicates and tokens of
// two characters or fewer, and truncates to limit.
func merge(limit int, bands ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, limit)
	for _, band := range bands {
		for _, tok := range band {
			tok = strings.TrimSpace(tok)
			norm := strings.ToLower(tok)
			if len([]rune(norm)) <= 2 {
				continue
			}
			if _, ok := seen[norm]; ok {
				continue
			}
			seen[norm] = struct{}{}
			out = append(out, tok)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
