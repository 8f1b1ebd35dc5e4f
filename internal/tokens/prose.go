package tokens

import (
	"fmt"

	"github.com/jdkato/prose/v2"
)

// maxTaggedRunes bounds the text handed to the tagger. Page text past this
// point rarely changes the outcome and tagging time grows with length.
const maxTaggedRunes = 20000

// ProseTagger tags English text with the prose averaged-perceptron tagger and
// its named-entity model.
type ProseTagger struct{}

// NewProseTagger returns a ProseTagger.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag implements Tagger.
func (ProseTagger) Tag(text string) ([]string, []TaggedToken, error) {
	if r := []rune(text); len(r) > maxTaggedRunes {
		text = string(r[:maxTaggedRunes])
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to tag text: %w", err)
	}

	ents := doc.Entities()
	entities := make([]string, 0, len(ents))
	for _, e := range ents {
		entities = append(entities, e.Text)
	}

	toks := doc.Tokens()
	tagged := make([]TaggedToken, 0, len(toks))
	for _, t := range toks {
		tagged = append(tagged, TaggedToken{Text: t.Text, Tag: t.Tag})
	}
	return entities, tagged, nil
}
