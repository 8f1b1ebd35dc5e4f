package extract

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// detectSampleRunes bounds the text handed to the language detector.
const detectSampleRunes = 1000

// LanguageDetector guesses the ISO 639-1 code of a text. It returns "" when
// unsure.
type LanguageDetector interface {
	Detect(text string) string
}

// detectableLanguages keeps the lingua models loaded into memory small.
var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Polish,
	lingua.Swedish,
	lingua.Russian,
	lingua.Japanese,
	lingua.Chinese,
}

// LinguaDetector detects languages with lingua-go. The underlying detector is
// built on first use.
type LinguaDetector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

// NewLinguaDetector returns a LinguaDetector for the common web languages.
func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{}
}

// Detect implements LanguageDetector.
func (d *LinguaDetector) Detect(text string) string {
	if r := []rune(text); len(r) > detectSampleRunes {
		text = string(r[:detectSampleRunes])
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			WithMinimumRelativeDistance(0.1).
			Build()
	})

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
