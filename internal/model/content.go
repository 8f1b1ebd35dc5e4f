package model

// ExtractedContent is the normalized result of loading one page.
// It is transient: the classifier consumes it and it is never stored directly.
type ExtractedContent struct {
	// Title is the document title as reported by the browser.
	Title string `json:"title"`

	// URL is the final URL after redirects.
	URL string `json:"url"`

	// CleanedText is the selected main text after whitespace collapsing and
	// character filtering.
	CleanedText string `json:"cleaned_text"`

	// Tokens is the ordered, de-duplicated, capped list of important terms.
	Tokens []string `json:"content_tokens"`

	// MetadataDigest is a compact "key: value; ..." rendering of the page's
	// descriptive meta tags.
	MetadataDigest string `json:"metadata_digest"`

	// Language is the declared or detected ISO 639-1 language code, if any.
	Language string `json:"language,omitempty"`

	// HasComments is a coarse signal that the page embeds a comment system.
	HasComments bool `json:"has_comments"`
}
