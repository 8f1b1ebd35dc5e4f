// Package extract turns a loaded page into normalized content for
// classification.
//
// Main text is taken from the first content landmark (main, article and
// friends) that carries enough text, then from a readability pass, then from
// the whole body. The text is NFKC-normalized and reduced to letters, digits,
// whitespace and basic punctuation before the important tokens are picked.
// Descriptive meta tags are compressed into a short digest and the page
// language is read from the document or detected from the text.
package extract
