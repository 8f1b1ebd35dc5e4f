// Package classify asks a language model for the semantic classification of a
// domain and parses its answer.
//
// The prompt carries the page title, URL, content tokens, metadata digest and
// comment signal, followed by the JSON schema the answer must follow. Model
// answers are often wrapped in prose, so Parse tries the whole answer, then the
// first balanced {...} block, then everything from the first '{' to the last
// '}'. An answer that yields no usable object is an ErrClassification; no
// default classification is ever made up.
package classify
