// Package tokens picks the terms of a text that best describe it.
//
// A Cascade runs a Tagger over the text and merges four bands of candidates in
// priority order: named entities, multi-word noun phrases, nouns and finally
// adjectives and verbs. Each band is capped before merging; the merged list is
// de-duplicated case-insensitively and truncated to the requested maximum.
// Site boilerplate such as "login" or "newsletter" is dropped through a
// stoplist.
package tokens
