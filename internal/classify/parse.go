package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/domainscan/internal/model"
)

// legacyVibeKey is accepted in place of semantic_vibe_text.
const legacyVibeKey = "semantic_content_vibe_text"

// Parse turns a model answer into a normalized classification.
//
// It tries, in order, the whole answer, the first balanced {...} block that
// decodes, and the span from the first '{' to the last '}'. The decoded
// object must name a content type.
func Parse(text string) (*model.Classification, error) {
	text = strings.TrimSpace(text)

	candidates := []string{text}
	if block, ok := firstBalancedObject(text); ok {
		candidates = append(candidates, block)
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	var lastErr error
	for _, c := range candidates {
		cls, err := decode(c)
		if err == nil {
			return cls, nil
		}
		lastErr = err
		if errors.Is(err, model.ErrMissingContentType) {
			// A well-formed object without a content type is final.
			break
		}
	}
	if lastErr == nil || !strings.Contains(text, "{") {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrClassification)
	}
	return nil, fmt.Errorf("%w: %w", ErrClassification, lastErr)
}

// decode unmarshals one candidate object.
func decode(s string) (*model.Classification, error) {
	var cls model.Classification
	if err := json.Unmarshal([]byte(s), &cls); err != nil {
		return nil, err
	}

	if cls.Vibe == "" {
		var legacy map[string]json.RawMessage
		if err := json.Unmarshal([]byte(s), &legacy); err == nil {
			if raw, ok := legacy[legacyVibeKey]; ok {
				_ = json.Unmarshal(raw, &cls.Vibe)
			}
		}
	}

	cls.Normalize()
	if err := cls.Validate(); err != nil {
		return nil, err
	}
	return &cls, nil
}

// firstBalancedObject returns the first substring of s that starts with '{'
// and ends at its matching '}', skipping braces inside JSON strings. When a
// balanced block does not decode as an object the search resumes after its
// opening brace.
func firstBalancedObject(s string) (string, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end, ok := matchBrace(s, start); ok {
			block := s[start : end+1]
			if json.Valid([]byte(block)) {
				return block, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the '}' closing the '{' at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
