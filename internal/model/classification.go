package model

import (
	"errors"
	"math"
	"strings"
)

// ErrMissingContentType is returned by Classification.Validate when the
// classifier response did not label the content type.
var ErrMissingContentType = errors.New("classification has no content type")

// Allowed values for the enumerated classification fields. They are rendered
// into the classification prompt; values outside these sets are stored as the
// classifier returned them (lower-cased).
var (
	ContentTypes = []string{
		"blog", "forum", "docs", "ecommerce", "news", "portfolio", "corporate",
		"personal", "marketplace", "landing", "other",
	}
	CommunicationGoals = []string{
		"sell", "teach", "inform", "share", "entertain", "rant", "advertise",
	}
	AuthorTypes = []string{
		"individual", "company", "organization", "government", "unknown",
	}
	AudienceTypes = []string{
		"general", "beginner", "expert", "professional", "consumer", "developer",
	}
	Tones = []string{
		"neutral", "positive", "negative", "humorous", "serious", "promotional", "critical",
	}
	Formalities = []string{
		"formal", "semi-formal", "informal",
	}
	Vibes = []string{
		"professional", "casual", "academic", "commercial", "personal", "technical", "creative",
	}
	SiteTypes = []string{
		"single-page", "multi-page", "web-app", "directory", "parked", "under-construction",
	}
)

// Classification is the structured semantic labeling of a domain.
// JSON keys match the schema the classifier is asked to produce.
type Classification struct {
	ContentType       string   `json:"semantic_content_type_text"`
	PrimaryTopic      string   `json:"semantic_primary_topic_text"`
	Keywords          []string `json:"semantic_keywords_text_array"`
	Language          string   `json:"semantic_language_primary_text"`
	CommunicationGoal string   `json:"semantic_communication_goal_text"`
	AuthorType        string   `json:"semantic_author_type_text"`
	AudienceType      string   `json:"semantic_audience_type_text"`
	Tone              string   `json:"semantic_tone_text"`
	Formality         string   `json:"semantic_formality_text"`
	Vibe              string   `json:"semantic_vibe_text"`
	SiteType          string   `json:"semantic_site_type_text"`

	IsCommercial        bool `json:"semantic_is_commercial_bool"`
	IsSpammy            bool `json:"semantic_is_spammy_bool"`
	IsPoliticallyLoaded bool `json:"semantic_is_politically_loaded_bool"`

	// QualityScore is requested in [0.0, 1.0]; Normalize clamps it.
	QualityScore float64 `json:"semantic_quality_score_float"`

	Summary string `json:"natural_language_summary_text"`

	// PriorKnowledge is what the model already knew about the domain, if anything.
	PriorKnowledge string `json:"semantic_prior_knowledge_text,omitempty"`
}

// Normalize canonicalizes categorical values and clamps the quality score.
// It returns true when the quality score had to be clamped.
func (c *Classification) Normalize() bool {
	for _, field := range []*string{
		&c.ContentType, &c.PrimaryTopic, &c.Language, &c.CommunicationGoal,
		&c.AuthorType, &c.AudienceType, &c.Tone, &c.Formality, &c.Vibe, &c.SiteType,
	} {
		*field = strings.ToLower(strings.TrimSpace(*field))
	}

	c.Summary = strings.TrimSpace(c.Summary)
	c.PriorKnowledge = strings.TrimSpace(c.PriorKnowledge)
	c.Keywords = uniqueKeywords(c.Keywords)

	clamped := math.Max(0, math.Min(1, c.QualityScore))
	if math.IsNaN(c.QualityScore) {
		clamped = 0
	}
	changed := clamped != c.QualityScore
	c.QualityScore = clamped
	return changed
}

// Validate reports whether the classification carries the minimum labels
// needed to be stored.
func (c *Classification) Validate() error {
	if strings.TrimSpace(c.ContentType) == "" {
		return ErrMissingContentType
	}
	return nil
}

// uniqueKeywords trims keywords and drops empty and case-insensitive duplicates.
func uniqueKeywords(keywords []string) []string {
	if len(keywords) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		norm := strings.ToLower(k)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, k)
	}
	return out
}
