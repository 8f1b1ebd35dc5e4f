package classify

import (
	"fmt"
	"strings"

	"github.com/nao1215/domainscan/internal/model"
)

// Content budgets of the prompt, in characters.
const (
	maxContentChars = 2000
	maxAboutChars   = 1000
)

// SystemPrompt frames every classification call.
const SystemPrompt = "You are an expert web content analyst. Return only valid JSON as requested."

// Input is the content of one domain handed to the classifier.
type Input struct {
	Domain         string
	Title          string
	URL            string
	Tokens         []string
	AboutTokens    []string
	MetadataDigest string
	Language       string
	HasComments    bool
}

// NewInput builds an Input from the selected primary content and the optional
// supplementary about-page content.
func NewInput(domain string, primary, about *model.ExtractedContent) Input {
	in := Input{Domain: model.NormalizeDomain(domain)}
	if primary != nil {
		in.Title = primary.Title
		in.URL = primary.URL
		in.Tokens = primary.Tokens
		in.MetadataDigest = primary.MetadataDigest
		in.Language = primary.Language
		in.HasComments = primary.HasComments
	}
	if about != nil {
		in.AboutTokens = about.Tokens
		in.HasComments = in.HasComments || about.HasComments
		if in.MetadataDigest == "" {
			in.MetadataDigest = about.MetadataDigest
		}
	}
	return in
}

// BuildPrompt renders the user prompt for in.
func BuildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("Analyze this website content and provide semantic classification in valid JSON format.\n\n")
	b.WriteString("WEBSITE DATA:\n")
	fmt.Fprintf(&b, "Domain: %s\n", in.Domain)
	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	fmt.Fprintf(&b, "URL: %s\n", in.URL)
	fmt.Fprintf(&b, "Content: %s\n", truncate(strings.Join(in.Tokens, " "), maxContentChars))
	if len(in.AboutTokens) > 0 {
		fmt.Fprintf(&b, "About Page Content: %s\n", truncate(strings.Join(in.AboutTokens, " "), maxAboutChars))
	}
	if in.MetadataDigest != "" {
		fmt.Fprintf(&b, "Metadata: %s\n", in.MetadataDigest)
	}
	if in.Language != "" {
		fmt.Fprintf(&b, "Declared Language: %s\n", in.Language)
	}
	fmt.Fprintf(&b, "Has Comments: %t\n\n", in.HasComments)

	if len(in.Tokens) > 0 && len(in.AboutTokens) > 0 {
		b.WriteString("The homepage content is authoritative. Use the about page content only to fill in " +
			"details the homepage does not cover, and prefer the homepage where they disagree.\n\n")
	}

	b.WriteString("Please analyze this content and return a JSON object with the following fields:\n\n")
	b.WriteString(schema())
	b.WriteString("\n")
	b.WriteString(`Rules:
- Be accurate and specific
- Use the exact field names provided
- Return only valid JSON
- Quality score: 0.8+ for high quality, 0.5-0.8 for decent, below 0.5 for poor
- Consider the URL structure and domain name in your analysis
- If you already know this domain, summarize what you know in semantic_prior_knowledge_text, otherwise leave it empty
- For the summary, synthesize all the information into a natural language description that explains the website comprehensively`)
	return b.String()
}

// schema renders the JSON object the model is asked to return.
func schema() string {
	enum := func(values []string) string { return strings.Join(values, "|") }
	fields := [][2]string{
		{"semantic_content_type_text", quote(enum(model.ContentTypes))},
		{"semantic_primary_topic_text", quote("main topic in 1-2 words (e.g., 'technology', 'art', 'fitness')")},
		{"semantic_keywords_text_array", `["5-10 most relevant keywords/phrases"]`},
		{"semantic_language_primary_text", quote("language code (e.g., 'en', 'es', 'fr')")},
		{"semantic_communication_goal_text", quote(enum(model.CommunicationGoals))},
		{"semantic_author_type_text", quote(enum(model.AuthorTypes))},
		{"semantic_audience_type_text", quote(enum(model.AudienceTypes))},
		{"semantic_tone_text", quote(enum(model.Tones))},
		{"semantic_formality_text", quote(enum(model.Formalities))},
		{"semantic_vibe_text", quote(enum(model.Vibes))},
		{"semantic_site_type_text", quote(enum(model.SiteTypes))},
		{"semantic_is_commercial_bool", "true/false"},
		{"semantic_is_spammy_bool", "true/false"},
		{"semantic_is_politically_loaded_bool", "true/false"},
		{"semantic_quality_score_float", "0.0-1.0"},
		{"natural_language_summary_text", quote("A comprehensive 200-500 word summary explaining what this " +
			"website is about, its purpose, target audience, and key features.")},
		{"semantic_prior_knowledge_text", quote("what you already know about this domain, or empty")},
	}

	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range fields {
		fmt.Fprintf(&b, "  %q: %s", f[0], f[1])
		if i < len(fields)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

func quote(s string) string {
	return `"` + s + `"`
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
