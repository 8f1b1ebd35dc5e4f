package tokens

// DefaultStoplist holds site scaffolding and marketing filler that says
// nothing about what a site is for.
var DefaultStoplist = []string{
	"account", "login", "signup", "subscribe", "sign", "register", "create", "click",
	"platform", "solution", "experience", "support", "discount", "offers", "order",
	"shop", "app", "center", "categories", "policy", "privacy", "help", "b2b", "search",
	"value", "promotion", "delivery", "products", "production", "contact", "username",
	"password", "terms", "conditions", "newsletter", "settings", "mobile", "website",
	"visit", "start", "email",
}

// englishStopwords are function words never worth keeping as a token.
var englishStopwords = toSet([]string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can", "could", "did", "do", "does",
	"doing", "done", "down", "during", "each", "either", "else", "even", "ever",
	"every", "few", "for", "from", "further", "get", "got", "had", "has", "have",
	"having", "he", "her", "here", "hers", "herself", "him", "himself", "his",
	"how", "however", "i", "if", "in", "into", "is", "it", "its", "itself",
	"just", "least", "less", "made", "make", "many", "may", "me", "might", "more",
	"most", "much", "must", "my", "myself", "neither", "never", "no", "nor", "not",
	"now", "of", "off", "often", "on", "once", "one", "only", "or", "other",
	"others", "otherwise", "our", "ours", "ourselves", "out", "over", "own",
	"per", "perhaps", "please", "quite", "rather", "really", "same", "say",
	"see", "seem", "seemed", "seems", "several", "she", "should", "show", "since",
	"so", "some", "something", "still", "such", "take", "than", "that", "the",
	"their", "theirs", "them", "themselves", "then", "there", "these", "they",
	"thing", "things", "this", "those", "though", "through", "thus", "to", "too",
	"under", "until", "up", "upon", "us", "use", "used", "using", "very", "via",
	"was", "way", "we", "well", "were", "what", "whatever", "when", "where",
	"whether", "which", "while", "who", "whoever", "whole", "whom", "whose",
	"why", "will", "with", "within", "without", "would", "yet", "you", "your",
	"yours", "yourself", "yourselves",
})

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
