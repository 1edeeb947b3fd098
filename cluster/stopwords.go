package cluster

// englishStopwords is the general stopword list applied during
// vectorization. Domain-specific stopwords (app-review boilerplate) are
// layered on top via VectorizerConfig.Stopwords.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "aren't", "as", "at", "be", "because", "been",
	"before", "being", "below", "between", "both", "but", "by", "can",
	"cannot", "could", "couldn't", "did", "didn't", "do", "does",
	"doesn't", "doing", "don't", "down", "during", "each", "few", "for",
	"from", "further", "had", "hadn't", "has", "hasn't", "have",
	"haven't", "having", "he", "her", "here", "hers", "herself", "him",
	"himself", "his", "how", "i", "if", "in", "into", "is", "isn't", "it",
	"its", "itself", "just", "me", "more", "most", "my", "myself", "no",
	"nor", "not", "now", "of", "off", "on", "once", "only", "or",
	"other", "our", "ours", "ourselves", "out", "over", "own", "same",
	"she", "should", "shouldn't", "so", "some", "such", "than", "that",
	"the", "their", "theirs", "them", "themselves", "then", "there",
	"these", "they", "this", "those", "through", "to", "too", "under",
	"until", "up", "very", "was", "wasn't", "we", "were", "weren't",
	"what", "when", "where", "which", "while", "who", "whom", "why",
	"will", "with", "won't", "would", "wouldn't", "you", "your", "yours",
	"yourself", "yourselves",
}

// DefaultDomainStopwords is the app-review boilerplate layered on top of
// the general list. Exposed so config can override it.
var DefaultDomainStopwords = []string{
	"app", "apps", "application", "use", "using", "used", "user",
	"phone", "device", "im", "ive", "get", "got", "one", "really",
	"also", "even", "much", "thing", "things", "make", "makes", "time",
	"way", "please", "still", "lot", "something",
}
