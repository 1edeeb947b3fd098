package ingest

import (
	"math"
	"strings"

	"github.com/BaSui01/userboard/types"
)

// lexicon maps sentiment-bearing tokens to valence scores, roughly on the
// VADER scale of [-4, 4]. The list is intentionally small: it only needs
// to separate obviously-unhappy app reviews from happy ones; clustering
// does the heavy lifting on topics.
var lexicon = map[string]float64{
	"love": 3.2, "loved": 3.0, "great": 3.1, "good": 1.9, "awesome": 3.1,
	"excellent": 3.2, "amazing": 2.8, "perfect": 2.7, "best": 3.2,
	"helpful": 1.8, "easy": 1.9, "nice": 1.8, "useful": 1.9, "like": 1.5,
	"works": 1.4, "smooth": 1.7, "fantastic": 3.0, "happy": 2.7,
	"intuitive": 1.8, "fun": 2.3, "fast": 1.6, "reliable": 1.9,

	"crash": -2.5, "crashes": -2.5, "crashed": -2.5, "crashing": -2.5,
	"bug": -2.0, "bugs": -2.0, "buggy": -2.2, "broken": -2.2,
	"terrible": -3.1, "awful": -3.0, "bad": -2.5, "hate": -2.7,
	"worst": -3.1, "slow": -1.7, "annoying": -2.2, "useless": -2.4,
	"fail": -2.3, "fails": -2.3, "failed": -2.3, "freeze": -1.9,
	"freezes": -1.9, "frozen": -1.9, "error": -1.8, "errors": -1.8,
	"expensive": -1.6, "confusing": -1.8, "horrible": -3.0, "waste": -2.4,
	"disappointed": -2.2, "disappointing": -2.2, "lag": -1.7, "laggy": -1.8,
	"problem": -1.6, "problems": -1.6, "lost": -1.7, "wrong": -1.8,
	"scam": -3.0, "unusable": -2.6,
}

// negators flip the valence of the token that follows them.
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "dont": true, "don't": true,
	"cant": true, "can't": true, "wont": true, "won't": true, "isnt": true,
	"isn't": true, "doesnt": true, "doesn't": true,
}

// negationDamp is the factor applied when a negator flips a token,
// matching the VADER convention that "not great" is less negative than
// "terrible".
const negationDamp = 0.74

// ScoreSentiment computes lexicon sentiment for an already-cleaned text.
// The zero value is returned for empty input.
func ScoreSentiment(cleaned string) types.Sentiment {
	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 {
		return types.Sentiment{Neutral: 1}
	}

	var sum float64
	var posCount, negCount int
	negated := false

	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?;:\"()[]")
		if negators[tok] {
			negated = true
			continue
		}
		score, ok := lexicon[tok]
		if !ok {
			negated = false
			continue
		}
		if negated {
			score = -score * negationDamp
			negated = false
		}
		sum += score
		if score > 0 {
			posCount++
		} else if score < 0 {
			negCount++
		}
	}

	// VADER-style normalization into [-1, 1].
	compound := sum / math.Sqrt(sum*sum+15)

	total := float64(len(tokens))
	s := types.Sentiment{
		Compound: compound,
		Positive: float64(posCount) / total,
		Negative: float64(negCount) / total,
	}
	s.Neutral = 1 - s.Positive - s.Negative
	return s
}
