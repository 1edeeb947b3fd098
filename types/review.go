package types

// SentimentLabel is the coarse polarity assigned to a review.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Sentiment holds the polarity scores computed for a review at ingestion.
// Compound is in [-1, 1]; Positive, Negative and Neutral are proportions
// of the scored tokens and sum to 1 for non-empty texts.
type Sentiment struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Label maps the compound score onto a SentimentLabel using the
// conventional ±0.05 thresholds.
func (s Sentiment) Label() SentimentLabel {
	switch {
	case s.Compound >= 0.05:
		return SentimentPositive
	case s.Compound <= -0.05:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Review is a single app-store review. CleanedText and Sentiment are
// derived once at ingestion; the struct is immutable afterwards.
type Review struct {
	ID          string    `json:"id"`
	RawText     string    `json:"raw_text"`
	CleanedText string    `json:"cleaned_text"`
	Rating      int       `json:"rating"` // 1..5 stars
	Sentiment   Sentiment `json:"sentiment"`
}
