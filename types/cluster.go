package types

// FeatureCategory names a pattern group used to classify feature-request
// signals inside a cluster.
type FeatureCategory string

const (
	CategoryUI            FeatureCategory = "ui"
	CategoryFunctionality FeatureCategory = "functionality"
	CategoryPerformance   FeatureCategory = "performance"
	CategoryBugReports    FeatureCategory = "bug_reports"
	CategorySyncBackup    FeatureCategory = "sync_backup"
	CategoryMonetization  FeatureCategory = "monetization"
	CategoryActivation    FeatureCategory = "activation"
)

// FeatureRequestSignal is a derived, read-only record of how strongly one
// pattern category shows up inside a cluster.
type FeatureRequestSignal struct {
	Category         FeatureCategory `json:"category"`
	Frequency        float64         `json:"frequency"` // matches / cluster size
	Count            int             `json:"count"`
	AverageSentiment float64         `json:"average_sentiment"` // mean compound over matched reviews
	PriorityScore    float64         `json:"priority_score"`    // frequency * (1 - average_sentiment)
	SampleReviewIDs  []string        `json:"sample_review_ids"` // at most 3
}

// Cluster is one topical group of reviews produced by a clustering run.
// It is created once per run, never mutated after analysis, and carries
// no persistence contract: a new run regenerates all clusters.
type Cluster struct {
	ID                    int                    `json:"id"`
	Size                  int                    `json:"size"`
	MemberReviewIDs       []string               `json:"member_review_ids"`
	Keywords              []string               `json:"keywords"` // ranked, best first
	SentimentDistribution map[SentimentLabel]int `json:"sentiment_distribution"`
	RatingDistribution    map[int]int            `json:"rating_distribution"`
	AverageSentiment      float64                `json:"average_sentiment"`
	AverageRating         float64                `json:"average_rating"`
	UrgencyScore          float64                `json:"urgency_score"` // in [0, 1]
	FeatureRequests       []FeatureRequestSignal `json:"feature_requests"`
	SampleReviewIDs       []string               `json:"sample_review_ids"`
}

// PainPoint is an aggregated, cross-cluster view of one feature category,
// used as input to feature ideation.
type PainPoint struct {
	Category         FeatureCategory `json:"category"`
	Severity         float64         `json:"severity"` // max priority score across clusters
	TotalCount       int             `json:"total_count"`
	AffectedClusters []int           `json:"affected_clusters"`
}
