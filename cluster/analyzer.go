package cluster

import (
	"math"
	"math/rand"
	"sort"
	"unicode"

	"go.uber.org/zap"

	"github.com/BaSui01/userboard/types"
)

// AnalyzerConfig controls cluster post-processing.
type AnalyzerConfig struct {
	// MinClusterSize drops clusters too small to characterize reliably.
	// Their reviews are excluded from downstream persona/feature work.
	MinClusterSize int
	// MaxKeywords caps the ranked keyword list per cluster.
	MaxKeywords int
	// SampleSeed seeds deterministic evidence sampling.
	SampleSeed int64
	// PerLabelSamples caps evidence picks per sentiment label.
	PerLabelSamples int
	// MaxSamples caps the total evidence list per cluster.
	MaxSamples int
}

// DefaultAnalyzerConfig returns the defaults used by the pipeline.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinClusterSize:  10,
		MaxKeywords:     10,
		SampleSeed:      42,
		PerLabelSamples: 2,
		MaxSamples:      5,
	}
}

// Analyzer turns raw label assignments into analyzed Cluster entities.
type Analyzer struct {
	cfg    AnalyzerConfig
	logger *zap.Logger
}

// NewAnalyzer creates a cluster analyzer.
func NewAnalyzer(cfg AnalyzerConfig, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = 10
	}
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = 10
	}
	if cfg.PerLabelSamples <= 0 {
		cfg.PerLabelSamples = 2
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = 5
	}
	return &Analyzer{cfg: cfg, logger: logger.With(zap.String("component", "cluster_analyzer"))}
}

// Analyze builds Cluster entities from an engine result. Reviews must be
// index-aligned with the labels in res. Clusters below MinClusterSize
// are dropped; an empty result is a data-quality failure.
func (a *Analyzer) Analyze(reviews []types.Review, res *Result) ([]types.Cluster, error) {
	byLabel := make(map[int][]int)
	for i, label := range res.Labels {
		byLabel[label] = append(byLabel[label], i)
	}

	labels := make([]int, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	clusters := make([]types.Cluster, 0, len(labels))
	for _, label := range labels {
		members := byLabel[label]
		if len(members) < a.cfg.MinClusterSize {
			a.logger.Debug("dropping small cluster",
				zap.Int("label", label), zap.Int("size", len(members)))
			continue
		}
		clusters = append(clusters, a.buildCluster(label, members, reviews, res))
	}

	if len(clusters) == 0 {
		return nil, types.NewError(types.ErrDataQuality,
			"no cluster met the minimum size threshold")
	}
	a.logger.Info("cluster analysis complete", zap.Int("clusters", len(clusters)))
	return clusters, nil
}

func (a *Analyzer) buildCluster(label int, members []int, reviews []types.Review, res *Result) types.Cluster {
	c := types.Cluster{
		ID:                    label,
		Size:                  len(members),
		MemberReviewIDs:       make([]string, 0, len(members)),
		SentimentDistribution: make(map[types.SentimentLabel]int),
		RatingDistribution:    make(map[int]int),
	}

	var sentimentSum, ratingSum float64
	for _, i := range members {
		rv := reviews[i]
		c.MemberReviewIDs = append(c.MemberReviewIDs, rv.ID)
		c.SentimentDistribution[rv.Sentiment.Label()]++
		c.RatingDistribution[rv.Rating]++
		sentimentSum += rv.Sentiment.Compound
		ratingSum += float64(rv.Rating)
	}
	c.AverageSentiment = sentimentSum / float64(len(members))
	c.AverageRating = ratingSum / float64(len(members))

	c.Keywords = a.extractKeywords(members, res)
	c.FeatureRequests = a.extractFeatureSignals(members, reviews)
	c.UrgencyScore = UrgencyScore(len(members), c.AverageSentiment, c.AverageRating)
	c.SampleReviewIDs = a.sampleEvidence(members, reviews)
	return c
}

// extractKeywords ranks vocabulary terms by their mean TF-IDF score over
// the cluster's rows of the corpus matrix. The corpus-level vectorizer is
// reused, never refit, so scores stay comparable across clusters.
// Clusters with fewer than 3 member texts yield no keywords.
func (a *Analyzer) extractKeywords(members []int, res *Result) []string {
	if len(members) < 3 {
		return nil
	}

	vocab := res.Vectorizer.Vocabulary()
	mean := make([]float64, len(vocab))
	for _, i := range members {
		for j, v := range res.Matrix[i] {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(members))
	}

	order := make([]int, len(vocab))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return mean[order[i]] > mean[order[j]]
	})

	keywords := make([]string, 0, a.cfg.MaxKeywords)
	for _, j := range order {
		if mean[j] <= 0 {
			break
		}
		term := vocab[j]
		if !keywordEligible(term, res.Vectorizer) {
			continue
		}
		keywords = append(keywords, term)
		if len(keywords) == a.cfg.MaxKeywords {
			break
		}
	}
	return keywords
}

// keywordEligible filters keyword candidates: at least 3 characters, not
// a stopword, not purely numeric, and at least 60% alphabetic.
func keywordEligible(term string, vec *Vectorizer) bool {
	if len(term) < 3 || vec.IsStopword(term) {
		return false
	}
	var letters, digits int
	for _, r := range term {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if letters == 0 && digits > 0 {
		return false
	}
	return float64(letters)/float64(len([]rune(term))) >= 0.6
}

// extractFeatureSignals runs every pattern category over the cluster's
// member texts and scores the categories that matched.
func (a *Analyzer) extractFeatureSignals(members []int, reviews []types.Review) []types.FeatureRequestSignal {
	size := float64(len(members))
	signals := make([]types.FeatureRequestSignal, 0, len(featurePatterns))

	for _, p := range featurePatterns {
		var count int
		var sentimentSum float64
		var samples []string
		for _, i := range members {
			if !p.re.MatchString(reviews[i].CleanedText) {
				continue
			}
			count++
			sentimentSum += reviews[i].Sentiment.Compound
			if len(samples) < 3 {
				samples = append(samples, reviews[i].ID)
			}
		}
		if count == 0 {
			continue
		}

		avgSentiment := sentimentSum / float64(count)
		frequency := float64(count) / size
		signals = append(signals, types.FeatureRequestSignal{
			Category:         p.category,
			Frequency:        frequency,
			Count:            count,
			AverageSentiment: avgSentiment,
			PriorityScore:    frequency * (1 - avgSentiment),
			SampleReviewIDs:  samples,
		})
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].PriorityScore > signals[j].PriorityScore
	})
	return signals
}

// sampleEvidence deterministically samples up to PerLabelSamples reviews
// per sentiment label, capped at MaxSamples total.
func (a *Analyzer) sampleEvidence(members []int, reviews []types.Review) []string {
	rng := rand.New(rand.NewSource(a.cfg.SampleSeed))
	var out []string
	for _, label := range []types.SentimentLabel{
		types.SentimentNegative, types.SentimentNeutral, types.SentimentPositive,
	} {
		var candidates []int
		for _, i := range members {
			if reviews[i].Sentiment.Label() == label {
				candidates = append(candidates, i)
			}
		}
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for n, i := range candidates {
			if n == a.cfg.PerLabelSamples || len(out) == a.cfg.MaxSamples {
				break
			}
			out = append(out, reviews[i].ID)
		}
	}
	return out
}

// UrgencyScore blends cluster size, negative sentiment and low rating
// into a [0, 1] score: 40% size (saturating at 100 reviews), 40% negative
// sentiment, 20% low rating (below 3 stars).
func UrgencyScore(size int, avgSentiment, avgRating float64) float64 {
	sizeTerm := math.Min(float64(size)/100, 1)
	sentimentTerm := math.Max(0, -avgSentiment)
	ratingTerm := math.Max(0, (3-avgRating)/2)
	return math.Min(1.0, 0.4*sizeTerm+0.4*sentimentTerm+0.2*ratingTerm)
}

// AggregatePainPoints folds per-cluster feature signals into a
// cross-cluster pain-point list ordered by severity, the ideation input.
func AggregatePainPoints(clusters []types.Cluster) []types.PainPoint {
	byCategory := make(map[types.FeatureCategory]*types.PainPoint)
	for _, c := range clusters {
		for _, sig := range c.FeatureRequests {
			pp, ok := byCategory[sig.Category]
			if !ok {
				pp = &types.PainPoint{Category: sig.Category}
				byCategory[sig.Category] = pp
			}
			pp.TotalCount += sig.Count
			pp.AffectedClusters = append(pp.AffectedClusters, c.ID)
			if sig.PriorityScore > pp.Severity {
				pp.Severity = sig.PriorityScore
			}
		}
	}

	out := make([]types.PainPoint, 0, len(byCategory))
	for _, pp := range byCategory {
		sort.Ints(pp.AffectedClusters)
		out = append(out, *pp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].Category < out[j].Category
	})
	return out
}
