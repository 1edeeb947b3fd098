package cluster

import (
	"go.uber.org/zap"

	"github.com/BaSui01/userboard/types"
)

// EngineConfig controls the clustering run and the k search.
type EngineConfig struct {
	MinK    int   // lower bound of the k search
	MaxK    int   // upper bound, further capped at corpusSize/10
	Seed    int64 // base random seed; fixed for reproducible partitions
	NInit   int   // k-means restarts per candidate
	MaxIter int   // Lloyd iterations per restart
}

// DefaultEngineConfig returns the defaults used by the pipeline.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{MinK: 3, MaxK: 15, Seed: 42, NInit: 10, MaxIter: 100}
}

// Result is the output of one clustering run. Labels is index-aligned
// with the input texts and always partitions them: every input appears
// in exactly one cluster. The fitted vectorizer and corpus matrix are
// carried along so the analyzer can extract keywords without refitting.
type Result struct {
	Labels     []int
	K          int
	Silhouette float64
	Vectorizer *Vectorizer
	Matrix     [][]float64
}

// Engine groups cleaned texts into topical clusters with an
// automatically selected cluster count.
type Engine struct {
	cfg    EngineConfig
	vcfg   VectorizerConfig
	logger *zap.Logger
}

// NewEngine creates a clustering engine.
func NewEngine(cfg EngineConfig, vcfg VectorizerConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinK < 2 {
		cfg.MinK = 3
	}
	if cfg.MaxK < cfg.MinK {
		cfg.MaxK = cfg.MinK
	}
	return &Engine{cfg: cfg, vcfg: vcfg, logger: logger.With(zap.String("component", "cluster_engine"))}
}

// Run vectorizes the texts, searches for the best k by silhouette score,
// and returns the final partition at that k.
//
// Candidate failures (degenerate single-cluster results, silhouette
// errors) are logged and skipped with a score of -1. If no candidate
// produces a valid score but at least one produced a partition, the
// search falls back to MinK. If every candidate fails outright, that is
// a data-quality failure. The final fit at the selected k is not
// separately guarded: its error propagates.
func (e *Engine) Run(texts []string) (*Result, error) {
	n := len(texts)
	if n < 10 {
		return nil, types.NewError(types.ErrDataQuality,
			"corpus too small to cluster (need at least 10 cleaned reviews)")
	}

	vec := NewVectorizer(e.vcfg)
	X, err := vec.FitTransform(texts)
	if err != nil {
		return nil, types.NewError(types.ErrDataQuality, "vectorization failed").WithCause(err)
	}

	maxK := e.cfg.MaxK
	if limit := n / 10; limit < maxK {
		maxK = limit
	}
	// Tiny corpora collapse the search range; fall back to trying MinK
	// alone rather than giving up.
	if maxK < e.cfg.MinK {
		maxK = e.cfg.MinK
	}

	bestK, bestScore := 0, -1.0
	partitioned := false
	for k := e.cfg.MinK; k <= maxK; k++ {
		if k >= n {
			break
		}
		score, ok := e.tryK(X, k)
		if ok {
			partitioned = true
		}
		if score > bestScore {
			bestScore = score
			bestK = k
		}
	}

	if bestScore < 0 {
		if !partitioned {
			return nil, types.NewError(types.ErrClusterDegenerate,
				"every candidate cluster count failed")
		}
		bestK = e.cfg.MinK
		e.logger.Warn("no candidate k produced a valid silhouette score, defaulting to min_k",
			zap.Int("k", bestK))
	}

	final, err := runKMeans(X, kmeansConfig{
		k: bestK, nInit: e.cfg.NInit, maxIter: e.cfg.MaxIter, seed: e.cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("clustering complete",
		zap.Int("corpus_size", n),
		zap.Int("k", bestK),
		zap.Float64("silhouette", bestScore),
	)

	return &Result{
		Labels:     final.labels,
		K:          bestK,
		Silhouette: bestScore,
		Vectorizer: vec,
		Matrix:     X,
	}, nil
}

// tryK runs one candidate and returns its silhouette score, or -1 when
// the candidate is degenerate. ok reports whether a partition was
// produced at all (even if it could not be scored).
func (e *Engine) tryK(X [][]float64, k int) (score float64, ok bool) {
	res, err := runKMeans(X, kmeansConfig{
		k: k, nInit: e.cfg.NInit, maxIter: e.cfg.MaxIter, seed: e.cfg.Seed,
	})
	if err != nil {
		e.logger.Warn("candidate k failed", zap.Int("k", k), zap.Error(err))
		return -1, false
	}

	distinct := make(map[int]bool)
	for _, l := range res.labels {
		distinct[l] = true
	}
	if len(distinct) < 2 {
		e.logger.Warn("candidate k collapsed to a single cluster", zap.Int("k", k))
		return -1, true
	}

	s, err := silhouetteScore(X, res.labels)
	if err != nil {
		e.logger.Warn("silhouette scoring failed", zap.Int("k", k), zap.Error(err))
		return -1, true
	}
	e.logger.Debug("candidate k scored", zap.Int("k", k), zap.Float64("silhouette", s))
	return s, true
}
