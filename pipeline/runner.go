package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/userboard/types"
)

// BatchItem is one independent corpus for a batch run.
type BatchItem struct {
	Name    string
	Reviews []types.Review
}

// BatchResult pairs a corpus name with its run outcome. Result is
// non-nil even on failure, holding whatever the stages produced.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// Runner fans independent corpora out over one pipeline.
type Runner struct {
	pipeline *Pipeline
	logger   *zap.Logger
}

func NewRunner(p *Pipeline, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{pipeline: p, logger: logger.With(zap.String("component", "runner"))}
}

// RunAll runs every item in its own goroutine. One corpus failing
// never cancels its siblings; each result carries its own error.
// Results come back in item order.
func (r *Runner) RunAll(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			res, err := r.pipeline.Run(ctx, item.Reviews)
			if err != nil {
				r.logger.Warn("batch item failed",
					zap.String("name", item.Name), zap.Error(err))
			}
			results[i] = BatchResult{Name: item.Name, Result: res, Err: err}
		}(i, item)
	}
	wg.Wait()
	return results
}
