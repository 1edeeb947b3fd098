// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector holds the pipeline's Prometheus instruments.
type Collector struct {
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec
	llmRetriesTotal    *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	discussionTurnsTotal *prometheus.CounterVec
	pipelineRunsTotal    *prometheus.CounterVec
	stageDuration        *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector registers the pipeline instruments on reg. A nil reg uses
// the default registerer; tests pass their own registry.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{logger: logger.With(zap.String("component", "metrics"))}

	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "model", "status"},
	)

	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	c.llmTokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"provider", "model", "type"},
	)

	c.llmRetriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_retries_total",
			Help:      "Total number of LLM request retries",
		},
		[]string{"provider"},
	)

	c.cacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of completion cache hits",
		},
		[]string{"cache"},
	)

	c.cacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of completion cache misses",
		},
		[]string{"cache"},
	)

	c.discussionTurnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discussion_turns_total",
			Help:      "Total number of discussion turns produced",
		},
		[]string{"kind"},
	)

	c.pipelineRunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"status"},
	)

	c.stageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"stage"},
	)

	return c
}

// RecordLLMRequest records one completed (or failed) LLM call.
// All recording methods are safe on a nil Collector so callers can treat
// metrics as optional.
func (c *Collector) RecordLLMRequest(provider, model, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordLLMTokens records token usage split by prompt/completion.
func (c *Collector) RecordLLMTokens(provider, model string, promptTokens, completionTokens int) {
	if c == nil {
		return
	}
	c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
}

// RecordLLMRetry counts one retry attempt.
func (c *Collector) RecordLLMRetry(provider string) {
	if c == nil {
		return
	}
	c.llmRetriesTotal.WithLabelValues(provider).Inc()
}

// RecordCacheHit counts a completion cache hit.
func (c *Collector) RecordCacheHit(cache string) {
	if c == nil {
		return
	}
	c.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss counts a completion cache miss.
func (c *Collector) RecordCacheMiss(cache string) {
	if c == nil {
		return
	}
	c.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordDiscussionTurn counts a produced discussion turn by kind.
func (c *Collector) RecordDiscussionTurn(kind string) {
	if c == nil {
		return
	}
	c.discussionTurnsTotal.WithLabelValues(kind).Inc()
}

// RecordPipelineRun counts a finished pipeline run by status.
func (c *Collector) RecordPipelineRun(status string) {
	if c == nil {
		return
	}
	c.pipelineRunsTotal.WithLabelValues(status).Inc()
}

// RecordStageDuration records how long a pipeline stage took.
func (c *Collector) RecordStageDuration(stage string, duration time.Duration) {
	if c == nil {
		return
	}
	c.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}
