package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/userboard/internal/metrics"
	"github.com/BaSui01/userboard/llm/retry"
	"github.com/BaSui01/userboard/types"
)

// CompletionCache is the cache surface the client consumes. The concrete
// Redis implementation lives in llm/cache.
type CompletionCache interface {
	Get(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Set(ctx context.Context, req *ChatRequest, resp *ChatResponse) error
}

// ClientConfig controls model defaults and client-side throttling.
type ClientConfig struct {
	Model             string
	MaxTokens         int
	Temperature       float32
	RequestTimeout    time.Duration
	RequestsPerSecond float64 // 0 disables client-side rate limiting
	Burst             int
}

// DefaultClientConfig returns conservative defaults for batch pipelines.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Model:             "gpt-4o-mini",
		MaxTokens:         1024,
		Temperature:       0.7,
		RequestTimeout:    60 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
	}
}

// Client wraps a Provider with retry, rate limiting, optional caching
// and metrics. All pipeline stages call LLMs through it.
type Client struct {
	provider Provider
	cfg      ClientConfig
	retryer  retry.Retryer
	limiter  *rate.Limiter
	cache    CompletionCache
	metrics  *metrics.Collector
	policy   *retry.RetryPolicy
	logger   *zap.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithCache attaches a completion cache.
func WithCache(c CompletionCache) ClientOption {
	return func(cl *Client) { cl.cache = c }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *metrics.Collector) ClientOption {
	return func(cl *Client) { cl.metrics = m }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p *retry.RetryPolicy) ClientOption {
	return func(cl *Client) { cl.policy = p }
}

// NewClient builds a client around a provider.
func NewClient(provider Provider, cfg ClientConfig, logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultClientConfig().Model
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	c := &Client{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "llm_client")),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.policy == nil {
		c.policy = retry.DefaultRetryPolicy()
	}
	c.policy.Retryable = types.IsRetryable
	onRetry := c.policy.OnRetry
	c.policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.metrics.RecordLLMRetry(provider.Name())
		if onRetry != nil {
			onRetry(attempt, err, delay)
		}
	}
	c.retryer = retry.NewBackoffRetryer(c.policy, c.logger)

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// Completion performs one chat call with the client's full stack:
// cache lookup, rate limiting, retry with backoff, metrics.
func (c *Client) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.cfg.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.cfg.MaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = c.cfg.Temperature
	}
	if req.Timeout == 0 {
		req.Timeout = c.cfg.RequestTimeout
	}

	if c.cache != nil {
		if resp, err := c.cache.Get(ctx, req); err == nil {
			c.metrics.RecordCacheHit("completion")
			return resp, nil
		}
		c.metrics.RecordCacheMiss("completion")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	result, err := c.retryer.DoWithResult(ctx, func() (any, error) {
		return c.provider.Completion(ctx, req)
	})
	if err != nil {
		c.metrics.RecordLLMRequest(c.provider.Name(), req.Model, "error", time.Since(start))
		return nil, err
	}
	resp := result.(*ChatResponse)
	c.metrics.RecordLLMRequest(c.provider.Name(), req.Model, "success", time.Since(start))
	c.metrics.RecordLLMTokens(c.provider.Name(), req.Model,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if c.cache != nil {
		if err := c.cache.Set(ctx, req, resp); err != nil {
			c.logger.Warn("cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// Ask is the single-turn convenience used by the pipeline stages: one
// optional system prompt, one user prompt, text out.
func (c *Client) Ask(ctx context.Context, prompt, system string) (string, error) {
	var msgs []Message
	if system != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: prompt})

	resp, err := c.Completion(ctx, &ChatRequest{Messages: msgs})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", types.NewError(types.ErrEmptyResponse, "model returned an empty completion").
			WithProvider(c.provider.Name()).WithRetryable(true)
	}
	return text, nil
}
