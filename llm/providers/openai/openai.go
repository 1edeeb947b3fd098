// Package openai adapts the official OpenAI SDK to the llm.Provider
// interface, including error classification for the retry layer.
package openai

import (
	"context"
	"errors"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	llmpkg "github.com/BaSui01/userboard/llm"
	"github.com/BaSui01/userboard/types"
)

const providerName = "openai"

// Config holds provider credentials and defaults.
type Config struct {
	APIKey  string
	BaseURL string        // optional, for OpenAI-compatible gateways
	Timeout time.Duration // default per-request timeout
}

// Provider is an llm.Provider backed by the OpenAI chat completions API.
type Provider struct {
	client openaisdk.Client
	cfg    Config
	logger *zap.Logger
}

// New builds the provider. Retries are disabled in the SDK itself; the
// caller's retry layer owns that policy.
func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, types.NewError(types.ErrAuthentication, "openai api key is required").
			WithProvider(providerName)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		client: openaisdk.NewClient(opts...),
		cfg:    cfg,
		logger: logger.With(zap.String("component", "openai_provider")),
	}, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return providerName }

// Completion implements llm.Provider.
func (p *Provider) Completion(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "completion requires at least one message").
			WithProvider(providerName)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = p.cfg.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(req.Model),
		Messages: toSDKMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openaisdk.Float(float64(req.Temperature))
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.mapError(err)
	}
	p.logger.Debug("completion finished",
		zap.String("model", req.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
	)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, types.NewError(types.ErrEmptyResponse, "provider returned no content").
			WithProvider(providerName).WithRetryable(true)
	}
	return fromSDKResponse(resp), nil
}

func toSDKMessages(msgs []llmpkg.Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case llmpkg.RoleSystem:
			out = append(out, openaisdk.SystemMessage(m.Content))
		case llmpkg.RoleAssistant:
			out = append(out, openaisdk.AssistantMessage(m.Content))
		default:
			out = append(out, openaisdk.UserMessage(m.Content))
		}
	}
	return out
}

func fromSDKResponse(resp *openaisdk.ChatCompletion) *llmpkg.ChatResponse {
	out := &llmpkg.ChatResponse{
		ID:       resp.ID,
		Provider: providerName,
		Model:    resp.Model,
		Usage: llmpkg.ChatUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		CreatedAt: time.Unix(resp.Created, 0).UTC(),
	}
	for i, ch := range resp.Choices {
		out.Choices = append(out.Choices, llmpkg.ChatChoice{
			Index:        i,
			FinishReason: string(ch.FinishReason),
			Message: llmpkg.Message{
				Role:    llmpkg.RoleAssistant,
				Content: ch.Message.Content,
			},
		})
	}
	return out
}

// mapError classifies SDK errors so the retry layer can tell transient
// failures from fatal ones.
func (p *Provider) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.ErrTimeout, "openai request timed out").
			WithProvider(providerName).WithRetryable(true).WithCause(err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apierr *openaisdk.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429:
			return types.NewError(types.ErrRateLimited, "openai rate limit exceeded").
				WithProvider(providerName).WithRetryable(true).WithCause(err)
		case apierr.StatusCode == 401 || apierr.StatusCode == 403:
			return types.NewError(types.ErrAuthentication, "openai rejected credentials").
				WithProvider(providerName).WithCause(err)
		case apierr.StatusCode >= 500:
			return types.NewError(types.ErrUpstreamError, "openai server error").
				WithProvider(providerName).WithRetryable(true).WithCause(err)
		default:
			return types.NewError(types.ErrInvalidRequest, "openai rejected request").
				WithProvider(providerName).WithCause(err)
		}
	}

	// Network-level failures without an API status are worth retrying.
	return types.NewError(types.ErrUpstreamError, "openai request failed").
		WithProvider(providerName).WithRetryable(true).WithCause(err)
}
