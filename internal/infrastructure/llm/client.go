// Package llm talks to an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Config holds client settings
type Config struct {
	APIKey            string
	BaseURL           string
	DefaultModel      string
	Timeout           time.Duration // per attempt
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
}

// Client implements domain.LanguageModel
type Client struct {
	model        llms.Model
	defaultModel string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	rateLimiter  *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[string]
	metrics      *observability.Metrics
	logger       zerolog.Logger
}

// NewClient creates a client backed by langchaingo's OpenAI provider
func NewClient(cfg Config, logger zerolog.Logger, metrics *observability.Metrics) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", domain.ErrModelUnavailable)
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
	}
	if cfg.DefaultModel != "" {
		opts = append(opts, openai.WithModel(cfg.DefaultModel))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	return newClient(model, cfg, logger, metrics), nil
}

func newClient(model llms.Model, cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	logger = observability.Component(logger, "llm")

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &Client{
		model:        model,
		defaultModel: cfg.DefaultModel,
		timeout:      timeout,
		maxRetries:   retries,
		retryBackoff: 500 * time.Millisecond,
		rateLimiter:  rate.NewLimiter(rate.Limit(rps), burst),
		breaker:      breaker,
		metrics:      metrics,
		logger:       logger,
	}
}

// Complete sends one system+user exchange and returns the first choice's text.
// All failures wrap domain.ErrModelUnavailable.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = c.defaultModel
	}

	text, err := c.breaker.Execute(func() (string, error) {
		return c.completeWithRetry(ctx, req, modelName)
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "circuit_open"
		}
		c.metrics.RecordModelCall(modelName, outcome)
		return "", fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}

	c.metrics.RecordModelCall(modelName, "success")
	return text, nil
}

func (c *Client) completeWithRetry(ctx context.Context, req domain.CompletionRequest, modelName string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.User),
	}

	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if modelName != "" {
		opts = append(opts, llms.WithModel(modelName))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}

		text, err := c.generate(ctx, content, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		c.logger.Warn().Err(err).Int("attempt", attempt).Str("model", modelName).Msg("completion attempt failed")

		if attempt <= c.maxRetries {
			timer := time.NewTimer(time.Duration(attempt) * c.retryBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}
	}

	return "", lastErr
}

func (c *Client) generate(ctx context.Context, content []llms.MessageContent, opts []llms.CallOption) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(attemptCtx, content, opts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("no choices returned from model")
	}
	return resp.Choices[0].Content, nil
}
