package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"
)

// ResilientProvider wraps an LLM provider with resilience patterns from fortify
type ResilientProvider struct {
	provider       Provider
	circuitBreaker circuitbreaker.CircuitBreaker[*Response]
	imageBreaker   circuitbreaker.CircuitBreaker[*ImageResponse]
	retrier        retry.Retry[*Response]
	bulkhead       bulkhead.Bulkhead[*Response]
	rateLimit      ratelimit.RateLimiter
	logger         *slog.Logger
	name           string
}

// ResilientConfig holds configuration for resilient provider wrapper
type ResilientConfig struct {
	EnableCircuitBreaker bool
	EnableRetry          bool
	EnableBulkhead       bool
	EnableRateLimit      bool

	// MaxConcurrent for bulkhead (default: 2)
	MaxConcurrent int

	// RatePerSecond for rate limiting (default: 2)
	RatePerSecond int

	// MaxAttempts for retry (default: 2)
	MaxAttempts int

	// RetryDelay is the initial backoff (default: 500ms)
	RetryDelay time.Duration

	// Logger for resilience events
	Logger *slog.Logger
}

// DefaultResilientConfig returns defaults sized for a quiz: callers hold a
// short context deadline and fall back to local content, so retries are few
// and fast.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		EnableCircuitBreaker: true,
		EnableRetry:          true,
		EnableBulkhead:       true,
		EnableRateLimit:      true,
		MaxConcurrent:        2,
		RatePerSecond:        2,
		MaxAttempts:          2,
		RetryDelay:           500 * time.Millisecond,
	}
}

// NewResilientProvider wraps a provider with resilience patterns using fortify
func NewResilientProvider(provider Provider, cfg ResilientConfig) *ResilientProvider {
	rp := &ResilientProvider{
		provider: provider,
		logger:   cfg.Logger,
		name:     provider.Name(),
	}
	if rp.logger == nil {
		rp.logger = slog.Default()
	}

	if cfg.EnableCircuitBreaker {
		onChange := func(from, to circuitbreaker.State) {
			rp.logger.Warn("circuit breaker state change",
				"provider", rp.name,
				"from", from.String(),
				"to", to.String())
		}
		trip := func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		}
		rp.circuitBreaker = circuitbreaker.New[*Response](circuitbreaker.Config{
			MaxRequests:   1,
			Interval:      30 * time.Second,
			Timeout:       30 * time.Second,
			ReadyToTrip:   trip,
			OnStateChange: onChange,
		})
		if _, ok := provider.(ImageEditor); ok {
			rp.imageBreaker = circuitbreaker.New[*ImageResponse](circuitbreaker.Config{
				MaxRequests:   1,
				Interval:      30 * time.Second,
				Timeout:       60 * time.Second,
				ReadyToTrip:   trip,
				OnStateChange: onChange,
			})
		}
	}

	if cfg.EnableRetry {
		attempts := cfg.MaxAttempts
		if attempts <= 0 {
			attempts = 2
		}
		delay := cfg.RetryDelay
		if delay <= 0 {
			delay = 500 * time.Millisecond
		}
		rp.retrier = retry.New[*Response](retry.Config{
			MaxAttempts:   attempts,
			InitialDelay:  delay,
			MaxDelay:      5 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable:   isRetryable,
		})
	}

	if cfg.EnableBulkhead {
		maxConcurrent := cfg.MaxConcurrent
		if maxConcurrent <= 0 {
			maxConcurrent = 2
		}
		rp.bulkhead = bulkhead.New[*Response](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
			MaxQueue:      maxConcurrent * 2,
			QueueTimeout:  10 * time.Second,
		})
	}

	if cfg.EnableRateLimit {
		rate := cfg.RatePerSecond
		if rate <= 0 {
			rate = 2
		}
		rp.rateLimit = ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate * 3,
			Interval: time.Second,
		})
	}

	return rp
}

func (p *ResilientProvider) Name() string {
	return p.provider.Name()
}

func (p *ResilientProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := p.allow(ctx); err != nil {
		return nil, err
	}

	operation := func(ctx context.Context) (*Response, error) {
		return p.provider.Generate(ctx, req)
	}

	if p.bulkhead != nil {
		inner := operation
		operation = func(ctx context.Context) (*Response, error) {
			return p.bulkhead.Execute(ctx, inner)
		}
	}

	if p.retrier != nil {
		inner := operation
		operation = func(ctx context.Context) (*Response, error) {
			return p.retrier.Do(ctx, inner)
		}
	}

	if p.circuitBreaker != nil {
		return p.circuitBreaker.Execute(ctx, operation)
	}
	return operation(ctx)
}

// EditImage forwards to the wrapped provider when it can edit images.
// Image edits are expensive, so they are never retried.
func (p *ResilientProvider) EditImage(ctx context.Context, req *ImageRequest) (*ImageResponse, error) {
	editor, ok := p.provider.(ImageEditor)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImageUnsupported, p.name)
	}
	if err := p.allow(ctx); err != nil {
		return nil, err
	}
	if p.imageBreaker != nil {
		return p.imageBreaker.Execute(ctx, func(ctx context.Context) (*ImageResponse, error) {
			return editor.EditImage(ctx, req)
		})
	}
	return editor.EditImage(ctx, req)
}

// SupportsImages reports whether EditImage can succeed.
func (p *ResilientProvider) SupportsImages() bool {
	_, ok := p.provider.(ImageEditor)
	return ok
}

func (p *ResilientProvider) allow(ctx context.Context) error {
	if p.rateLimit != nil && !p.rateLimit.Allow(ctx, p.name) {
		return fmt.Errorf("%w for provider %s", ErrRateLimited, p.name)
	}
	return nil
}

// Close releases resources held by the resilient provider
func (p *ResilientProvider) Close() error {
	if p.rateLimit != nil {
		return p.rateLimit.Close()
	}
	return nil
}

// isRetryable retries transient API statuses only. Context errors, decode
// failures and client errors fail fast so callers reach their fallback.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}
