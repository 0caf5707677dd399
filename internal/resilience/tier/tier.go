// Package tier runs a read through an ordered cascade of query strategies,
// typically an enriched join, a simplified query and the fallback snapshot.
//
// The cascade is strictly sequential. A strategy failure moves on to the next
// strategy only when faultclass marks it fallback-eligible; any other failure
// is returned to the caller unchanged and no further strategy runs.
package tier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"portal-content/internal/domain/entity"
	"portal-content/internal/observability/logging"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/observability/tracing"
	"portal-content/internal/resilience/faultclass"
)

// Well-known strategy names. They double as metric labels and X-Content-Tier values.
const (
	Enriched  = "enriched"
	Simple    = "simple"
	Live      = "live"
	Snapshot  = "snapshot"
	exhausted = "exhausted"
)

var (
	// ErrExhausted is returned by Run when every strategy failed with a fallback-eligible error.
	// It wraps the last failure.
	ErrExhausted = errors.New("all query tiers failed")

	// ErrNoStrategies is returned when Run is called without strategies.
	ErrNoStrategies = errors.New("no query strategies supplied")
)

// Strategy is one way of answering a read.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Outcome describes which strategy answered.
type Outcome struct {
	// Tier is the name of the strategy that succeeded, or "exhausted".
	Tier string
	// Index is the position of that strategy, -1 when exhausted.
	Index int
	// Degraded is true when any strategy before the answering one failed.
	Degraded bool
	// Exhausted is true when no strategy succeeded.
	Exhausted bool
}

// Config holds executor settings.
type Config struct {
	// Timeout bounds each strategy attempt. Zero disables the per-tier deadline.
	Timeout time.Duration
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{Timeout: 2 * time.Second}
}

// Executor carries the shared settings for tiered reads.
// A nil *Executor is usable and behaves like NewExecutor(DefaultConfig(), nil).
type Executor struct {
	cfg    Config
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger falls back to the context logger.
func NewExecutor(cfg Config, logger *slog.Logger) *Executor {
	return &Executor{cfg: cfg, logger: logger}
}

func (ex *Executor) config() Config {
	if ex == nil {
		return DefaultConfig()
	}
	return ex.cfg
}

func (ex *Executor) log(ctx context.Context) *slog.Logger {
	logger := logging.FromContext(ctx)
	if ex != nil && ex.logger != nil {
		logger = ex.logger
	}
	return logging.WithRequestID(ctx, logger)
}

// Run tries strategies in order and returns the first success.
//
// Failures classified fallback-eligible are logged, counted and skipped. Any other
// failure, including NotFound, is returned as is. When every strategy fails the
// error wraps ErrExhausted and the last failure.
func Run[T any](ctx context.Context, ex *Executor, op string, strategies ...Strategy[T]) (T, Outcome, error) {
	var zero T
	if len(strategies) == 0 {
		return zero, Outcome{Index: -1}, fmt.Errorf("%s: %w", op, ErrNoStrategies)
	}

	ctx, span := tracing.GetTracer().Start(ctx, "tier."+op)
	defer span.End()

	cfg := ex.config()
	logger := ex.log(ctx)

	var lastErr error
	for i, s := range strategies {
		// A caller that went away is not a tier failure.
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return zero, Outcome{Index: -1}, err
		}

		result, err := attempt(ctx, cfg.Timeout, op, s)
		if err == nil {
			out := Outcome{Tier: s.Name, Index: i, Degraded: i > 0}
			metrics.RecordTierServed(op, s.Name)
			span.SetAttributes(
				attribute.String("tier.served", s.Name),
				attribute.Int("tier.index", i),
				attribute.Bool("tier.degraded", out.Degraded),
			)
			if out.Degraded {
				logger.Info("read served by degraded tier",
					slog.String("operation", op),
					slog.String("tier", s.Name),
					slog.Int("index", i))
			}
			return result, out, nil
		}

		class := faultclass.Classify(err)
		metrics.RecordTierFailure(op, s.Name, class.String())

		if !class.FallbackEligible() {
			if class == faultclass.Unknown {
				logger.Error("query tier failed with unclassified error",
					slog.String("operation", op),
					slog.String("tier", s.Name),
					slog.Any("error", err))
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return zero, Outcome{Tier: s.Name, Index: i}, err
		}

		logger.Warn("query tier failed, falling back",
			slog.String("operation", op),
			slog.String("tier", s.Name),
			slog.String("class", class.String()),
			slog.Any("error", err))
		lastErr = err
	}

	metrics.RecordTierServed(op, exhausted)
	logger.Error("all query tiers failed",
		slog.String("operation", op),
		slog.Int("tiers", len(strategies)),
		slog.Any("error", lastErr))
	span.SetAttributes(attribute.Bool("tier.exhausted", true))
	span.SetStatus(codes.Error, "all query tiers failed")

	out := Outcome{Tier: exhausted, Index: -1, Degraded: true, Exhausted: true}
	return zero, out, fmt.Errorf("%s: %w: %w", op, ErrExhausted, lastErr)
}

// attempt runs a single strategy under its own deadline.
func attempt[T any](ctx context.Context, timeout time.Duration, op string, s Strategy[T]) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	result, err := s.Run(ctx)
	metrics.RecordTierDuration(op, s.Name, time.Since(start))
	// Drivers sometimes surface an expired deadline as a generic error.
	if err != nil && faultclass.Classify(err) == faultclass.Unknown && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", err, context.DeadlineExceeded)
	}
	return result, err
}

// List runs a list-shaped read. Exhaustion yields an empty slice and no error.
func List[T any](ctx context.Context, ex *Executor, op string, strategies ...Strategy[[]T]) ([]T, Outcome, error) {
	items, out, err := Run(ctx, ex, op, strategies...)
	if out.Exhausted {
		return []T{}, out, nil
	}
	if err != nil {
		return nil, out, err
	}
	if items == nil {
		items = []T{}
	}
	return items, out, nil
}

// One runs a single-item read. Exhaustion yields entity.ErrNotFound.
func One[T any](ctx context.Context, ex *Executor, op string, strategies ...Strategy[T]) (T, Outcome, error) {
	item, out, err := Run(ctx, ex, op, strategies...)
	if out.Exhausted {
		var zero T
		return zero, out, entity.ErrNotFound
	}
	return item, out, err
}
