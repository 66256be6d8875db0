package notify

import (
	"context"
	"errors"
	"time"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

type notifier interface {
	Notify(ctx context.Context, n domain.OfferNotice) error
}

type counter interface {
	Inc()
}

// TemporaryError marks a delivery failure worth retrying.
type TemporaryError struct {
	Err error
}

func (e *TemporaryError) Error() string { return "temporary: " + e.Err.Error() }

func (e *TemporaryError) Unwrap() error { return e.Err }

// Temporary wraps err as retryable.
func Temporary(err error) error {
	if err == nil {
		return nil
	}
	return &TemporaryError{Err: err}
}

// RetryConfig controls RetryingNotifier.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingNotifier retries temporary failures of the wrapped notifier
// with capped exponential backoff.
type RetryingNotifier struct {
	next    notifier
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingNotifier returns nil when next is nil.
func NewRetryingNotifier(next notifier, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingNotifier {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RetryingNotifier{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Notify delivers n, retrying while the failure is temporary.
func (r *RetryingNotifier) Notify(ctx context.Context, n domain.OfferNotice) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err := r.next.Notify(ctx, n)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn("offer notification retry",
			logx.Int64("order_id", n.OrderID),
			logx.Int64("courier_id", n.CourierID),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	var tmp *TemporaryError
	return errors.As(err, &tmp)
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
