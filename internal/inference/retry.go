package inference

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// MaxRetries bounds attempts per prediction.
const MaxRetries = 3

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// PredictWithRetry calls p, retrying retryable failures with backoff.
func PredictWithRetry(ctx context.Context, p Predictor, text string, log *slog.Logger) (*Prediction, error) {
	return predictWithRetry(ctx, p, text, log, Backoff)
}

func predictWithRetry(ctx context.Context, p Predictor, text string, log *slog.Logger, backoff func(int) time.Duration) (*Prediction, error) {
	var (
		pred    *Prediction
		lastErr error
	)
	for attempt := range MaxRetries {
		pred, lastErr = p.Predict(ctx, text)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable prediction error", "attempt", attempt, "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return pred, lastErr
}
