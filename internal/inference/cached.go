package inference

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/dgallion1/notescribe/internal/cache"
)

// Cached memoises predictions by input text. The classifier is deterministic,
// so identical text always yields the same tokens and tags.
type Cached struct {
	next  Predictor
	store cache.Store
	log   *slog.Logger
}

func NewCached(next Predictor, store cache.Store, log *slog.Logger) *Cached {
	return &Cached{next: next, store: store, log: log}
}

func (c *Cached) Predict(ctx context.Context, text string) (*Prediction, error) {
	key := cache.Key("predict", []byte(text))

	if raw, err := c.store.Get(ctx, key); err == nil {
		var pred Prediction
		if err := json.Unmarshal(raw, &pred); err == nil {
			return &pred, nil
		}
		c.log.Warn("discarding corrupt cache entry", "key", key)
	} else if !errors.Is(err, cache.ErrMiss) {
		c.log.Warn("cache read failed", "error", err)
	}

	pred, err := c.next.Predict(ctx, text)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(pred); err == nil {
		if err := c.store.Set(ctx, key, raw); err != nil {
			c.log.Warn("cache write failed", "error", err)
		}
	}
	return pred, nil
}
