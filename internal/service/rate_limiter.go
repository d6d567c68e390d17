package service

import (
	"context"
	"fmt"
	"time"

	"coursehub/platform/internal/repository"
)

// RateLimiter decides whether one more request for key fits its budget.
// It returns nil, ErrRateLimited, or an infrastructure error.
type RateLimiter interface {
	Allow(ctx context.Context, key string) error
}

// FixedWindowLimiter allows at most limit calls per key per window, counted
// in the StateStore so every instance shares the budget.
type FixedWindowLimiter struct {
	store  repository.StateStore
	prefix string
	limit  int
	window time.Duration
}

func NewFixedWindowLimiter(store repository.StateStore, prefix string, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store:  store,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) error {
	count, err := l.store.IncrWindow(ctx, l.prefix+":"+key, l.window)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if count > int64(l.limit) {
		return ErrRateLimited
	}
	return nil
}

var _ RateLimiter = (*FixedWindowLimiter)(nil)
