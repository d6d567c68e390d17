package repository

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps every backend failure of a StateStore. Callers
// treat it as an infrastructure error and never as a negative answer.
var ErrStoreUnavailable = errors.New("state store unavailable")

// StateStore abstracts ephemeral key-value state.
// Implementations: Redis (production) or in-memory (local dev / single instance).
//
// Get returns (nil, nil) for absent or expired keys.
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// CompareAndDelete removes key only if its current value equals expected.
	// It reports whether the delete happened. The comparison and the delete
	// are one atomic step.
	CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error)

	// DeleteUnlessEqual removes key only if it exists and its value differs
	// from keep. It reports whether the delete happened, atomically.
	DeleteUnlessEqual(ctx context.Context, key string, keep []byte) (bool, error)

	// CompareAndSwap replaces the value of key with next (and resets its TTL)
	// only if the current value equals expected.
	CompareAndSwap(ctx context.Context, key string, expected, next []byte, ttl time.Duration) (bool, error)

	// IncrWindow increments the counter at key and starts its expiry window
	// on the first hit. It returns the post-increment count.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}
