package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"coursehub/platform/internal/repository"
)

// RefreshTokenStore keeps exactly one live refresh token per user.
// Store is an unconditional overwrite; Rotate is the compare-then-replace
// step of a refresh and is atomic per user key.
type RefreshTokenStore struct {
	store repository.StateStore
	ttl   time.Duration
}

func NewRefreshTokenStore(store repository.StateStore, ttl time.Duration) *RefreshTokenStore {
	return &RefreshTokenStore{store: store, ttl: ttl}
}

func refreshKey(userID uuid.UUID) string { return "refreshToken:" + userID.String() }

func (s *RefreshTokenStore) Store(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.store.Set(ctx, refreshKey(userID), []byte(token), s.ttl); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Get returns the stored token, or "" when the user has no live session.
func (s *RefreshTokenStore) Get(ctx context.Context, userID uuid.UUID) (string, error) {
	val, err := s.store.Get(ctx, refreshKey(userID))
	if err != nil {
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return string(val), nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.Delete(ctx, refreshKey(userID)); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// Rotate replaces presented with next if presented is the user's live token.
//
// If a different token is live, presented is stale or stolen: the session is
// revoked and ErrRefreshTokenReused is returned. If no token is live,
// ErrRefreshTokenInvalid is returned.
func (s *RefreshTokenStore) Rotate(ctx context.Context, userID uuid.UUID, presented, next string) error {
	key := refreshKey(userID)

	swapped, err := s.store.CompareAndSwap(ctx, key, []byte(presented), []byte(next), s.ttl)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if swapped {
		return nil
	}

	// Whatever is live now is not presented; revoke it in the same step as
	// the comparison.
	revoked, err := s.store.DeleteUnlessEqual(ctx, key, []byte(presented))
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if !revoked {
		return ErrRefreshTokenInvalid
	}
	return ErrRefreshTokenReused
}
