package service

import (
	"errors"

	"coursehub/platform/internal/repository"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrRegistrationNotFound   = errors.New("no pending registration for this email")
	ErrEmailNotVerified       = errors.New("email has not been verified")
	ErrInvalidOTP             = errors.New("invalid or expired code")
	ErrRefreshTokenInvalid    = errors.New("refresh token invalid or revoked")
	ErrRefreshTokenReused     = errors.New("refresh token reuse detected")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserDisabled           = errors.New("user is disabled or banned")
	ErrCourseNotFound         = errors.New("course not found")
	ErrRateLimited            = errors.New("rate limit exceeded")

	// ErrStoreUnavailable is the infrastructure failure of the shared key-value store.
	ErrStoreUnavailable = repository.ErrStoreUnavailable
)
