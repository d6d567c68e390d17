package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"coursehub/platform/internal/config"
	"coursehub/platform/internal/metrics"
	"coursehub/platform/internal/repository"
	"coursehub/platform/pkg/crypto"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// OTPManager issues, stores, verifies and consumes the one-time codes that
// prove control of an email address during registration.
//
// At most one live code exists per email: issuing overwrites the previous
// record, and a successful verification deletes it in the same atomic step
// as the comparison.
type OTPManager struct {
	store         repository.StateStore
	mailer        MailSender
	resendLimiter RateLimiter
	verifyLimiter RateLimiter
	ttl           time.Duration
	logger        *zap.Logger
	generate      func() (string, error)
}

type OTPOption func(*OTPManager)

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(fn func() (string, error)) OTPOption {
	return func(m *OTPManager) { m.generate = fn }
}

func NewOTPManager(
	store repository.StateStore,
	mailer MailSender,
	cfg config.OTPConfig,
	logger *zap.Logger,
	opts ...OTPOption,
) *OTPManager {
	m := &OTPManager{
		store:         store,
		mailer:        mailer,
		resendLimiter: NewFixedWindowLimiter(store, "otpResend", cfg.ResendLimit, cfg.ResendWindow),
		verifyLimiter: NewFixedWindowLimiter(store, "otpVerify", cfg.VerifyLimit, cfg.TTL),
		ttl:           cfg.TTL,
		logger:        logger,
		generate:      GenerateOTP,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateOTP returns a 6-digit code drawn uniformly from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := crypto.RandomIntInRange(otpMin, otpMax)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

func otpKey(email string) string { return "otp:" + email }

// Issue generates a fresh code for email, stores its hash, and mails the
// plaintext. Any previously issued code stops working immediately.
func (m *OTPManager) Issue(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	code, err := m.generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	if err := m.store.Set(ctx, otpKey(email), []byte(crypto.HashSecret(code)), m.ttl); err != nil {
		m.logger.Error("store otp failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("store otp: %w", err)
	}

	body := fmt.Sprintf(
		"Your verification code is %s.\n\nIt expires in %d minutes. If you did not request it, ignore this email.",
		code, int(m.ttl.Minutes()),
	)
	if err := m.mailer.Send(ctx, email, "Your verification code", body); err != nil {
		m.logger.Error("send otp email failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("send otp email: %w", err)
	}

	metrics.OTPEvent("issued")
	return nil
}

// Resend re-issues a code, subject to the per-email resend budget.
func (m *OTPManager) Resend(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := m.resendLimiter.Allow(ctx, email); err != nil {
		if errors.Is(err, ErrRateLimited) {
			metrics.OTPEvent("rate_limited")
		}
		return err
	}
	return m.Issue(ctx, email)
}

// Verify reports whether code is the live code for email, consuming it on
// success. A missing, expired or wrong code yields false with a nil error;
// a wrong code leaves the record in place for another attempt.
func (m *OTPManager) Verify(ctx context.Context, email, code string) (bool, error) {
	email = normalizeEmail(email)
	if err := m.verifyLimiter.Allow(ctx, email); err != nil {
		if errors.Is(err, ErrRateLimited) {
			metrics.OTPEvent("rate_limited")
		}
		return false, err
	}

	ok, err := m.store.CompareAndDelete(ctx, otpKey(email), []byte(crypto.HashSecret(code)))
	if err != nil {
		m.logger.Error("verify otp failed", zap.String("email", email), zap.Error(err))
		return false, fmt.Errorf("verify otp: %w", err)
	}
	if !ok {
		metrics.OTPEvent("rejected")
		return false, nil
	}
	metrics.OTPEvent("verified")
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
