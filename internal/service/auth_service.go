package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursehub/platform/internal/metrics"
	"coursehub/platform/internal/model"
	"coursehub/platform/internal/repository"
	"coursehub/platform/pkg/crypto"
)

// PendingRegistration is held in the state store between the register step
// and the personal-info step.
type PendingRegistration struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Verified     bool   `json:"verified"`
}

type PersonalInfo struct {
	Name  string
	Phone string
}

type AuthService interface {
	Register(ctx context.Context, email, password string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string) error
	CompleteRegistration(ctx context.Context, email string, info PersonalInfo) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	stateStore repository.StateStore
	otp        *OTPManager
	issuer     *TokenIssuer
	sessions   *RefreshTokenStore
	pendingTTL time.Duration
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	stateStore repository.StateStore,
	otp *OTPManager,
	issuer *TokenIssuer,
	sessions *RefreshTokenStore,
	pendingTTL time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		stateStore: stateStore,
		otp:        otp,
		issuer:     issuer,
		sessions:   sessions,
		pendingTTL: pendingTTL,
		logger:     logger,
	}
}

func registrationKey(email string) string { return "registration:" + email }

func (s *authService) loadPending(ctx context.Context, email string) (*PendingRegistration, []byte, error) {
	raw, err := s.stateStore.Get(ctx, registrationKey(email))
	if err != nil {
		return nil, nil, fmt.Errorf("load pending registration: %w", err)
	}
	if raw == nil {
		return nil, nil, ErrRegistrationNotFound
	}
	var pending PendingRegistration
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, nil, fmt.Errorf("decode pending registration: %w", err)
	}
	return &pending, raw, nil
}

func (s *authService) savePending(ctx context.Context, pending *PendingRegistration) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending registration: %w", err)
	}
	if err := s.stateStore.Set(ctx, registrationKey(pending.Email), data, s.pendingTTL); err != nil {
		return fmt.Errorf("save pending registration: %w", err)
	}
	return nil
}

func (s *authService) Register(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return ErrEmailAlreadyRegistered
	}

	// A second register call for the same email only re-sends the code. The
	// pending record keeps its original password and verified flag, since the
	// caller has not proven control of the mailbox.
	pending, err := s.stateStore.Exists(ctx, registrationKey(email))
	if err != nil {
		s.logger.Error("check pending registration failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("check pending registration: %w", err)
	}
	if pending {
		return s.otp.Resend(ctx, email)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.savePending(ctx, &PendingRegistration{Email: email, PasswordHash: hash}); err != nil {
		s.logger.Error("save pending registration failed", zap.String("email", email), zap.Error(err))
		return err
	}
	return s.otp.Issue(ctx, email)
}

func (s *authService) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	pending, _, err := s.loadPending(ctx, email)
	if err != nil {
		return err
	}

	ok, err := s.otp.Verify(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}

	// The code is already consumed; losing this write would force a resend.
	pending.Verified = true
	if err := s.savePending(ctx, pending); err != nil {
		s.logger.Warn("mark registration verified failed, retrying",
			zap.String("email", email), zap.Error(err))
		if err := s.savePending(ctx, pending); err != nil {
			s.logger.Error("mark registration verified failed",
				zap.String("email", email), zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *authService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	pending, err := s.stateStore.Exists(ctx, registrationKey(email))
	if err != nil {
		s.logger.Error("check pending registration failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("check pending registration: %w", err)
	}
	if !pending {
		return ErrRegistrationNotFound
	}
	return s.otp.Resend(ctx, email)
}

func (s *authService) CompleteRegistration(ctx context.Context, email string, info PersonalInfo) (*model.User, error) {
	email = normalizeEmail(email)

	pending, raw, err := s.loadPending(ctx, email)
	if err != nil {
		return nil, err
	}
	if !pending.Verified {
		return nil, ErrEmailNotVerified
	}

	// Claim the pending record so two concurrent completions cannot both
	// create an account.
	claimed, err := s.stateStore.CompareAndDelete(ctx, registrationKey(email), raw)
	if err != nil {
		return nil, fmt.Errorf("claim pending registration: %w", err)
	}
	if !claimed {
		return nil, ErrRegistrationNotFound
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: pending.PasswordHash,
		Name:         info.Name,
		Phone:        info.Phone,
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if restoreErr := s.savePending(ctx, pending); restoreErr != nil {
			s.logger.Error("restore pending registration failed",
				zap.String("email", email), zap.Error(restoreErr))
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginAttempt("failure")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if !crypto.CheckPassword(password, user.PasswordHash) {
		metrics.LoginAttempt("failure")
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		metrics.LoginAttempt("failure")
		return nil, nil, ErrUserDisabled
	}

	pair, err := s.issuer.IssuePair(ctx, user)
	if err != nil {
		s.logger.Error("issue token pair failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, nil, err
	}

	metrics.LoginAttempt("success")
	return user, pair, nil
}

// Refresh rotates the caller's refresh token. Presenting anything other than
// the user's live token revokes the session.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		metrics.RefreshEvent("invalid")
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		metrics.RefreshEvent("invalid")
		return nil, ErrRefreshTokenInvalid
	}

	next, err := s.issuer.IssueRefreshToken(&model.User{ID: userID})
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.sessions.Rotate(ctx, userID, refreshToken, next); err != nil {
		switch {
		case errors.Is(err, ErrRefreshTokenReused):
			metrics.RefreshEvent("reused")
			s.logger.Warn("refresh token reuse detected, session revoked",
				zap.String("user_id", userID.String()))
		case errors.Is(err, ErrRefreshTokenInvalid):
			metrics.RefreshEvent("invalid")
		default:
			s.logger.Error("refresh rotation failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || !user.IsActive() {
		if delErr := s.sessions.Delete(ctx, userID); delErr != nil {
			s.logger.Error("revoke session failed", zap.String("user_id", userID.String()), zap.Error(delErr))
		}
		switch {
		case err == nil:
			return nil, ErrUserDisabled
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrRefreshTokenInvalid
		default:
			return nil, fmt.Errorf("find user: %w", err)
		}
	}

	metrics.RefreshEvent("rotated")
	return s.issuer.completePair(user, next)
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		s.logger.Error("logout failed", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ensure authService implements AuthService
var _ AuthService = (*authService)(nil)
