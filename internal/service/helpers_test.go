package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursehub/platform/internal/config"
	"coursehub/platform/internal/model"
	"coursehub/platform/internal/repository"
	jwtpkg "coursehub/platform/pkg/jwt"
)

func newRedisStore(t *testing.T) (repository.StateStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewRedisStateStore(client), mr
}

func testOTPConfig() config.OTPConfig {
	return config.OTPConfig{
		TTL:          300 * time.Second,
		ResendLimit:  3,
		ResendWindow: time.Hour,
		VerifyLimit:  5,
	}
}

// captureMailer records every message and remembers the last code per recipient.
type captureMailer struct {
	mu    sync.Mutex
	sent  []string
	codes map[string]string
	err   error
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{codes: make(map[string]string)}
}

func (m *captureMailer) Send(_ context.Context, to, _ string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	const marker = "Your verification code is "
	if i := strings.Index(body, marker); i >= 0 {
		m.codes[to] = body[i+len(marker) : i+len(marker)+6]
	}
	return nil
}

func (m *captureMailer) lastCode(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

// sequence returns a code generator that yields codes in order.
func sequence(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) setStatus(id uuid.UUID, status model.UserStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].Status = status
}

func newTestJWTManager() *jwtpkg.Manager {
	return jwtpkg.NewManager("test-signing-key", "coursehub-test", 15*time.Minute, 7*24*time.Hour)
}

type authFixture struct {
	svc      AuthService
	users    *fakeUserRepo
	mailer   *captureMailer
	sessions *RefreshTokenStore
	store    repository.StateStore
	mr       *miniredis.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store, mr := newRedisStore(t)
	users := newFakeUserRepo()
	mailer := newCaptureMailer()
	logger := zap.NewNop()

	sessions := NewRefreshTokenStore(store, 7*24*time.Hour)
	issuer := NewTokenIssuer(newTestJWTManager(), sessions)
	otp := NewOTPManager(store, mailer, testOTPConfig(), logger)

	return &authFixture{
		svc:      NewAuthService(users, store, otp, issuer, sessions, 30*time.Minute, logger),
		users:    users,
		mailer:   mailer,
		sessions: sessions,
		store:    store,
		mr:       mr,
	}
}
