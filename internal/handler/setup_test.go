package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursehub/platform/internal/cache"
	"coursehub/platform/internal/config"
	"coursehub/platform/internal/model"
	"coursehub/platform/internal/repository"
	"coursehub/platform/internal/service"
	jwtpkg "coursehub/platform/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- fakes ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

// memCourseRepo counts List calls so tests can observe cache hits.
type memCourseRepo struct {
	mu        sync.Mutex
	courses   []model.Course
	listCalls atomic.Int32
}

func (r *memCourseRepo) Create(_ context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses = append(r.courses, *c)
	return nil
}

func (r *memCourseRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCourseRepo) List(_ context.Context, f model.CourseFilter) ([]model.Course, error) {
	r.listCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Course{}
	for _, c := range r.courses {
		if f.Category == "" || c.Category == f.Category {
			out = append(out, c)
		}
	}
	return out, nil
}

type memEnquiryRepo struct {
	mu        sync.Mutex
	enquiries []model.Enquiry
}

func (r *memEnquiryRepo) Create(_ context.Context, e *model.Enquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enquiries = append(r.enquiries, *e)
	return nil
}

func (r *memEnquiryRepo) List(_ context.Context, _, _ int) ([]model.Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Enquiry(nil), r.enquiries...), nil
}

type codeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *codeMailer) Send(_ context.Context, to, _ string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	const marker = "Your verification code is "
	if i := strings.Index(body, marker); i >= 0 {
		m.codes[to] = body[i+len(marker) : i+len(marker)+6]
	}
	return nil
}

func (m *codeMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

// --- server ---

type testServer struct {
	router  *gin.Engine
	users   *memUserRepo
	courses *memCourseRepo
	mailer  *codeMailer
	jwt     *jwtpkg.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	cfg := &config.Config{
		App:    config.AppConfig{Env: "development"},
		Server: config.ServerConfig{Mode: "test"},
		OTP: config.OTPConfig{
			TTL:          300 * time.Second,
			ResendLimit:  3,
			ResendWindow: time.Hour,
			VerifyLimit:  5,
		},
		Cache: config.CacheConfig{ShortTTL: time.Minute, MediumTTL: 5 * time.Minute, LongTTL: time.Hour},
		CORS: config.CORSConfig{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST"},
			AllowCredentials: true,
		},
	}

	store := repository.NewMemoryStateStore()
	users := &memUserRepo{users: make(map[uuid.UUID]model.User)}
	courses := &memCourseRepo{}
	mailer := &codeMailer{codes: make(map[string]string)}

	jwtManager := jwtpkg.NewManager("test-signing-key", "coursehub-test", 15*time.Minute, 7*24*time.Hour)
	sessions := service.NewRefreshTokenStore(store, jwtManager.RefreshTokenTTL())
	issuer := service.NewTokenIssuer(jwtManager, sessions)
	otp := service.NewOTPManager(store, mailer, cfg.OTP, logger)

	authSvc := service.NewAuthService(users, store, otp, issuer, sessions, 30*time.Minute, logger)
	courseSvc := service.NewCourseService(courses)
	enquirySvc := service.NewEnquiryService(&memEnquiryRepo{}, service.NewFixedWindowLimiter(store, "enquiry", 2, time.Hour))

	router := SetupRouter(
		cfg,
		logger,
		issuer,
		cache.New(store, cfg.Cache),
		nil,
		NewAuthHandler(authSvc, service.CookiePolicy{Development: true}, logger),
		NewCourseHandler(courseSvc, logger),
		NewEnquiryHandler(enquirySvc, logger),
	)

	return &testServer{router: router, users: users, courses: courses, mailer: mailer, jwt: jwtManager}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register completes the three registration steps.
func (s *testServer) register(t *testing.T, email, password string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/register", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/auth/register/verify-otp", gin.H{"email": email, "code": s.mailer.code(email)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/auth/register/personal", gin.H{"email": email, "name": "Ada Lovelace"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) (access, refresh *http.Cookie) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/login", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := responseCookies(w)
	require.NotNil(t, cookies[service.AccessCookieName])
	require.NotNil(t, cookies[service.RefreshCookieName])
	return cookies[service.AccessCookieName], cookies[service.RefreshCookieName]
}

func (s *testServer) accessCookie(t *testing.T, role model.Role) *http.Cookie {
	t.Helper()
	token, err := s.jwt.GenerateAccessToken(uuid.New(), string(role))
	require.NoError(t, err)
	return &http.Cookie{Name: service.AccessCookieName, Value: token}
}

func responseCookies(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range w.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
