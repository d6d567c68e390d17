package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/platform/internal/model"
)

func TestCourses_ListIsCached(t *testing.T) {
	s := newTestServer(t)
	s.courses.courses = []model.Course{
		{ID: uuid.New(), Title: "HTML & CSS", Category: "web", Published: true},
		{ID: uuid.New(), Title: "Typography", Category: "design", Published: true},
	}

	first := s.do(t, http.MethodGet, "/courses?category=web", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := s.do(t, http.MethodGet, "/courses?category=web", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))

	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, int32(1), s.courses.listCalls.Load())

	s.do(t, http.MethodGet, "/courses?category=design", nil)
	assert.Equal(t, int32(2), s.courses.listCalls.Load())
}

func TestCourses_GetNotFoundNotCached(t *testing.T) {
	s := newTestServer(t)
	path := "/courses/" + uuid.NewString()

	w := s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = s.do(t, http.MethodGet, "/courses/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourses_CreateRequiresCapability(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"title": "Go 101", "slug": "go-101", "category": "programming", "price_cents": 4900}

	w := s.do(t, http.MethodPost, "/courses", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/courses", body, s.accessCookie(t, model.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/courses", body, s.accessCookie(t, model.RoleAdmin))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "go-101", data["slug"])
}
