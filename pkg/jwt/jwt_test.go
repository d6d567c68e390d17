package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager("test-signing-key", "coursehub-test", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestManager()
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "admin")
	require.NoError(t, err)

	claims, err := m.ValidateType(token, TokenTypeAccess)
	require.NoError(t, err)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidate_Expired(t *testing.T) {
	now := time.Now()
	m := newTestManager().WithClock(func() time.Time { return now })

	token, err := m.GenerateAccessToken(uuid.New(), "user")
	require.NoError(t, err)

	later := m.WithClock(func() time.Time { return now.Add(16 * time.Minute) })
	_, err = later.Validate(token)
	assert.Error(t, err)
}

func TestValidate_WrongKey(t *testing.T) {
	token, err := newTestManager().GenerateAccessToken(uuid.New(), "user")
	require.NoError(t, err)

	other := NewManager("another-key", "coursehub-test", time.Minute, time.Hour)
	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestValidate_WrongIssuer(t *testing.T) {
	token, err := NewManager("test-signing-key", "someone-else", time.Minute, time.Hour).
		GenerateAccessToken(uuid.New(), "user")
	require.NoError(t, err)

	_, err = newTestManager().Validate(token)
	assert.ErrorIs(t, err, ErrUnexpectedIssuer)
}

func TestValidateType_RejectsRefreshAsAccess(t *testing.T) {
	m := newTestManager()
	refresh, _, err := m.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	_, err = m.ValidateType(refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrUnexpectedType)

	_, err = m.ValidateType(refresh, TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestGenerateRefreshToken_Distinct(t *testing.T) {
	m := newTestManager()
	userID := uuid.New()

	a, _, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)
	b, _, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
