package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrUnexpectedType    = errors.New("unexpected token type")
	ErrUnexpectedIssuer  = errors.New("invalid issuer")
	ErrUnexpectedSubject = errors.New("invalid subject")
)

// Claims extends jwt.RegisteredClaims with custom fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	Role      string    `json:"role,omitempty"`
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrUnexpectedSubject
	}
	return id, nil
}

type Manager struct {
	signingKey      []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time
}

func NewManager(signingKey string, issuer string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		signingKey:      []byte(signingKey),
		issuer:          issuer,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		now:             time.Now,
	}
}

// WithClock returns a copy of m that reads time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Manager) AccessTokenTTL() time.Duration  { return m.accessTokenTTL }
func (m *Manager) RefreshTokenTTL() time.Duration { return m.refreshTokenTTL }

// GenerateAccessToken creates a signed JWT access token carrying the user's role.
func (m *Manager) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	claims := m.newClaims(userID, TokenTypeAccess, m.accessTokenTTL)
	claims.Role = role
	return m.sign(claims)
}

// GenerateRefreshToken creates a signed JWT refresh token.
// The random JTI makes every issued token distinct, so a stored copy can be
// compared byte-for-byte during rotation.
func (m *Manager) GenerateRefreshToken(userID uuid.UUID) (string, *Claims, error) {
	claims := m.newClaims(userID, TokenTypeRefresh, m.refreshTokenTTL)
	signed, err := m.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return signed, &claims, nil
}

func (m *Manager) newClaims(userID uuid.UUID, tokenType TokenType, ttl time.Duration) Claims {
	now := m.now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
		TokenType: tokenType,
	}
}

func (m *Manager) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// Validate parses and validates a token string, returning claims.
// Only signature, issuer and expiry are checked; no store lookup happens here.
func (m *Manager) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Issuer != m.issuer {
		return nil, ErrUnexpectedIssuer
	}

	return claims, nil
}

// ValidateType validates tokenStr and additionally requires the given token type.
func (m *Manager) ValidateType(tokenStr string, want TokenType) (*Claims, error) {
	claims, err := m.Validate(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != want {
		return nil, ErrUnexpectedType
	}
	return claims, nil
}
