package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"coursehub/platform/internal/model"
	jwtpkg "coursehub/platform/pkg/jwt"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// TokenPair is the result of a login or a successful refresh.
type TokenPair struct {
	AccessToken  string        `json:"-"`
	RefreshToken string        `json:"-"`
	AccessTTL    time.Duration `json:"-"`
	RefreshTTL   time.Duration `json:"-"`
	ExpiresIn    int64         `json:"expires_in"`
}

// TokenIssuer mints access tokens (stateless, verified by signature and
// expiry only) and refresh tokens (persisted through RefreshTokenStore).
type TokenIssuer struct {
	jwt      *jwtpkg.Manager
	sessions *RefreshTokenStore
}

func NewTokenIssuer(jwtManager *jwtpkg.Manager, sessions *RefreshTokenStore) *TokenIssuer {
	return &TokenIssuer{jwt: jwtManager, sessions: sessions}
}

func (t *TokenIssuer) IssueAccessToken(user *model.User) (string, error) {
	return t.jwt.GenerateAccessToken(user.ID, string(user.Role))
}

// IssueRefreshToken mints a refresh token without persisting it.
func (t *TokenIssuer) IssueRefreshToken(user *model.User) (string, error) {
	token, _, err := t.jwt.GenerateRefreshToken(user.ID)
	return token, err
}

// IssuePair mints both tokens and makes the refresh token the user's only
// live session credential.
func (t *TokenIssuer) IssuePair(ctx context.Context, user *model.User) (*TokenPair, error) {
	refresh, err := t.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := t.sessions.Store(ctx, user.ID, refresh); err != nil {
		return nil, err
	}
	return t.completePair(user, refresh)
}

func (t *TokenIssuer) completePair(user *model.User, refresh string) (*TokenPair, error) {
	access, err := t.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    t.jwt.AccessTokenTTL(),
		RefreshTTL:   t.jwt.RefreshTokenTTL(),
		ExpiresIn:    int64(t.jwt.AccessTokenTTL().Seconds()),
	}, nil
}

// ParseRefreshToken checks the refresh token's signature, expiry and type and
// returns its claims.
func (t *TokenIssuer) ParseRefreshToken(token string) (*jwtpkg.Claims, error) {
	claims, err := t.jwt.ValidateType(token, jwtpkg.TokenTypeRefresh)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	return claims, nil
}

// ParseAccessToken checks the access token's signature, expiry and type.
func (t *TokenIssuer) ParseAccessToken(token string) (*jwtpkg.Claims, error) {
	return t.jwt.ValidateType(token, jwtpkg.TokenTypeAccess)
}

// CookiePolicy decides the attributes of the auth cookies.
type CookiePolicy struct {
	Development bool
	Domain      string
	Path        string
}

func (p CookiePolicy) cookie(name, value string, maxAge int) *http.Cookie {
	path := p.Path
	if path == "" {
		path = "/"
	}
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   p.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !p.Development,
		SameSite: http.SameSiteNoneMode,
	}
	if p.Development {
		c.SameSite = http.SameSiteLaxMode
	}
	return c
}

// SetAuthCookies writes both token cookies; each maxAge matches its token TTL.
func (p CookiePolicy) SetAuthCookies(w http.ResponseWriter, pair *TokenPair) {
	http.SetCookie(w, p.cookie(AccessCookieName, pair.AccessToken, int(pair.AccessTTL.Seconds())))
	http.SetCookie(w, p.cookie(RefreshCookieName, pair.RefreshToken, int(pair.RefreshTTL.Seconds())))
}

// ClearAuthCookies expires both token cookies.
func (p CookiePolicy) ClearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, p.cookie(AccessCookieName, "", -1))
	http.SetCookie(w, p.cookie(RefreshCookieName, "", -1))
}
