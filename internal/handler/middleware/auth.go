package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coursehub/platform/internal/model"
	jwtpkg "coursehub/platform/pkg/jwt"
)

const (
	ContextKeyPrincipal = "principal"

	accessCookieName = "accessToken"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   model.Role
}

// AccessTokenParser validates an access token by signature and expiry.
type AccessTokenParser interface {
	ParseAccessToken(token string) (*jwtpkg.Claims, error)
}

// Authenticate reads the access token from the accessToken cookie, falling
// back to an Authorization: Bearer header, and attaches the Principal.
// No store lookup is made.
func Authenticate(parser AccessTokenParser) Stage {
	return func(c *gin.Context) *StageError {
		token := accessToken(c)
		if token == "" {
			return Reject(http.StatusUnauthorized, "missing access token")
		}

		claims, err := parser.ParseAccessToken(token)
		if err != nil {
			return Reject(http.StatusUnauthorized, "invalid or expired token")
		}

		userID, err := claims.UserID()
		if err != nil {
			return Reject(http.StatusUnauthorized, "invalid token subject")
		}
		role, err := model.ParseRole(claims.Role)
		if err != nil {
			return Reject(http.StatusUnauthorized, "invalid token role")
		}

		c.Set(ContextKeyPrincipal, Principal{UserID: userID, Role: role})
		return nil
	}
}

// AuthGuard rejects requests without a valid access token.
func AuthGuard(parser AccessTokenParser) gin.HandlerFunc {
	return Pipeline(Authenticate(parser))
}

func accessToken(c *gin.Context) string {
	if v, err := c.Cookie(accessCookieName); err == nil && v != "" {
		return v
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// PrincipalFromContext returns the caller attached by Authenticate.
func PrincipalFromContext(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(ContextKeyPrincipal)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
