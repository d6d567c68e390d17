package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub/platform/internal/model"
)

// RequireCapability admits callers whose role grants cap.
// Must run after Authenticate.
func RequireCapability(cp model.Capability) Stage {
	return func(c *gin.Context) *StageError {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return Reject(http.StatusUnauthorized, "missing authentication")
		}
		if !p.Role.Can(cp) {
			return Reject(http.StatusForbidden, "insufficient permissions")
		}
		return nil
	}
}

// RequireRole admits callers whose role is in the allow-list.
func RequireRole(roles ...model.Role) Stage {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) *StageError {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return Reject(http.StatusUnauthorized, "missing authentication")
		}
		if _, ok := allowed[p.Role]; !ok {
			return Reject(http.StatusForbidden, "admin access required")
		}
		return nil
	}
}
