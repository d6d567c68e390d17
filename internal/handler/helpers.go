package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coursehub/platform/internal/handler/middleware"
	"coursehub/platform/internal/service"
	"coursehub/platform/pkg/response"
)

var ErrNoPrincipal = errors.New("principal not found in context")

func principalFromContext(c *gin.Context) (middleware.Principal, error) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return middleware.Principal{}, ErrNoPrincipal
	}
	return p, nil
}

// writeError maps errors shared by every endpoint. It reports false when err
// is not one of them, leaving the response to the caller.
func writeError(c *gin.Context, logger *zap.Logger, err error) bool {
	switch {
	case errors.Is(err, service.ErrRateLimited):
		response.TooManyRequests(c, "too many requests, try again later")
	case errors.Is(err, service.ErrStoreUnavailable):
		logger.Error("state store unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c, "service temporarily unavailable")
	default:
		return false
	}
	return true
}

func internalError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	response.InternalError(c, msg)
}
