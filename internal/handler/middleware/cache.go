package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coursehub/platform/internal/cache"
	"coursehub/platform/internal/metrics"
)

const cacheHeader = "X-Cache"

// VaryFunc returns the part of the cache key that depends on the caller.
type VaryFunc func(c *gin.Context) string

// VaryByRole keys entries by the authenticated caller's role. Use it on
// routes whose output differs per role.
func VaryByRole(c *gin.Context) string {
	if p, ok := PrincipalFromContext(c); ok {
		return "role:" + string(p.Role)
	}
	return "role:anonymous"
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheResponse serves GET requests from rc when possible and memoizes 2xx
// responses for the tier's TTL. Store failures fall through to the handler.
// Concurrent misses on the same key each run the handler.
func CacheResponse(rc *cache.ResponseCache, tier cache.Tier, vary VaryFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		varyKey := ""
		if vary != nil {
			varyKey = vary(c)
		}
		key := cache.Key(c.Request.Method, c.Request.URL.Path, c.Request.URL.Query(), varyKey)
		ctx := c.Request.Context()

		entry, err := rc.Lookup(ctx, key)
		if err != nil {
			metrics.CacheError()
			logger.Warn("cache lookup failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		if entry != nil {
			metrics.CacheHit()
			c.Header(cacheHeader, "HIT")
			contentType := entry.ContentType
			if contentType == "" {
				contentType = "application/json; charset=utf-8"
			}
			c.Data(entry.Status, contentType, entry.Body)
			c.Abort()
			return
		}

		metrics.CacheMiss()
		c.Header(cacheHeader, "MISS")
		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		stored, err := rc.Save(ctx, key, tier, &cache.Entry{
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		})
		if err != nil {
			metrics.CacheError()
			logger.Warn("cache save failed",
				zap.String("path", c.Request.URL.Path), zap.Stringer("tier", tier), zap.Error(err))
			return
		}
		if stored {
			metrics.CacheStore()
		}
	}
}
