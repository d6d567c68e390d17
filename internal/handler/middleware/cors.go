package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"coursehub/platform/internal/config"
)

// CORS applies the configured cross-origin policy. A "*" origin opens the
// API to every origin; config validation forbids pairing it with credentials.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsOptions(cfg))
}

func corsOptions(cfg config.CORSConfig) cors.Config {
	opts := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if cfg.AllowsAnyOrigin() {
		opts.AllowAllOrigins = true
	} else {
		opts.AllowOrigins = cfg.AllowedOrigins
	}
	return opts
}
