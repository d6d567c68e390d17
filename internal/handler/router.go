package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"coursehub/platform/internal/cache"
	"coursehub/platform/internal/config"
	"coursehub/platform/internal/handler/middleware"
	"coursehub/platform/internal/model"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	tokens middleware.AccessTokenParser,
	responseCache *cache.ResponseCache,
	authLimiter *middleware.IPRateLimiter,
	authHandler *AuthHandler,
	courseHandler *CourseHandler,
	enquiryHandler *EnquiryHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticate := middleware.Authenticate(tokens)

	// Public auth routes
	public := r.Group("/auth")
	if authLimiter != nil {
		public.Use(authLimiter.Limit())
	}
	{
		public.POST("/register", authHandler.Register)
		public.POST("/register/verify-otp", authHandler.VerifyOTP)
		public.POST("/register/resend-otp", authHandler.ResendOTP)
		public.POST("/register/personal", authHandler.CompleteRegistration)
		public.POST("/login", authHandler.Login)
		public.POST("/refresh-token", authHandler.Refresh)
	}

	// Authenticated auth routes
	session := r.Group("/auth")
	{
		session.POST("/logout", middleware.Pipeline(authenticate), authHandler.Logout)
		session.GET("/profile",
			middleware.Pipeline(authenticate, middleware.RequireCapability(model.CapProfileRead)),
			authHandler.Profile)
	}

	courses := r.Group("/courses")
	{
		courses.GET("", middleware.CacheResponse(responseCache, cache.Short, nil, logger), courseHandler.List)
		courses.GET("/:id", middleware.CacheResponse(responseCache, cache.Medium, nil, logger), courseHandler.Get)
		courses.POST("",
			middleware.Pipeline(authenticate, middleware.RequireCapability(model.CapCoursesManage)),
			courseHandler.Create)
	}

	enquiries := r.Group("/enquiries")
	{
		enquiries.POST("", enquiryHandler.Submit)
		enquiries.GET("",
			middleware.Pipeline(authenticate, middleware.RequireCapability(model.CapEnquiriesRead)),
			middleware.CacheResponse(responseCache, cache.Short, middleware.VaryByRole, logger),
			enquiryHandler.List)
	}

	return r
}
