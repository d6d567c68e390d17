package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coursehub/platform/internal/service"
	"coursehub/platform/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
	cookies     service.CookiePolicy
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, cookies service.CookiePolicy, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, logger: logger}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PersonalInfoRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Phone string `json:"phone" binding:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	if err := h.authService.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			response.Conflict(c, "email already registered")
		default:
			if !writeError(c, h.logger, err) {
				internalError(c, h.logger, "registration failed", err)
			}
		}
		return
	}

	response.Success(c, gin.H{"email": req.Email, "otp_sent": true})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	if err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOTP):
			response.BadRequest(c, "invalid or expired code")
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.BadRequest(c, "no pending registration for this email")
		default:
			if !writeError(c, h.logger, err) {
				internalError(c, h.logger, "otp verification failed", err)
			}
		}
		return
	}

	response.Success(c, gin.H{"verified": true})
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.BadRequest(c, "no pending registration for this email")
		default:
			if !writeError(c, h.logger, err) {
				internalError(c, h.logger, "otp resend failed", err)
			}
		}
		return
	}

	response.Success(c, gin.H{"otp_sent": true})
}

func (h *AuthHandler) CompleteRegistration(c *gin.Context) {
	var req PersonalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	user, err := h.authService.CompleteRegistration(c.Request.Context(), req.Email, service.PersonalInfo{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotVerified):
			response.BadRequest(c, "email not verified")
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.BadRequest(c, "no pending registration for this email")
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			response.Conflict(c, "email already registered")
		default:
			if !writeError(c, h.logger, err) {
				internalError(c, h.logger, "registration failed", err)
			}
		}
		return
	}

	response.Created(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid credentials")
		case errors.Is(err, service.ErrUserDisabled):
			response.Forbidden(c, "user is disabled")
		default:
			if !writeError(c, h.logger, err) {
				internalError(c, h.logger, "login failed", err)
			}
		}
		return
	}

	h.cookies.SetAuthCookies(c.Writer, pair)
	response.Success(c, gin.H{"user": user, "expires_in": pair.ExpiresIn})
}

// Refresh rotates the refresh token carried in the refreshToken cookie. Any
// failure clears both cookies so the client falls back to a fresh login.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(service.RefreshCookieName)
	if err != nil || token == "" {
		h.cookies.ClearAuthCookies(c.Writer)
		response.Unauthorized(c, "missing refresh token")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid),
			errors.Is(err, service.ErrRefreshTokenReused):
			h.cookies.ClearAuthCookies(c.Writer)
			response.Unauthorized(c, "invalid refresh token")
		case errors.Is(err, service.ErrUserDisabled):
			h.cookies.ClearAuthCookies(c.Writer)
			response.Forbidden(c, "user is disabled")
		default:
			if !writeError(c, h.logger, err) {
				internalError(c, h.logger, "token refresh failed", err)
			}
		}
		return
	}

	h.cookies.SetAuthCookies(c.Writer, pair)
	response.Success(c, pair)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	p, err := principalFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), p.UserID); err != nil {
		if !writeError(c, h.logger, err) {
			internalError(c, h.logger, "logout failed", err)
		}
		return
	}

	h.cookies.ClearAuthCookies(c.Writer)
	response.Success(c, nil)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	p, err := principalFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), p.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			internalError(c, h.logger, "failed to load profile", err)
		}
		return
	}

	response.Success(c, user)
}
