package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"upfolio-backend/internal/ratelimit"
	sharedauth "upfolio-backend/internal/shared/auth"
	"upfolio-backend/internal/shared/server/middleware"
	"upfolio-backend/internal/shared/server/respond"
	"upfolio-backend/internal/users"
)

// Handler wires HTTP handlers to the auth service. Each sensitive endpoint
// sits behind its named rate-limit policy.
type Handler struct {
	Svc     *Service
	Limiter *ratelimit.Limiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, limiter *ratelimit.Limiter) *Handler {
	return &Handler{Svc: svc, Limiter: limiter}
}

// RegisterRoutes attaches the unauthenticated auth routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", middleware.RateLimit(h.Limiter, "REGISTRATION"), h.register)
	rg.POST("/auth/login", middleware.RateLimit(h.Limiter, "LOGIN"), h.login)
	rg.POST("/auth/password-reset/request", middleware.RateLimit(h.Limiter, "PASSWORD_RESET"), h.requestPasswordReset)
	rg.POST("/auth/password-reset/confirm", middleware.RateLimit(h.Limiter, "PASSWORD_RESET"), h.confirmPasswordReset)
	rg.POST("/auth/email-verify/confirm", middleware.RateLimit(h.Limiter, "EMAIL_VERIFY"), h.confirmEmailVerify)
}

// RegisterProtectedRoutes attaches auth routes that require a session.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/email-verify/request", middleware.RateLimit(h.Limiter, "EMAIL_VERIFY"), h.requestEmailVerify)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	u, token, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail),
			errors.Is(err, sharedauth.ErrPasswordTooShort),
			errors.Is(err, sharedauth.ErrPasswordTooLong):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, users.ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "an account with this email already exists", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{"token": token, "user": u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"token": token, "user": u})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) requestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to request password reset", nil)
		return
	}
	// Same response whether or not the email exists.
	respond.JSON(c, http.StatusAccepted, gin.H{"status": "ok"})
}

type confirmResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) confirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenInvalid):
			respond.Error(c, http.StatusBadRequest, "invalid_token", "token invalid or expired", nil)
		case errors.Is(err, sharedauth.ErrPasswordTooShort), errors.Is(err, sharedauth.ErrPasswordTooLong):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset password", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) requestEmailVerify(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.RequestEmailVerification(c.Request.Context(), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to request verification", nil)
		return
	}
	respond.JSON(c, http.StatusAccepted, gin.H{"status": "ok"})
}

type confirmVerifyRequest struct {
	Token string `json:"token"`
}

func (h *Handler) confirmEmailVerify(c *gin.Context) {
	var req confirmVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, ErrTokenInvalid) {
			respond.Error(c, http.StatusBadRequest, "invalid_token", "token invalid or expired", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to verify email", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}
