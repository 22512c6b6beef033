package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"upfolio-backend/internal/ratelimit"
	"upfolio-backend/internal/shared/server/middleware"
	"upfolio-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc     *Service
	Limiter *ratelimit.Limiter
}

func NewHandler(svc *Service, limiter *ratelimit.Limiter) *Handler {
	return &Handler{Svc: svc, Limiter: limiter}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/account", middleware.RateLimit(h.Limiter, "ACCOUNT_DELETE"), h.deleteAccount)
}

func (h *Handler) deleteAccount(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}

	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	result, err := h.Svc.Delete(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete account", nil)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}
