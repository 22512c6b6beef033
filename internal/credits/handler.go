package credits

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"upfolio-backend/internal/shared/server/middleware"
	"upfolio-backend/internal/shared/server/respond"
)

// Handler exposes the credit balance and the administrative grant endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the balance route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/credits", h.balance)
}

// RegisterAdminRoutes attaches administrative routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/credits/grant", h.grant)
}

func (h *Handler) balance(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	a, err := h.Svc.BalanceOf(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load credit balance", nil)
		return
	}
	respond.OK(c, a)
}

type grantRequest struct {
	UserID string `json:"userId"`
	Amount int    `json:"amount"`
}

func (h *Handler) grant(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "userId is required", nil)
		return
	}

	a, err := h.Svc.Grant(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to grant credits", nil)
		return
	}
	respond.OK(c, a)
}
