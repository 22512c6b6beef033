package portfolio

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"upfolio-backend/internal/shared/server/middleware"
	"upfolio-backend/internal/shared/server/respond"
)

// Handler serves the public portfolio page.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the public portfolio route. The group must carry
// OptionalAuth so owners get their preview.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/p/:username", h.view)
}

func (h *Handler) view(c *gin.Context) {
	viewerID := middleware.UserIDFromContext(c)
	view, err := h.Svc.Resolve(c.Request.Context(), c.Param("username"), viewerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "portfolio not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load portfolio", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"username":    view.Username,
		"fullName":    view.FullName,
		"content":     view.Content,
		"publishedAt": view.PublishedAt,
	})
}
