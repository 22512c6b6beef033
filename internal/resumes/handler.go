package resumes

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"upfolio-backend/internal/shared/server/middleware"
	"upfolio-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume version routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.edit)
	rg.POST("/resumes/:id/publish", h.publish)
	rg.POST("/resumes/:id/unpublish", h.unpublish)
	rg.POST("/resumes/:id/archive", h.archive)
	rg.POST("/resumes/:id/unarchive", h.unarchive)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	v, err := h.Svc.CreateFromUpload(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "upload_failed", "failed to process resume", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(v))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	versions, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resume versions", nil)
		return
	}
	out := make([]VersionSummary, 0, len(versions))
	for _, v := range versions {
		out = append(out, toSummary(v))
	}
	respond.JSON(c, http.StatusOK, gin.H{"versions": out})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	v, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondVersionError(c, err, "failed to load resume version")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(v))
}

func (h *Handler) edit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var content Content
	if err := c.ShouldBindJSON(&content); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	v, err := h.Svc.Edit(c.Request.Context(), userID, c.Param("id"), content)
	if err != nil {
		respondVersionError(c, err, "failed to update resume version")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(v))
}

func (h *Handler) publish(c *gin.Context) {
	h.transition(c, h.Svc.Publish, "failed to publish resume version")
}

func (h *Handler) unpublish(c *gin.Context) {
	h.transition(c, h.Svc.Unpublish, "failed to unpublish resume version")
}

func (h *Handler) archive(c *gin.Context) {
	h.transition(c, h.Svc.Archive, "failed to archive resume version")
}

func (h *Handler) unarchive(c *gin.Context) {
	h.transition(c, h.Svc.Unarchive, "failed to unarchive resume version")
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, userID, versionID string) (Version, error), failMsg string) {
	userID := middleware.UserIDFromContext(c)
	v, err := op(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondVersionError(c, err, failMsg)
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(v))
}

func respondVersionError(c *gin.Context, err error, failMsg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume version not found", nil)
	case errors.Is(err, ErrNotOwner):
		respond.Error(c, http.StatusForbidden, "forbidden", "resume version belongs to another user", nil)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, "invalid_transition", "a published version cannot be archived", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", failMsg, nil)
	}
}
