package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"upfolio-backend/internal/credits"
	"upfolio-backend/internal/llm"
	"upfolio-backend/internal/resumes"
	"upfolio-backend/internal/shared/server/middleware"
	"upfolio-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assistant routes to an authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assistant/job-fit", h.jobFit)
	rg.POST("/assistant/cover-letter", h.coverLetter)
	rg.POST("/assistant/tailored-resume", h.tailoredResume)
}

type assistantRequest struct {
	JobDescription string `json:"jobDescription"`
}

func (h *Handler) jobFit(c *gin.Context) {
	userID, jobDescription, ok := h.bind(c)
	if !ok {
		return
	}
	result, debit, err := h.Svc.JobFit(c.Request.Context(), userID, jobDescription)
	if err != nil {
		respondAssistantError(c, err, debit, "failed to analyze job fit")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"analysis": result,
		"cost":     debit.Cost,
		"balance":  debit.Balance,
	})
}

func (h *Handler) coverLetter(c *gin.Context) {
	userID, jobDescription, ok := h.bind(c)
	if !ok {
		return
	}
	result, debit, err := h.Svc.CoverLetter(c.Request.Context(), userID, jobDescription)
	if err != nil {
		respondAssistantError(c, err, debit, "failed to generate cover letter")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"coverLetter": result.CoverLetter,
		"cost":        debit.Cost,
		"balance":     debit.Balance,
	})
}

func (h *Handler) tailoredResume(c *gin.Context) {
	userID, jobDescription, ok := h.bind(c)
	if !ok {
		return
	}
	content, debit, err := h.Svc.TailoredResume(c.Request.Context(), userID, jobDescription)
	if err != nil {
		respondAssistantError(c, err, debit, "failed to tailor resume")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"content": content,
		"cost":    debit.Cost,
		"balance": debit.Balance,
	})
}

func (h *Handler) bind(c *gin.Context) (userID, jobDescription string, ok bool) {
	userID = middleware.UserIDFromContext(c)
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return "", "", false
	}
	return userID, req.JobDescription, true
}

func respondAssistantError(c *gin.Context, err error, debit credits.DebitResult, failMsg string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNoResume):
		respond.Error(c, http.StatusNotFound, "no_resume", "upload a resume before using the assistant", nil)
	case errors.Is(err, ErrInsufficientCredits):
		respond.Error(c, http.StatusPaymentRequired, "insufficient_credits", "not enough credits for this feature", gin.H{
			"cost":    debit.Cost,
			"balance": debit.Balance,
		})
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "AI assistant is not configured", nil)
	case errors.Is(err, resumes.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", failMsg, nil)
	}
}
