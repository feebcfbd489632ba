package applications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobgujarat-backend/internal/shared/server/middleware"
	"jobgujarat-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the applications service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches application routes to the router group.
// The approval-fee route is part of the hire-confirmation flow.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.apply)
	rg.GET("/applications", h.listMine)
	rg.GET("/applications/:id", h.get)
	rg.GET("/applications/:id/approval-fee", h.approvalFee)
	rg.POST("/applications/:id/status", h.advance)
	rg.GET("/jobs/:id/applicants", h.listApplicants)
}

func (h *Handler) apply(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxResumeBytes+1<<20)

	jobID := c.PostForm("jobId")
	if jobID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobId is required", nil)
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read resume file", nil)
		return
	}
	defer file.Close()

	app, err := h.Svc.Apply(c.Request.Context(), userID, jobID, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid input", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrJobClosed):
			respond.Error(c, http.StatusConflict, "job_closed", "job is no longer accepting applications", nil)
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusConflict, "already_applied", "you already applied to this job", nil)
		case errors.Is(err, ErrResumeTooBig):
			respond.Error(c, http.StatusBadRequest, "validation_error", "resume exceeds size limit", nil)
		case errors.Is(err, ErrResumeFormat):
			respond.Error(c, http.StatusBadRequest, "validation_error", "resume must be a PDF or DOCX file", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit application", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, app)
}

func (h *Handler) listMine(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	apps, err := h.Svc.ListBySeeker(c.Request.Context(), userID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list applications", nil)
		return
	}
	if apps == nil {
		apps = []Application{}
	}
	respond.JSON(c, http.StatusOK, apps)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	app, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondLookupError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, app)
}

func (h *Handler) approvalFee(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	quote, err := h.Svc.FeeQuote(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotHired):
			respond.Error(c, http.StatusConflict, "not_hired", "approval fee applies to hired applications only", nil)
		default:
			respondLookupError(c, err)
		}
		return
	}
	respond.JSON(c, http.StatusOK, quote)
}

type advanceRequest struct {
	Status      string `json:"status"`
	ApprovalFee int64  `json:"approvalFee"`
}

func (h *Handler) advance(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	app, err := h.Svc.Advance(c.Request.Context(), userID, c.Param("id"), req.Status, req.ApprovalFee)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadTransition):
			respond.Error(c, http.StatusConflict, "invalid_transition", "status transition not allowed", nil)
		default:
			respondLookupError(c, err)
		}
		return
	}
	respond.JSON(c, http.StatusOK, app)
}

func (h *Handler) listApplicants(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	apps, err := h.Svc.ListApplicants(c.Request.Context(), userID, c.Param("id"), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		respondLookupError(c, err)
		return
	}
	if apps == nil {
		apps = []Application{}
	}
	respond.JSON(c, http.StatusOK, apps)
}

func respondLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid input", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "request failed", nil)
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
