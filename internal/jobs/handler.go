package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobgujarat-backend/internal/shared/server/middleware"
	"jobgujarat-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the jobs service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/categories", h.categories)
	rg.GET("/jobs/:id", h.get)
	rg.POST("/jobs", h.create)
	rg.POST("/jobs/:id/close", h.close)
	rg.GET("/company/jobs", h.listMine)
}

type createJobRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Location      string `json:"location"`
	MonthlySalary int64  `json:"monthlySalary"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	job, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		MonthlySalary: req.MonthlySalary,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "title is required", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "company account required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create job", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, job)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		Category: c.Query("category"),
		Location: c.Query("location"),
		Limit:    parseIntParam(c.Query("limit"), 20),
		Offset:   parseIntParam(c.Query("offset"), 0),
	}

	jobs, err := h.Svc.ListOpen(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list jobs", nil)
		return
	}
	if jobs == nil {
		jobs = []Job{}
	}
	respond.JSON(c, http.StatusOK, jobs)
}

func (h *Handler) categories(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"categories": Categories})
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "job id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch job", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

func (h *Handler) listMine(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	jobs, err := h.Svc.ListByCompany(c.Request.Context(), userID,
		parseIntParam(c.Query("limit"), 20),
		parseIntParam(c.Query("offset"), 0),
	)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list jobs", nil)
		return
	}
	if jobs == nil {
		jobs = []Job{}
	}
	respond.JSON(c, http.StatusOK, jobs)
}

func (h *Handler) close(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	err := h.Svc.Close(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to close job", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"status": StatusClosed})
}

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
