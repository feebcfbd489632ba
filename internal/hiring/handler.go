package hiring

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobgujarat-backend/internal/aadhaar"
	"jobgujarat-backend/internal/applications"
	"jobgujarat-backend/internal/shared/server/middleware"
	"jobgujarat-backend/internal/shared/server/respond"
)

// Handler exposes the hire-confirmation endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the approval flow routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/applications/check-aadhaar", h.checkAadhaar)
	rg.POST("/applications/upload-aadhaar", h.uploadAadhaar)
	rg.POST("/payments/create-approval-order", h.createOrder)
	rg.POST("/payments/verify-approval-payment", h.verifyPayment)
}

func (h *Handler) checkAadhaar(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	pair, has, err := h.Svc.CheckAadhaar(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to check documents", nil)
		return
	}
	if !has {
		respond.JSON(c, http.StatusOK, gin.H{"hasAadhaar": false})
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"hasAadhaar":  true,
		"aadhaarUrls": pair,
	})
}

func (h *Handler) uploadAadhaar(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*aadhaar.MaxImageBytes+1<<20)

	applicationID := c.PostForm("applicationId")
	if applicationID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "applicationId is required", nil)
		return
	}

	front, frontClose, err := formImage(c, "front")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "front image is required", nil)
		return
	}
	defer frontClose()

	back, backClose, err := formImage(c, "back")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "back image is required", nil)
		return
	}
	defer backClose()

	app, pair, err := h.Svc.SubmitDocuments(c.Request.Context(), userID, applicationID, front, back)
	if err != nil {
		switch {
		case errors.Is(err, aadhaar.ErrImageTooBig):
			respond.Error(c, http.StatusBadRequest, "validation_error", "each image must be 3MB or smaller", nil)
		case errors.Is(err, aadhaar.ErrImageFormat):
			respond.Error(c, http.StatusBadRequest, "validation_error", "images must be JPEG or PNG", nil)
		case errors.Is(err, aadhaar.ErrImageMissing):
			respond.Error(c, http.StatusBadRequest, "validation_error", "both images are required", nil)
		case errors.Is(err, ErrPaymentPending):
			respond.Error(c, http.StatusConflict, "payment_pending", "approval fee payment not confirmed", nil)
		case errors.Is(err, ErrIntentFailed):
			respond.Error(c, http.StatusConflict, "approval_failed", "payment verification failed; restart the approval flow", nil)
		case errors.Is(err, ErrForbidden), errors.Is(err, applications.ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		case errors.Is(err, applications.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload documents", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"application": app,
		"aadhaarUrls": pair,
	})
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	ApplicationID  string `json:"applicationId"`
	PaymentType    string `json:"paymentType"`
	IdempotencyKey string `json:"idempotencyKey"`
}

func (h *Handler) createOrder(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	order, err := h.Svc.CreateOrder(c.Request.Context(), userID, req.ApplicationID, req.IdempotencyKey, req.Amount, req.Currency, req.PaymentType)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "applicationId is required", nil)
		case errors.Is(err, ErrAmountMismatch):
			respond.Error(c, http.StatusBadRequest, "amount_mismatch", "amount does not match the approval fee", nil)
		case errors.Is(err, applications.ErrNotHired):
			respond.Error(c, http.StatusConflict, "not_hired", "approval fee applies to hired applications only", nil)
		case errors.Is(err, applications.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		case errors.Is(err, ErrForbidden), errors.Is(err, applications.ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusConflict, "duplicate_request", "an order for this request is already in progress", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "gateway_error", "failed to create payment order", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, order)
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	ApplicationID     string `json:"applicationId"`
}

func (h *Handler) verifyPayment(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	err := h.Svc.ConfirmPayment(c.Request.Context(), userID, req.ApplicationID, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		switch {
		case errors.Is(err, ErrVerificationFailed):
			respond.Error(c, http.StatusBadRequest, "verification_failed", "payment signature verification failed", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "order and payment ids are required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "payment order not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		case errors.Is(err, ErrIntentFailed):
			respond.Error(c, http.StatusConflict, "approval_failed", "approval attempt already failed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to verify payment", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"ok": true})
}

func formImage(c *gin.Context, field string) (aadhaar.ImageUpload, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return aadhaar.ImageUpload{}, func() {}, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return aadhaar.ImageUpload{}, func() {}, err
	}
	return aadhaar.ImageUpload{
		FileName: fileHeader.Filename,
		Mime:     fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Body:     file,
	}, func() { closeFile(file) }, nil
}

func closeFile(file multipart.File) {
	_ = file.Close()
}
