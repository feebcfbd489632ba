package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobgujarat-backend/internal/shared/server/respond"
)

// Handler serves gateway configuration to the checkout frontend.
type Handler struct {
	PublishableKey string
}

func NewHandler(publishableKey string) *Handler {
	return &Handler{PublishableKey: publishableKey}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/key", h.key)
}

// key returns the publishable key the checkout widget embeds. The secret key
// never leaves the server.
func (h *Handler) key(c *gin.Context) {
	if h.PublishableKey == "" {
		respond.Error(c, http.StatusServiceUnavailable, "payments_not_configured", "payment gateway not configured", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"key": h.PublishableKey})
}
