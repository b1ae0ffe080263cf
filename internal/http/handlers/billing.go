package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
	"github.com/yungbote/shadownav-backend/internal/services"
)

type BillingHandler struct {
	log     *logger.Logger
	billing services.BillingService
}

func NewBillingHandler(log *logger.Logger, billing services.BillingService) *BillingHandler {
	return &BillingHandler{log: log.With("handler", "BillingHandler"), billing: billing}
}

func (bh *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	session, err := bh.billing.CreateCheckoutSession(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "id": session.ID, "url": session.URL})
}

// Webhook consumes Stripe events. Signature failures and payload problems
// are client errors; a Stripe fetch failure is reported as 502 so Stripe
// retries the delivery.
func (bh *BillingHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("unreadable body"))
		return
	}
	signature := c.GetHeader("Stripe-Signature")

	if err := bh.billing.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		bh.log.Warn("webhook rejected", "error", err)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
