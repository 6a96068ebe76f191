package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/requestdata"
	"github.com/yarff/flashing-backend/internal/services"
)

type CheckoutHandler struct {
	log             *logger.Logger
	checkoutService services.CheckoutService
}

func NewCheckoutHandler(log *logger.Logger, checkoutService services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		log:             log.With("handler", "CheckoutHandler"),
		checkoutService: checkoutService,
	}
}

// POST /checkout
func (h *CheckoutHandler) RequestPayment(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	session, err := h.checkoutService.RequestPayment(c.Request.Context(), rd.ClientID)
	if err != nil {
		if errors.Is(err, services.ErrCartIncomplete) {
			RespondError(c, http.StatusConflict, "cart_incomplete", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "checkout_failed", err)
		return
	}
	RespondOK(c, gin.H{
		"session_id":   session.ID,
		"checkout_url": session.URL,
	})
}

// POST /payments/webhook
//
// The provider retries delivery until it sees 2xx, so confirmation must be
// idempotent end to end.
func (h *CheckoutHandler) PaymentWebhook(c *gin.Context) {
	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID string `json:"id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := c.ShouldBindJSON(&event); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_webhook_body", err)
		return
	}
	if event.Type != "checkout.session.completed" {
		c.Status(http.StatusOK)
		return
	}

	order, err := h.checkoutService.ConfirmPayment(c.Request.Context(), event.Data.Object.ID)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotCaptured) {
			RespondError(c, http.StatusConflict, "payment_not_captured", err)
			return
		}
		h.log.Error("Webhook confirmation failed", "session_id", event.Data.Object.ID, "error", err)
		RespondError(c, http.StatusInternalServerError, "confirmation_failed", err)
		return
	}
	RespondOK(c, gin.H{"order_code": order.Code})
}
