package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/requestdata"
	"github.com/yarff/flashing-backend/internal/services"
)

type CartHandler struct {
	log         *logger.Logger
	cartService services.CartService
}

func NewCartHandler(log *logger.Logger, cartService services.CartService) *CartHandler {
	return &CartHandler{
		log:         log.With("handler", "CartHandler"),
		cartService: cartService,
	}
}

// GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	quote, err := h.cartService.GetCart(c.Request.Context(), rd.ClientID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "cart_load_failed", err)
		return
	}
	RespondOK(c, cartQuoteView(quote))
}

// PUT /cart/address
func (h *CartHandler) SetAddress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var body struct {
		AddressID uuid.UUID `json:"address_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request_body", err)
		return
	}
	quote, err := h.cartService.SetDeliveryAddress(c.Request.Context(), rd.ClientID, body.AddressID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "cart_set_address_failed", err)
		return
	}
	RespondOK(c, cartQuoteView(quote))
}

// PUT /cart/pickup
func (h *CartHandler) SetPickup(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var body struct {
		JobReferenceID uuid.UUID `json:"job_reference_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request_body", err)
		return
	}
	quote, err := h.cartService.SetPickup(c.Request.Context(), rd.ClientID, body.JobReferenceID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "cart_set_pickup_failed", err)
		return
	}
	RespondOK(c, cartQuoteView(quote))
}

// PUT /cart/date
func (h *CartHandler) SetDate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var body struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request_body", err)
		return
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_date", err)
		return
	}
	quote, err := h.cartService.SetDeliveryDate(c.Request.Context(), rd.ClientID, date)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "cart_set_date_failed", err)
		return
	}
	RespondOK(c, cartQuoteView(quote))
}

// GET /cart/earliest-date
func (h *CartHandler) EarliestDate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	earliest, err := h.cartService.EarliestDate(c.Request.Context(), rd.ClientID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "earliest_date_failed", err)
		return
	}
	RespondOK(c, gin.H{"earliest_date": earliest.Format("2006-01-02")})
}

// DELETE /cart/flashings/:id
func (h *CartHandler) RemoveFlashing(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	flashingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_flashing_id", err)
		return
	}
	quote, err := h.cartService.RemoveFlashing(c.Request.Context(), rd.ClientID, flashingID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "cart_remove_failed", err)
		return
	}
	RespondOK(c, cartQuoteView(quote))
}
