package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/requestdata"
	"github.com/yarff/flashing-backend/internal/services"
)

type OrderHandler struct {
	log          *logger.Logger
	orderService services.OrderService
}

func NewOrderHandler(log *logger.Logger, orderService services.OrderService) *OrderHandler {
	return &OrderHandler{
		log:          log.With("handler", "OrderHandler"),
		orderService: orderService,
	}
}

// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	orders, err := h.orderService.ListOrders(c.Request.Context(), rd.ClientID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "order_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"orders": orders})
}

// GET /orders/:code
func (h *OrderHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	order, err := h.orderService.GetOrder(c.Request.Context(), rd.ClientID, c.Param("code"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "order_not_found", err)
		return
	}
	RespondOK(c, gin.H{"order": order})
}
