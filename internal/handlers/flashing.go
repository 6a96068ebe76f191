package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yarff/flashing-backend/internal/geometry"
	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/requestdata"
	"github.com/yarff/flashing-backend/internal/services"
)

type FlashingHandler struct {
	log             *logger.Logger
	flashingService services.FlashingService
}

func NewFlashingHandler(log *logger.Logger, flashingService services.FlashingService) *FlashingHandler {
	return &FlashingHandler{
		log:             log.With("handler", "FlashingHandler"),
		flashingService: flashingService,
	}
}

// POST /flashings
func (h *FlashingHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	flashing, err := h.flashingService.CreateFlashing(c.Request.Context(), rd.ClientID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "flashing_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"flashing": flashing})
}

// GET /flashings
func (h *FlashingHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	quotes, err := h.flashingService.ListFlashings(c.Request.Context(), rd.ClientID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "flashing_list_failed", err)
		return
	}
	views := make([]gin.H, 0, len(quotes))
	for _, q := range quotes {
		views = append(views, flashingQuoteView(q))
	}
	RespondOK(c, gin.H{"flashings": views})
}

// GET /flashings/:id
func (h *FlashingHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	flashingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_flashing_id", err)
		return
	}
	quote, err := h.flashingService.GetFlashing(c.Request.Context(), rd.ClientID, flashingID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "flashing_not_found", err)
		return
	}
	RespondOK(c, flashingQuoteView(quote))
}

// PUT /flashings/:id/geometry
func (h *FlashingHandler) UpdateGeometry(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	flashingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_flashing_id", err)
		return
	}
	var body struct {
		Nodes []geometry.Node `json:"nodes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request_body", err)
		return
	}
	quote, err := h.flashingService.UpdateGeometry(c.Request.Context(), rd.ClientID, flashingID, body.Nodes)
	if err != nil {
		var verr *geometry.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{
				"message": verr.Msg,
				"code":    verr.Rule,
			}})
			return
		}
		RespondError(c, http.StatusBadRequest, "geometry_update_failed", err)
		return
	}
	RespondOK(c, flashingQuoteView(quote))
}

// PATCH /flashings/:id
func (h *FlashingHandler) UpdateOptions(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	flashingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_flashing_id", err)
		return
	}
	var opts services.FlashingOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request_body", err)
		return
	}
	quote, err := h.flashingService.UpdateOptions(c.Request.Context(), rd.ClientID, flashingID, opts)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "flashing_update_failed", err)
		return
	}
	RespondOK(c, flashingQuoteView(quote))
}

// DELETE /flashings/:id
func (h *FlashingHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	flashingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_flashing_id", err)
		return
	}
	if err := h.flashingService.DeleteFlashing(c.Request.Context(), rd.ClientID, flashingID); err != nil {
		RespondError(c, http.StatusBadRequest, "flashing_delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /flashings/:id/specifications
func (h *FlashingHandler) AddSpecification(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	flashingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_flashing_id", err)
		return
	}
	var body struct {
		Quantity int     `json:"quantity"`
		LengthMM float64 `json:"length"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request_body", err)
		return
	}
	quote, err := h.flashingService.AddSpecification(c.Request.Context(), rd.ClientID, flashingID, body.Quantity, body.LengthMM)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "specification_add_failed", err)
		return
	}
	RespondOK(c, flashingQuoteView(quote))
}

// PUT /specifications/:id
func (h *FlashingHandler) UpdateSpecification(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	specID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_specification_id", err)
		return
	}
	var body struct {
		Quantity int     `json:"quantity"`
		LengthMM float64 `json:"length"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request_body", err)
		return
	}
	quote, err := h.flashingService.UpdateSpecification(c.Request.Context(), rd.ClientID, specID, body.Quantity, body.LengthMM)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "specification_update_failed", err)
		return
	}
	RespondOK(c, flashingQuoteView(quote))
}

// DELETE /specifications/:id
func (h *FlashingHandler) DeleteSpecification(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	specID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_specification_id", err)
		return
	}
	quote, err := h.flashingService.DeleteSpecification(c.Request.Context(), rd.ClientID, specID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "specification_delete_failed", err)
		return
	}
	RespondOK(c, flashingQuoteView(quote))
}
