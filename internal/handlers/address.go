package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/requestdata"
	"github.com/yarff/flashing-backend/internal/services"
)

type AddressHandler struct {
	log            *logger.Logger
	addressService services.AddressService
}

func NewAddressHandler(log *logger.Logger, addressService services.AddressService) *AddressHandler {
	return &AddressHandler{
		log:            log.With("handler", "AddressHandler"),
		addressService: addressService,
	}
}

// GET /job-references
func (h *AddressHandler) ListJobReferences(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	refs, err := h.addressService.ListJobReferences(c.Request.Context(), rd.ClientID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "job_reference_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"job_references": refs})
}

// DELETE /job-references/:id
func (h *AddressHandler) DeleteJobReference(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	refID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_job_reference_id", err)
		return
	}
	if err := h.addressService.DeleteJobReference(c.Request.Context(), rd.ClientID, refID); err != nil {
		RespondError(c, http.StatusBadRequest, "job_reference_delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /job-references/:id/addresses
func (h *AddressHandler) AddAddress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	refID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_job_reference_id", err)
		return
	}
	var input services.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request_body", err)
		return
	}
	addr, err := h.addressService.AddAddress(c.Request.Context(), rd.ClientID, refID, input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "address_add_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"address": addr})
}

// GET /addresses/:id/delivery-method?weight_kg=12.5
func (h *AddressHandler) BestDeliveryMethod(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_address_id", err)
		return
	}
	weight, err := strconv.ParseFloat(c.DefaultQuery("weight_kg", "0"), 64)
	if err != nil || weight < 0 {
		RespondError(c, http.StatusBadRequest, "bad_weight", fmt.Errorf("weight_kg must be a non-negative number"))
		return
	}

	method, err := h.addressService.BestDeliveryMethod(c.Request.Context(), rd.ClientID, addressID, weight)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "delivery_method_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"delivery_method": method})
}

// GET /job-reference-draft
func (h *AddressHandler) GetDraft(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	draft, err := h.addressService.GetDraft(c.Request.Context(), rd.ClientID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "draft_load_failed", err)
		return
	}
	RespondOK(c, gin.H{"draft": draft})
}

// PATCH /job-reference-draft
func (h *AddressHandler) UpdateDraft(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var input services.DraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request_body", err)
		return
	}
	draft, err := h.addressService.UpdateDraft(c.Request.Context(), rd.ClientID, input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "draft_update_failed", err)
		return
	}
	RespondOK(c, gin.H{"draft": draft})
}

// POST /job-reference-draft/commit
func (h *AddressHandler) CommitDraft(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	ref, err := h.addressService.CommitDraft(c.Request.Context(), rd.ClientID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "draft_commit_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job_reference": ref})
}
