package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/requestdata"
	"github.com/yarff/flashing-backend/internal/services"
)

type CatalogHandler struct {
	log            *logger.Logger
	catalogService services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:            log.With("handler", "CatalogHandler"),
		catalogService: catalogService,
	}
}

// GET /factory
func (h *CatalogHandler) GetFactory(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	factory, err := h.catalogService.GetFactory(c.Request.Context(), rd.FactoryID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "factory_not_found", err)
		return
	}
	RespondOK(c, gin.H{"factory": factory})
}

// GET /materials
func (h *CatalogHandler) ListMaterials(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	materials, err := h.catalogService.ListMaterials(c.Request.Context(), rd.FactoryID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "material_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"materials": materials})
}

// GET /delivery-methods
func (h *CatalogHandler) ListDeliveryMethods(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	methods, err := h.catalogService.ListDeliveryMethods(c.Request.Context(), rd.FactoryID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delivery_method_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"delivery_methods": methods})
}
