package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediguide-api/internal/service"
	"github.com/rs/zerolog"
)

// CatalogHandler handles on-demand ingestion from the drug information API
type CatalogHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(services *service.Services, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		services: services,
		log:      log.With().Str("handler", "catalog").Logger(),
	}
}

// SaveByName handles GET /v1/drugs/save?name=...
func (h *CatalogHandler) SaveByName(c *gin.Context) {
	result, err := h.services.Catalog.SaveByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
