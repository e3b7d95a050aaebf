package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/service"
	"github.com/rs/zerolog"
)

// AIHandler handles the endpoints backed by the generation providers
type AIHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(services *service.Services, log zerolog.Logger) *AIHandler {
	return &AIHandler{
		services: services,
		log:      log.With().Str("handler", "ai").Logger(),
	}
}

// Summary handles GET /v1/drugs/:id/ai-summary
func (h *AIHandler) Summary(c *gin.Context) {
	id, ok := drugID(c)
	if !ok {
		return
	}

	summary, err := h.services.Summary.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Image handles POST /v1/drugs/:id/ai-image
func (h *AIHandler) Image(c *gin.Context) {
	id, ok := drugID(c)
	if !ok {
		return
	}

	img, err := h.services.Image.Generate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

// SearchBySymptoms handles POST /v1/drugs/ai-search
func (h *AIHandler) SearchBySymptoms(c *gin.Context) {
	var req models.SymptomSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.services.Drug.SearchBySymptoms(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
