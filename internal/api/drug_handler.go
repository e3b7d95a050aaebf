package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/service"
	"github.com/rs/zerolog"
)

// DrugHandler handles catalog read endpoints and comments
type DrugHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDrugHandler creates a new DrugHandler
func NewDrugHandler(services *service.Services, log zerolog.Logger) *DrugHandler {
	return &DrugHandler{
		services: services,
		log:      log.With().Str("handler", "drug").Logger(),
	}
}

// List handles GET /v1/drugs?search=...&order=default|helpful|rating
func (h *DrugHandler) List(c *gin.Context) {
	var q models.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	drugs, err := h.services.Drug.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, drugs)
}

// Detail handles GET /v1/drugs/:id
func (h *DrugHandler) Detail(c *gin.Context) {
	id, ok := drugID(c)
	if !ok {
		return
	}

	detail, err := h.services.Drug.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Popular handles GET /v1/drugs/popular?limit=N
func (h *DrugHandler) Popular(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	drugs, err := h.services.Drug.Popular(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, drugs)
}

// CreateComment handles POST /v1/drugs/:id/comments
func (h *DrugHandler) CreateComment(c *gin.Context) {
	id, ok := drugID(c)
	if !ok {
		return
	}

	var input models.CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.services.Comment.Create(c.Request.Context(), id, c.GetString(ctxUserID), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
