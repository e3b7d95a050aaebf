package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/service"
	"github.com/rs/zerolog"
)

// ReactionHandler handles helpful/unhelpful reactions
type ReactionHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(services *service.Services, log zerolog.Logger) *ReactionHandler {
	return &ReactionHandler{
		services: services,
		log:      log.With().Str("handler", "reaction").Logger(),
	}
}

// Tally handles GET /v1/drugs/:id/reactions
func (h *ReactionHandler) Tally(c *gin.Context) {
	id, ok := drugID(c)
	if !ok {
		return
	}

	tally, err := h.services.Reaction.Tally(c.Request.Context(), id, c.GetString(ctxUserID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}

// Toggle handles POST /v1/drugs/:id/reactions with {"reaction": "helpful"|"unhelpful"|null}.
// Setting a reaction returns it; clearing returns 204.
func (h *ReactionHandler) Toggle(c *gin.Context) {
	id, ok := drugID(c)
	if !ok {
		return
	}

	var req models.ReactionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidReaction.Error()})
			return
		}
	}

	reaction, err := h.services.Reaction.Toggle(c.Request.Context(), id, c.GetString(ctxUserID), req.Reaction)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if reaction == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, reaction)
}
