package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mediguide-api/internal/service"
	"github.com/rs/zerolog"
)

// respondError maps service errors onto status codes and error bodies.
// Unclassified errors are logged and reported as 500 without detail.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var (
		verr     *service.ValidationErrors
		conflict *service.ConflictError
		genErr   *service.GenerationError
		ingErr   *service.IngestionError
	)

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidReaction),
		errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": verr.Errors})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error(), "field": conflict.Field})
	case errors.As(err, &genErr):
		switch genErr.Kind {
		case service.GenerationTimeout:
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "AI provider timed out"})
		case service.GenerationMalformed:
			c.JSON(http.StatusBadGateway, gin.H{"error": "AI provider returned an invalid response"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "AI provider request failed"})
		}
	case errors.As(err, &ingErr):
		if ingErr.Unauthorized {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "drug information API rejected the request",
				"hint":  "check that E_DRUG_API_KEY is a valid, decoded service key",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "drug information API request failed"})
	default:
		log.Error().Err(err).Str("request_id", c.GetString(ctxRequestID)).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// drugID parses the :id path parameter; anything but a positive integer is a 404
func drugID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
