package handlers

import (
	"errors"
	"net/http"

	"progress-service/internal/engine"

	"github.com/gin-gonic/gin"
)

// writeError maps engine errors to HTTP responses. Generation failures get
// a retry-safe message instead of raw internals; limit and resubmit errors
// carry the details the learner needs to see.
func writeError(c *gin.Context, err error) {
	var vErr *engine.ValidationError
	var genErr *engine.GenerationError
	var subErr *engine.AlreadySubmittedError
	var limErr *engine.AttemptLimitError

	switch {
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.As(err, &subErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Attempt already submitted",
			"score": subErr.Score,
		})
	case errors.As(err, &limErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":         "Attempt limit reached",
			"attempt_limit": limErr.Limit,
		})
	case errors.As(err, &genErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Question generation failed, please try again",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func learnerID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}
