package handlers

import (
	"context"
	"net/http"

	"progress-service/internal/service"

	"github.com/gin-gonic/gin"
)

type EvidenceHandler struct {
	Service *service.EvidenceService
}

func NewEvidenceHandler(s *service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{Service: s}
}

// Record appends one evidence fact (video watched, assignment submitted or
// reviewed) and kicks the recompute pipeline.
func (h *EvidenceHandler) Record(c *gin.Context) {
	var req service.RecordEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := h.Service.Record(context.Background(), learnerID(c), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Evidence recorded"})
}
