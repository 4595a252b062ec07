package handlers

import (
	"context"
	"net/http"

	"progress-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	Service *service.ProgressService
}

func NewProgressHandler(s *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{Service: s}
}

// Get returns the learner's progress report: per-course progress,
// readiness score, certificates, current-course pointer and locked
// courses. Everything is recomputed from source records on every call.
func (h *ProgressHandler) Get(c *gin.Context) {
	report, err := h.Service.GetProgress(context.Background(), learnerID(c), c.Query("path"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetByPath is the path-scoped variant with the slug in the URL.
func (h *ProgressHandler) GetByPath(c *gin.Context) {
	report, err := h.Service.GetProgress(context.Background(), learnerID(c), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
