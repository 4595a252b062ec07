package handlers

import (
	"context"
	"net/http"

	"progress-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

// Generate creates a new attempt and returns the learner-facing questions
// without correct indices.
func (h *AttemptHandler) Generate(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	attempt, err := h.Service.Generate(context.Background(), learnerID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	view := attempt.LearnerView()
	c.JSON(http.StatusCreated, gin.H{
		"attempt_id": attempt.ID,
		"questions":  view.Questions,
		"next_step":  "Answer questions, then call /submit",
	})
}

// Answer saves one provisional answer.
func (h *AttemptHandler) Answer(c *gin.Context) {
	var req struct {
		QuestionIndex int `json:"question_index"`
		OptionIndex   int `json:"option_index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Service.SaveAnswer(context.Background(), learnerID(c), c.Param("id"), req.QuestionIndex, req.OptionIndex)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Answer saved"})
}

// Submit scores the attempt and returns score plus per-question feedback.
func (h *AttemptHandler) Submit(c *gin.Context) {
	var req struct {
		Answers []int `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.Submit(context.Background(), learnerID(c), c.Param("id"), req.Answers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AttemptHandler) Get(c *gin.Context) {
	attempt, err := h.Service.Get(context.Background(), learnerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}
