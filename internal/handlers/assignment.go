package handlers

import (
	"errors"
	"net/http"

	"surveyhub/internal/models"
	"surveyhub/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AssignmentHandler struct {
	log *zap.Logger
}

func NewAssignmentHandler(log *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{log: log}
}

// Show returns the assignment with its survey, questions and choices. The
// view-assignment grant was checked in middleware.
func (h *AssignmentHandler) Show(c *gin.Context) {
	assignment := c.MustGet("assignment").(*models.SurveyAssignment)
	c.JSON(http.StatusOK, gin.H{"survey_assignment": assignment})
}

type submitResponsesRequest struct {
	// Answers maps question id to the chosen choice id.
	Answers map[uint]uint `json:"answers"`
}

// Submit validates and commits one response per question, all or nothing.
// Validation failures, duplicate submissions and unexpected persistence
// failures are reported distinctly.
func (h *AssignmentHandler) Submit(c *gin.Context) {
	assignment := c.MustGet("assignment").(*models.SurveyAssignment)

	var req submitResponsesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := repository.SaveSurveyResponses(c.Request.Context(), assignment.ID, req.Answers)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Responses recorded.", "redirect": "/profile"})
	case errors.Is(err, repository.ErrIncompleteSubmission):
		c.JSON(http.StatusBadRequest, gin.H{"error": "All questions require an answer"})
	case errors.Is(err, repository.ErrDuplicateSubmission):
		c.JSON(http.StatusConflict, gin.H{"error": "This assignment has already been answered"})
	case errors.Is(err, repository.ErrChoiceMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Choice does not belong to the question"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Choice not found"})
	default:
		h.log.Error("Failed to save survey responses",
			zap.Error(err),
			zap.Uint("assignmentID", assignment.ID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save responses"})
	}
}
