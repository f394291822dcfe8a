package handlers

import (
	"errors"
	"net/http"

	"surveyhub/internal/database"
	"surveyhub/internal/models"
	"surveyhub/internal/permissions"
	"surveyhub/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SurveyHandler struct {
	log       *zap.Logger
	templates []models.SurveyTemplate
}

func NewSurveyHandler(log *zap.Logger, templates []models.SurveyTemplate) *SurveyHandler {
	return &SurveyHandler{log: log, templates: templates}
}

type createSurveyRequest struct {
	Title       string                  `json:"title"`
	Questions   []createQuestionRequest `json:"questions"`
	AssigneeIDs []uint                  `json:"assignee_ids"`
	ReviewerIDs []uint                  `json:"reviewer_ids"`
}

type createQuestionRequest struct {
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

type manageSurveyRequest struct {
	AssigneeIDs []uint `json:"assignee_ids"`
	ReviewerIDs []uint `json:"reviewer_ids"`
}

// ShowCreateForm returns the data the authoring form needs: assignable
// users and the canned survey templates.
func (h *SurveyHandler) ShowCreateForm(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	users, err := repository.ListAssignableUsers(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to list assignable users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load form"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":     users,
		"templates": h.templates,
	})
}

func (h *SurveyHandler) Create(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	var req createSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fieldErrors := map[string]string{}
	if req.Title == "" {
		fieldErrors["title"] = "title is required"
	}
	if len(req.Questions) == 0 {
		fieldErrors["questions"] = "questions are required"
	}
	for _, question := range req.Questions {
		if question.Text == "" || len(question.Choices) == 0 {
			fieldErrors["questions"] = "each question requires text and at least one choice"
			break
		}
	}
	if len(req.AssigneeIDs) == 0 {
		fieldErrors["assignees"] = "assignees are required"
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	newSurvey := repository.NewSurvey{
		Title:       req.Title,
		AssigneeIDs: req.AssigneeIDs,
		ReviewerIDs: req.ReviewerIDs,
	}
	for _, question := range req.Questions {
		newSurvey.Questions = append(newSurvey.Questions, repository.NewQuestion{
			Text:    question.Text,
			Choices: question.Choices,
		})
	}

	survey, err := repository.CreateSurvey(c.Request.Context(), user.ID, newSurvey)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownAssignee) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"assignees": "assignee does not exist"}})
			return
		}
		h.log.Error("Failed to create survey", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create survey"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"survey": survey, "redirect": "/profile"})
}

// ShowManageForm lists users partitioned into those not yet assigned the
// survey and those not yet allowed to view its results. The owner check
// happened in middleware.
func (h *SurveyHandler) ShowManageForm(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	survey := c.MustGet("survey").(*models.Survey)

	users, err := repository.ListAssignableUsers(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to list assignable users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load form"})
		return
	}

	assignedIDs, err := repository.ListAssignedUserIDs(c.Request.Context(), survey.ID)
	if err != nil {
		h.log.Error("Failed to list assigned users", zap.Error(err), zap.Uint("surveyID", survey.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load form"})
		return
	}
	assigned := make(map[uint]bool, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = true
	}

	availableAssignees := make([]models.User, 0, len(users))
	availableReviewers := make([]models.User, 0, len(users))
	for _, u := range users {
		if !assigned[u.ID] {
			availableAssignees = append(availableAssignees, u)
		}
		canView, err := permissions.Check(database.DB, u.ID, permissions.ViewResults, permissions.SurveyResource(survey.ID))
		if err != nil {
			h.log.Error("Failed to check results grant", zap.Error(err), zap.Uint("userID", u.ID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load form"})
			return
		}
		if !canView {
			availableReviewers = append(availableReviewers, u)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"survey":              survey,
		"available_assignees": availableAssignees,
		"available_reviewers": availableReviewers,
	})
}

func (h *SurveyHandler) Manage(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	survey := c.MustGet("survey").(*models.Survey)

	var req manageSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := repository.AssignSurvey(c.Request.Context(), survey, user.ID, req.AssigneeIDs, req.ReviewerIDs)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownAssignee) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"assignees": "assignee does not exist"}})
			return
		}
		h.log.Error("Failed to update survey assignments", zap.Error(err), zap.Uint("surveyID", survey.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignments updated.", "redirect": "/profile"})
}
