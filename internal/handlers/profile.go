package handlers

import (
	"net/http"

	"surveyhub/internal/database"
	"surveyhub/internal/models"
	"surveyhub/internal/permissions"
	"surveyhub/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	log *zap.Logger
}

func NewProfileHandler(log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{log: log}
}

// ShowProfile is the dashboard: surveys the user created, assignments
// addressed to the user, and surveys whose results the user may view.
func (h *ProfileHandler) ShowProfile(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	owned, err := repository.ListSurveysByCreator(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to list owned surveys", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	assigned, err := repository.ListAssignmentsForUser(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to list assignments", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	resultIDs, err := permissions.SurveyIDsWithResultAccess(database.DB, user.ID)
	if err != nil {
		h.log.Error("Failed to list result grants", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	results, err := repository.ListSurveysByIDs(c.Request.Context(), resultIDs)
	if err != nil {
		h.log.Error("Failed to load result surveys", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"surveys":          owned,
		"assigned_surveys": assigned,
		"survey_results":   results,
	})
}
