package router

import (
	"net/http"
	"strconv"

	"surveyhub/internal/database"
	"surveyhub/internal/models"
	"surveyhub/internal/permissions"
	"surveyhub/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLoaderMiddleware checks for a userID in the session. If found, it
// loads the user from the database and adds it to the context. This
// ensures we don't have "zombie" sessions for users who no longer exist.
func UserLoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get("userID").(uint)
		if !ok {
			// No user ID in session, proceed as a guest.
			c.Next()
			return
		}

		user, err := repository.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			// User ID from session is invalid (user was deleted, etc.)
			// Clear the bad session and treat as a guest.
			session.Clear()
			session.Options(sessions.Options{Path: "/", MaxAge: -1})
			session.Save()
			c.Next()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// AuthRequired checks that a valid user was loaded into the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user"); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// RequireSurveyOwner loads the survey named by the survey_id parameter and
// aborts with 403 unless the current user created it. An ownership check,
// not a role system.
func RequireSurveyOwner(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		surveyID, ok := paramID(c, "survey_id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid survey id"})
			return
		}

		survey, err := repository.GetSurvey(c.Request.Context(), surveyID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Survey not found"})
			return
		}

		user := c.MustGet("user").(*models.User)
		if survey.CreatedByID != user.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Set("survey", survey)
		c.Next()
	}
}

// RequireAssignmentView loads the assignment named by the assignment_id
// parameter and aborts with 403 unless the current user holds the
// view-assignment grant on that specific record.
func RequireAssignmentView(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		assignmentID, ok := paramID(c, "assignment_id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment id"})
			return
		}

		assignment, err := repository.GetAssignment(c.Request.Context(), assignmentID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
			return
		}

		user := c.MustGet("user").(*models.User)
		allowed, err := permissions.Check(database.DB, user.ID, permissions.ViewAssignment, permissions.AssignmentResource(assignment.ID))
		if err != nil {
			log.Error("Failed to check assignment grant", zap.Error(err), zap.Uint("assignmentID", assignment.ID))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Set("assignment", assignment)
		c.Next()
	}
}

// RequireResultsView loads the survey named by the survey_id parameter and
// aborts with 403 unless the current user holds the view-results grant on
// it, directly or via the survey's viewer group.
func RequireResultsView(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		surveyID, ok := paramID(c, "survey_id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid survey id"})
			return
		}

		survey, err := repository.GetSurvey(c.Request.Context(), surveyID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Survey not found"})
			return
		}

		user := c.MustGet("user").(*models.User)
		allowed, err := permissions.Check(database.DB, user.ID, permissions.ViewResults, permissions.SurveyResource(survey.ID))
		if err != nil {
			log.Error("Failed to check results grant", zap.Error(err), zap.Uint("surveyID", survey.ID))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Set("survey", survey)
		c.Next()
	}
}
