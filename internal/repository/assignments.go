package repository

import (
	"context"
	"time"

	"surveyhub/internal/database"
	"surveyhub/internal/models"

	"gorm.io/gorm"
)

// GetAssignment loads an assignment with its survey, questions and choices
// in submission order.
func GetAssignment(ctx context.Context, assignmentID uint) (*models.SurveyAssignment, error) {
	var assignment models.SurveyAssignment
	err := database.DB.WithContext(ctx).
		Preload("Survey").
		Preload("Survey.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		Preload("Survey.Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.position")
		}).
		First(&assignment, assignmentID).Error
	return &assignment, err
}

func ListAssignmentsForUser(ctx context.Context, userID uint) ([]models.SurveyAssignment, error) {
	var assignments []models.SurveyAssignment
	err := database.DB.WithContext(ctx).
		Preload("Survey").
		Where("assigned_to_id = ?", userID).
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

// ListAssignedUserIDs returns the ids of users already assigned the survey.
func ListAssignedUserIDs(ctx context.Context, surveyID uint) ([]uint, error) {
	var ids []uint
	err := database.DB.WithContext(ctx).
		Model(&models.SurveyAssignment{}).
		Where("survey_id = ?", surveyID).
		Pluck("assigned_to_id", &ids).Error
	return ids, err
}

// ListUnansweredAssignments returns assignments created before the cutoff
// that have no responses yet, with assignees preloaded. Used by the
// reminder scheduler.
func ListUnansweredAssignments(ctx context.Context, cutoff time.Time) ([]models.SurveyAssignment, error) {
	var assignments []models.SurveyAssignment
	err := database.DB.WithContext(ctx).
		Preload("AssignedTo").
		Preload("Survey").
		Where("created_at < ?", cutoff).
		Where("id NOT IN (?)", database.DB.Model(&models.SurveyResponse{}).Select("assignment_id")).
		Find(&assignments).Error
	return assignments, err
}
