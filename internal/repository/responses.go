package repository

import (
	"context"
	"errors"

	"surveyhub/internal/database"
	"surveyhub/internal/models"
)

// Submission failure modes. Anything else bubbling out of
// SaveSurveyResponses is an unexpected persistence failure and must be
// reported as such, never swallowed.
var (
	ErrIncompleteSubmission = errors.New("all questions require an answer")
	ErrDuplicateSubmission  = errors.New("assignment has already been answered")
	ErrChoiceMismatch       = errors.New("choice does not belong to the question")
)

const submissionSavepoint = "submission"

// SaveSurveyResponses validates that every question of the assignment's
// survey received an answer and commits one response row per question.
// Validation walks the questions in position order and stops at the first
// missing answer. All rows become visible together or not at all: any
// failure rolls back to the savepoint taken before the first insert.
func SaveSurveyResponses(ctx context.Context, assignmentID uint, answers map[uint]uint) error {
	tx := database.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.SavePoint(submissionSavepoint).Error; err != nil {
		tx.Rollback()
		return err
	}

	var assignment models.SurveyAssignment
	if err := tx.First(&assignment, assignmentID).Error; err != nil {
		tx.Rollback()
		return err
	}

	// Reject-duplicate policy: one submission per assignment. The unique
	// index on (assignment_id, question_id) backstops racing submissions.
	var existing int64
	err := tx.Model(&models.SurveyResponse{}).
		Where("assignment_id = ?", assignmentID).
		Count(&existing).Error
	if err != nil {
		tx.Rollback()
		return err
	}
	if existing > 0 {
		tx.Rollback()
		return ErrDuplicateSubmission
	}

	var questions []models.Question
	err = tx.Where("survey_id = ?", assignment.SurveyID).
		Order("position").
		Find(&questions).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, question := range questions {
		choiceID, answered := answers[question.ID]
		if !answered {
			if err := tx.RollbackTo(submissionSavepoint).Error; err != nil {
				tx.Rollback()
				return err
			}
			tx.Commit()
			return ErrIncompleteSubmission
		}

		var choice models.Choice
		if err := tx.First(&choice, choiceID).Error; err != nil {
			tx.Rollback()
			return err
		}
		if choice.QuestionID != question.ID {
			tx.Rollback()
			return ErrChoiceMismatch
		}

		response := models.SurveyResponse{
			AssignmentID: assignment.ID,
			QuestionID:   question.ID,
			ChoiceID:     choice.ID,
		}
		if err := tx.Create(&response).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// CountResponsesForAssignment reports how many response rows exist for the
// assignment.
func CountResponsesForAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	return count, err
}
