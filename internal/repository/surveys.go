package repository

import (
	"context"
	"errors"

	"surveyhub/internal/database"
	"surveyhub/internal/models"
	"surveyhub/internal/permissions"

	"gorm.io/gorm"
)

// ErrUnknownAssignee is returned when a submitted assignee or reviewer id
// does not name an existing user.
var ErrUnknownAssignee = errors.New("assignee does not exist")

// NewSurvey carries a validated survey-creation submission.
type NewSurvey struct {
	Title       string
	Questions   []NewQuestion
	AssigneeIDs []uint
	ReviewerIDs []uint
}

type NewQuestion struct {
	Text    string
	Choices []string
}

// CreateSurvey persists a survey with its questions, choices, assignments,
// grants and results-viewer group in a single transaction. Any failure
// leaves no rows behind.
func CreateSurvey(ctx context.Context, createdBy uint, req NewSurvey) (*models.Survey, error) {
	var survey *models.Survey
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s := models.Survey{Title: req.Title, CreatedByID: createdBy}
		if err := tx.Create(&s).Error; err != nil {
			return err
		}

		for qi, nq := range req.Questions {
			question := models.Question{SurveyID: s.ID, Text: nq.Text, Position: qi}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			for ci, text := range nq.Choices {
				choice := models.Choice{QuestionID: question.ID, Text: text, Position: ci}
				if err := tx.Create(&choice).Error; err != nil {
					return err
				}
			}
		}

		if err := assignSurveyTx(tx, &s, createdBy, req.AssigneeIDs); err != nil {
			return err
		}

		group, err := permissions.CreateGroup(tx, permissions.ResultViewerGroupName(s.ID))
		if err != nil {
			return err
		}
		if err := permissions.Grant(tx, permissions.GroupSubject(group.ID), permissions.ViewResults, permissions.SurveyResource(s.ID)); err != nil {
			return err
		}
		if err := permissions.AddToGroup(tx, group.ID, createdBy); err != nil {
			return err
		}
		if err := addReviewersTx(tx, group.ID, req.ReviewerIDs); err != nil {
			return err
		}

		survey = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return survey, nil
}

// AssignSurvey creates assignments and per-assignment grants for an
// existing survey, and adds reviewers to its results-viewer group.
func AssignSurvey(ctx context.Context, survey *models.Survey, assignedBy uint, assigneeIDs, reviewerIDs []uint) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := assignSurveyTx(tx, survey, assignedBy, assigneeIDs); err != nil {
			return err
		}
		if len(reviewerIDs) == 0 {
			return nil
		}
		group, err := permissions.GroupByName(tx, permissions.ResultViewerGroupName(survey.ID))
		if err != nil {
			return err
		}
		return addReviewersTx(tx, group.ID, reviewerIDs)
	})
}

func assignSurveyTx(tx *gorm.DB, survey *models.Survey, assignedBy uint, assigneeIDs []uint) error {
	for _, assigneeID := range assigneeIDs {
		var assignee models.User
		if err := tx.First(&assignee, assigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownAssignee
			}
			return err
		}
		assignment := models.SurveyAssignment{
			SurveyID:     survey.ID,
			AssignedByID: assignedBy,
			AssignedToID: assignee.ID,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		err := permissions.Grant(tx,
			permissions.UserSubject(assignee.ID),
			permissions.ViewAssignment,
			permissions.AssignmentResource(assignment.ID),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func addReviewersTx(tx *gorm.DB, groupID uint, reviewerIDs []uint) error {
	for _, reviewerID := range reviewerIDs {
		var reviewer models.User
		if err := tx.First(&reviewer, reviewerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownAssignee
			}
			return err
		}
		if err := permissions.AddToGroup(tx, groupID, reviewer.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetSurvey loads a survey with questions and choices in submission order.
func GetSurvey(ctx context.Context, surveyID uint) (*models.Survey, error) {
	var survey models.Survey
	err := database.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.position")
		}).
		First(&survey, surveyID).Error
	return &survey, err
}

func ListSurveysByCreator(ctx context.Context, userID uint) ([]models.Survey, error) {
	var surveys []models.Survey
	err := database.DB.WithContext(ctx).
		Where("created_by_id = ?", userID).
		Order("created_at DESC").
		Find(&surveys).Error
	return surveys, err
}

func ListSurveysByIDs(ctx context.Context, ids []uint) ([]models.Survey, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var surveys []models.Survey
	err := database.DB.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&surveys).Error
	return surveys, err
}
