package repository

import (
	"context"

	"surveyhub/internal/database"
	"surveyhub/internal/models"
)

// ChoiceCount is the per-choice response count in a tally. Choices nobody
// picked still appear with a zero count.
type ChoiceCount struct {
	ChoiceID  uint   `json:"choice_id"`
	Text      string `json:"text"`
	Responses int64  `json:"responses"`
}

type QuestionResult struct {
	QuestionID uint          `json:"question_id"`
	Text       string        `json:"text"`
	Choices    []ChoiceCount `json:"choices"`
}

// TallySurveyResults computes per-question, per-choice response counts for
// the survey. Counts start at zero for every defined choice, then one scan
// over the survey's response rows increments the matching choice by id.
func TallySurveyResults(ctx context.Context, surveyID uint) ([]QuestionResult, error) {
	survey, err := GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	var responses []models.SurveyResponse
	err = database.DB.WithContext(ctx).
		Joins("JOIN questions ON questions.id = survey_responses.question_id").
		Where("questions.survey_id = ?", surveyID).
		Find(&responses).Error
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[uint][]models.SurveyResponse, len(survey.Questions))
	for _, response := range responses {
		byQuestion[response.QuestionID] = append(byQuestion[response.QuestionID], response)
	}

	results := make([]QuestionResult, 0, len(survey.Questions))
	for _, question := range survey.Questions {
		result := QuestionResult{
			QuestionID: question.ID,
			Text:       question.Text,
			Choices:    make([]ChoiceCount, 0, len(question.Choices)),
		}
		index := make(map[uint]int, len(question.Choices))
		for i, choice := range question.Choices {
			index[choice.ID] = i
			result.Choices = append(result.Choices, ChoiceCount{ChoiceID: choice.ID, Text: choice.Text})
		}
		for _, response := range byQuestion[question.ID] {
			if i, ok := index[response.ChoiceID]; ok {
				result.Choices[i].Responses++
			}
		}
		results = append(results, result)
	}
	return results, nil
}
