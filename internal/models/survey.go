package models

import "time"

// Survey is a titled set of multiple-choice questions. Surveys are created
// whole and never edited afterwards.
type Survey struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	CreatedByID uint       `gorm:"not null;index" json:"created_by_id"`
	CreatedBy   User       `gorm:"foreignKey:CreatedByID" json:"-"`
	Questions   []Question `gorm:"foreignKey:SurveyID" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Question struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	SurveyID uint     `gorm:"not null;index" json:"survey_id"`
	Text     string   `gorm:"not null" json:"text"`
	Position int      `gorm:"not null" json:"position"`
	Choices  []Choice `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

type Choice struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Text       string `gorm:"not null" json:"text"`
	Position   int    `gorm:"not null" json:"position"`
}

// SurveyAssignment directs a specific user to complete a specific survey.
type SurveyAssignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SurveyID     uint      `gorm:"not null;index" json:"survey_id"`
	Survey       Survey    `gorm:"foreignKey:SurveyID" json:"survey,omitempty"`
	AssignedByID uint      `gorm:"not null" json:"assigned_by_id"`
	AssignedBy   User      `gorm:"foreignKey:AssignedByID" json:"-"`
	AssignedToID uint      `gorm:"not null;index" json:"assigned_to_id"`
	AssignedTo   User      `gorm:"foreignKey:AssignedToID" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SurveyResponse records one answered question within an assignment. The
// pair (assignment_id, question_id) carries a unique index so a racing
// double submission cannot persist duplicate rows.
type SurveyResponse struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	QuestionID   uint      `gorm:"not null" json:"question_id"`
	ChoiceID     uint      `gorm:"not null" json:"choice_id"`
	CreatedAt    time.Time `json:"created_at"`
}
