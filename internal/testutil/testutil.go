// Package testutil provides shared helpers for package tests: an isolated
// in-memory database wired into the global handle plus seed helpers.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"surveyhub/internal/config"
	"surveyhub/internal/database"
	"surveyhub/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory database named after the test, runs
// the migrations, installs it as the global handle and seeds minimal
// configuration. Each test gets its own database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.Conf = &config.Config{
		Server: config.ServerConfig{Port: "8000", BaseURL: "http://localhost:8000"},
		Auth:   config.AuthConfig{TokenSecret: "test-secret", ConfirmationTTL: time.Hour},
		Mail:   config.MailConfig{From: "no-reply@surveyhub.local"},
		App: config.AppConfig{
			AnonymousUserName: "AnonymousUser",
			ReminderInterval:  time.Hour,
			ReminderAge:       24 * time.Hour,
		},
	}

	database.DB = db
	return db
}

// CreateUser seeds an active user.
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, IsActive: true}
	if err := user.SetPassword("Sup3r-Secret!"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

// CreateSurvey seeds a survey with questions and choices, two choices per
// question, without any assignments or grants.
func CreateSurvey(t *testing.T, db *gorm.DB, createdBy uint, title string, questionTexts ...string) *models.Survey {
	t.Helper()

	survey := &models.Survey{Title: title, CreatedByID: createdBy}
	if err := db.Create(survey).Error; err != nil {
		t.Fatalf("Failed to create survey: %v", err)
	}
	for i, text := range questionTexts {
		question := models.Question{SurveyID: survey.ID, Text: text, Position: i}
		if err := db.Create(&question).Error; err != nil {
			t.Fatalf("Failed to create question: %v", err)
		}
		for j, choiceText := range []string{"Yes", "No"} {
			choice := models.Choice{QuestionID: question.ID, Text: choiceText, Position: j}
			if err := db.Create(&choice).Error; err != nil {
				t.Fatalf("Failed to create choice: %v", err)
			}
		}
	}
	return survey
}
