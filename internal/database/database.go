package database

import (
	"fmt"

	"surveyhub/internal/config"
	"surveyhub/internal/logging"
	"surveyhub/internal/models"
	"surveyhub/internal/utils"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logging.NewGormZapLogger(log),
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	if err := EnsureAnonymousUser(DB, config.Conf.App.AnonymousUserName); err != nil {
		log.Fatal("Failed to ensure anonymous sentinel user", zap.Error(err))
	}
}

// Migrate creates tables, columns and foreign keys via GORM's AutoMigrate,
// then applies the custom indexes AutoMigrate does not create. It is also
// called by tests against their own database handle.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Survey{},
		&models.Question{},
		&models.Choice{},
		&models.SurveyAssignment{},
		&models.SurveyResponse{},
		&models.Grant{},
		&models.Group{},
		&models.GroupMember{},
	)
	if err != nil {
		return err
	}

	// One response per (assignment, question): a racing double submission
	// hits this index instead of persisting duplicate rows.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_responses_assignment_question ON survey_responses (assignment_id, question_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_grants_tuple ON grants (subject_type, subject_id, permission, resource_type, resource_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_group_members_pair ON group_members (group_id, user_id);`,
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// EnsureAnonymousUser creates the anonymous sentinel account if it does not
// exist yet. It is never activated and is excluded from assignee listings.
func EnsureAnonymousUser(db *gorm.DB, name string) error {
	email := AnonymousUserEmail(name)
	var existing models.User
	err := db.First(&existing, "email = ?", email).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	password, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}
	sentinel := models.User{Email: email, IsActive: false}
	if err := sentinel.SetPassword(password); err != nil {
		return err
	}
	return db.Create(&sentinel).Error
}

// AnonymousUserEmail returns the sentinel address for the configured name.
func AnonymousUserEmail(name string) string {
	return fmt.Sprintf("%s@surveyhub.invalid", name)
}
