package repository

import (
	"context"

	"surveyhub/internal/config"
	"surveyhub/internal/database"
	"surveyhub/internal/models"
)

func CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	user := &models.User{Email: email, IsActive: false}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	result := database.DB.WithContext(ctx).Create(user)
	return user, result.Error
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, "email = ?", email)
	return &user, result.Error
}

func GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, id)
	return &user, result.Error
}

// ActivateUser flips the account to active after email confirmation.
func ActivateUser(ctx context.Context, userID uint) error {
	return database.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_active", true).Error
}

// ListAssignableUsers returns every user a survey could be assigned to:
// active accounts except the caller and the anonymous sentinel.
func ListAssignableUsers(ctx context.Context, excludeUserID uint) ([]models.User, error) {
	sentinel := database.AnonymousUserEmail(config.Conf.App.AnonymousUserName)
	var users []models.User
	err := database.DB.WithContext(ctx).
		Where("is_active = ? AND id <> ? AND email <> ?", true, excludeUserID, sentinel).
		Order("id").
		Find(&users).Error
	return users, err
}
