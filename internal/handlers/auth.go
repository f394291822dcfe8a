package handlers

import (
	"fmt"
	"net/http"

	"surveyhub/internal/config"
	"surveyhub/internal/repository"
	"surveyhub/internal/services"
	"surveyhub/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// confirmationErrorMessage is intentionally generic: expired, tampered and
// unknown-user failures are indistinguishable to the caller.
const confirmationErrorMessage = "Registration confirmation error. Please register again to generate a new confirmation email."

type AuthHandler struct {
	log          *zap.Logger
	emailService *services.EmailService
}

func NewAuthHandler(log *zap.Logger, emailService *services.EmailService) *AuthHandler {
	return &AuthHandler{log: log, emailService: emailService}
}

// ShowRegisterForm returns what the registration form needs: the CSRF
// token for the follow-up POST and the password rules to display.
func (h *AuthHandler) ShowRegisterForm(c *gin.Context) {
	csrfToken, _ := c.Get("csrf_token")
	c.JSON(http.StatusOK, gin.H{
		"csrf_token":     csrfToken,
		"password_rules": "at least 8 characters with upper, lower, digit and special",
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	passwordConfirm := c.PostForm("password_confirm")

	fieldErrors := map[string]string{}
	switch {
	case email == "":
		fieldErrors["email"] = "email is required"
	case !utils.IsValidEmail(email):
		fieldErrors["email"] = "email is not valid"
	}
	switch {
	case password == "":
		fieldErrors["password"] = "password is required"
	case !utils.IsComplexPassword(password):
		fieldErrors["password"] = "password does not meet the complexity requirements"
	case password != passwordConfirm:
		fieldErrors["password_confirm"] = "passwords do not match"
	}
	if _, ok := fieldErrors["email"]; !ok {
		if _, err := repository.GetUserByEmail(c.Request.Context(), email); err == nil {
			fieldErrors["email"] = "email is already registered"
		}
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	user, err := repository.CreateUser(c.Request.Context(), email, password)
	if err != nil {
		h.log.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	token, err := utils.NewConfirmationToken(config.Conf.Auth.TokenSecret, user.ID, config.Conf.Auth.ConfirmationTTL)
	if err != nil {
		h.log.Error("Failed to issue confirmation token", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	confirmURL := fmt.Sprintf("%s/confirm/%s/%s", config.Conf.Server.BaseURL, utils.EncodeUserID(user.ID), token)
	h.emailService.SendConfirmationEmail(*user, confirmURL)

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("A confirmation email has been sent to %s. Please confirm to finish registering", user.Email),
	})
}

// Confirm is the confirmation link target. Every failure collapses into
// one generic message.
func (h *AuthHandler) Confirm(c *gin.Context) {
	userID, err := utils.DecodeUserID(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": confirmationErrorMessage})
		return
	}

	user, err := repository.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": confirmationErrorMessage})
		return
	}

	if !utils.VerifyConfirmationToken(config.Conf.Auth.TokenSecret, c.Param("token"), user.ID) {
		c.JSON(http.StatusBadRequest, gin.H{"message": confirmationErrorMessage})
		return
	}

	if err := repository.ActivateUser(c.Request.Context(), user.ID); err != nil {
		h.log.Error("Failed to activate user", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registration complete. Please login."})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := repository.GetUserByEmail(c.Request.Context(), email)
	if err != nil || !user.CheckPassword(password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please confirm your email before logging in."})
		return
	}

	session := sessions.Default(c)
	session.Set("userID", user.ID)
	if err := session.Save(); err != nil {
		h.log.Error("Failed to save session", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged in."})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}
