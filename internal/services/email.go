package services

import (
	"fmt"

	"surveyhub/internal/config"
	"surveyhub/internal/models"

	"go.uber.org/zap"
)

// EmailService is a placeholder for a real email sending service.
type EmailService struct {
	log *zap.Logger
}

func NewEmailService(log *zap.Logger) *EmailService {
	return &EmailService{log: log}
}

// SendConfirmationEmail simulates sending the registration confirmation
// email containing the tokenized link.
func (s *EmailService) SendConfirmationEmail(user models.User, confirmURL string) {
	s.log.Info("Sending confirmation email",
		zap.String("to", user.Email),
		zap.String("from", config.Conf.Mail.From),
	)
	// In a real application, you would use an SMTP client like go-mail
	// to send a templated HTML email here.
	fmt.Printf("--- SIMULATING EMAIL ---\nFrom: %s\nTo: %s\nSubject: Survey Hub Email Confirmation\nPlease confirm your registration: %s\n\n",
		config.Conf.Mail.From, user.Email, confirmURL)
}

// SendAssignmentReminder simulates sending a reminder about unanswered
// survey assignments.
func (s *EmailService) SendAssignmentReminder(user models.User, pending int) {
	s.log.Info("Sending assignment reminder email",
		zap.String("to", user.Email),
		zap.Int("pending", pending),
	)
	fmt.Printf("--- SIMULATING EMAIL ---\nFrom: %s\nTo: %s\nSubject: You have surveys waiting\nYou have %d assigned survey(s) waiting for your answers.\n\n",
		config.Conf.Mail.From, user.Email, pending)
}
