package services

import (
	"context"
	"time"

	"surveyhub/internal/config"
	"surveyhub/internal/models"
	"surveyhub/internal/repository"

	"go.uber.org/zap"
)

// Scheduler periodically reminds assignees about surveys they have not
// answered yet.
type Scheduler struct {
	log          *zap.Logger
	emailService *EmailService
}

func NewScheduler(log *zap.Logger, emailService *EmailService) *Scheduler {
	return &Scheduler{
		log:          log,
		emailService: emailService,
	}
}

// Start runs the scheduler in a goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Starting assignment reminder scheduler...")
	go func() {
		ticker := time.NewTicker(config.Conf.App.ReminderInterval)
		defer ticker.Stop()

		for {
			<-ticker.C
			s.runReminderCheck()
		}
	}()
}

func (s *Scheduler) runReminderCheck() {
	cutoff := time.Now().Add(-config.Conf.App.ReminderAge)
	s.log.Debug("Running assignment reminder check", zap.Time("cutoff", cutoff))

	assignments, err := repository.ListUnansweredAssignments(context.Background(), cutoff)
	if err != nil {
		s.log.Error("Failed to list unanswered assignments", zap.Error(err))
		return
	}

	pending := make(map[uint]int)
	assignees := make(map[uint]models.User)
	for _, assignment := range assignments {
		pending[assignment.AssignedToID]++
		assignees[assignment.AssignedToID] = assignment.AssignedTo
	}

	for userID, count := range pending {
		user := assignees[userID]
		go s.emailService.SendAssignmentReminder(user, count)
	}
}
