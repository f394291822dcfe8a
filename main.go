package main

import (
	"surveyhub/internal/config"
	"surveyhub/internal/database"
	"surveyhub/internal/logging"
	"surveyhub/internal/models"
	"surveyhub/internal/router"
	"surveyhub/internal/services"

	"go.uber.org/zap"
)

func main() {
	// Initialize Logger. The configuration is not loaded yet, so start with
	// the defaults and reopen once it is.
	log, err := logging.Init("logs", logging.DefaultRotation)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	// Initialize Configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Reopen the logger with the configured directory and rotation.
	lc := config.Conf.Logging
	log, err = logging.Init(lc.Directory, logging.Rotation{
		MaxSize:    lc.MaxSize,
		MaxBackups: lc.MaxBackups,
		MaxAge:     lc.MaxAge,
		Compress:   lc.Compress,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize Database
	database.Init(log)

	// Load survey templates at startup; the authoring form offers them as
	// starting points. Missing file just means no templates.
	templates, err := models.LoadSurveyTemplates(config.Conf.App.TemplatesFile)
	if err != nil {
		log.Warn("No survey templates loaded", zap.Error(err))
	}

	// Services
	emailService := services.NewEmailService(log)
	scheduler := services.NewScheduler(log, emailService)
	scheduler.Start()

	// Setup router, passing the logger to it
	r := router.Setup(log, emailService, templates)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
