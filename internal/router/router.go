package router

import (
	"net/http"
	"time"

	"surveyhub/internal/config"
	"surveyhub/internal/handlers"
	"surveyhub/internal/models"
	"surveyhub/internal/services"
	"surveyhub/internal/utils"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
}

// newRateLimitStore picks the redis-backed store when an address is
// configured, otherwise the in-memory one.
func newRateLimitStore() ratelimit.Store {
	redisConf := config.Conf.Redis
	if redisConf.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisConf.Addr,
			Password: redisConf.Password,
			DB:       redisConf.DB,
		})
		return ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        time.Minute,
			Limit:       5,
		})
	}
	return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
}

func Setup(log *zap.Logger, emailService *services.EmailService, templates []models.SurveyTemplate) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	sessionSecret := config.Conf.Server.SessionSecret
	if sessionSecret == "" {
		// Sessions won't survive a restart without a configured secret.
		generated, err := utils.GenerateSecureToken(32)
		if err != nil {
			log.Fatal("Failed to generate session secret", zap.Error(err))
		}
		sessionSecret = generated
		log.Warn("No session secret configured, generated an ephemeral one")
	}

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("surveyhub_session", store))

	// --- Now that sessions are initialized, other middleware can use them ---
	router.Use(CSRFProtection())
	router.Use(UserLoaderMiddleware())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log, emailService)
	profileHandler := handlers.NewProfileHandler(log)
	surveyHandler := handlers.NewSurveyHandler(log, templates)
	assignmentHandler := handlers.NewAssignmentHandler(log)
	resultsHandler := handlers.NewResultsHandler(log)

	limiter := ratelimit.RateLimiter(newRateLimitStore(), &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      keyFunc,
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/register", authHandler.ShowRegisterForm)
	router.POST("/register", limiter, authHandler.Register)
	router.GET("/confirm/:user_id/:token", authHandler.Confirm)
	router.POST("/login", limiter, authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	authorized := router.Group("/")
	authorized.Use(AuthRequired())
	{
		authorized.GET("/profile", profileHandler.ShowProfile)

		surveyRoutes := authorized.Group("/survey")
		{
			surveyRoutes.GET("/create", surveyHandler.ShowCreateForm)
			surveyRoutes.POST("/create", surveyHandler.Create)

			assignmentRoutes := surveyRoutes.Group("/assignment")
			assignmentRoutes.Use(RequireAssignmentView(log))
			{
				assignmentRoutes.GET("/:assignment_id", assignmentHandler.Show)
				assignmentRoutes.POST("/:assignment_id", assignmentHandler.Submit)
			}

			manageRoutes := surveyRoutes.Group("/manage")
			manageRoutes.Use(RequireSurveyOwner(log))
			{
				manageRoutes.GET("/:survey_id", surveyHandler.ShowManageForm)
				manageRoutes.POST("/:survey_id", surveyHandler.Manage)
			}

			resultsRoutes := surveyRoutes.Group("/results")
			resultsRoutes.Use(RequireResultsView(log))
			{
				resultsRoutes.GET("/:survey_id", resultsHandler.Show)
				resultsRoutes.GET("/:survey_id/chart", resultsHandler.ShowChart)
			}
		}
	}

	return router
}
