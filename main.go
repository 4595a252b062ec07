package main

import (
	"log"
	"net/http"
	"time"

	"progress-service/internal/config"
	"progress-service/internal/db"
	"progress-service/internal/event"
	"progress-service/internal/generation"
	"progress-service/internal/handlers"
	"progress-service/internal/repository"
	"progress-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	gin.SetMode(cfg.GinMode)

	db.InitMongo(cfg.MongoURI)
	defer db.Disconnect()

	// RabbitMQ event publisher, optional like the rest of the platform
	var publisher *event.EventPublisher
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, progress events will not be published")
	}
	var pub service.Publisher
	if publisher != nil {
		pub = publisher
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://evolvia.phrimp.io.vn"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database(cfg.MongoDB)

	// Repositories
	attemptRepo := repository.NewAttemptRepository(database)
	courseRepo := repository.NewCourseRepository(database)
	pathRepo := repository.NewPathRepository(database)
	quizRepo := repository.NewQuizRepository(database)
	questionRepo := repository.NewQuestionRepository(database)
	evidenceRepo := repository.NewEvidenceRepository(database)
	progressRepo := repository.NewProgressRepository(database)
	certificateRepo := repository.NewCertificateRepository(database)

	// AI question generator
	generator := generation.NewLLMGenerator(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.Engine.GenerationTimeout)

	// Services
	progressService := service.NewProgressService(courseRepo, pathRepo, progressRepo, evidenceRepo, attemptRepo, quizRepo, certificateRepo, cfg.Engine, pub)
	attemptService := service.NewAttemptService(attemptRepo, quizRepo, questionRepo, courseRepo, generator, progressService, cfg.Engine, pub)
	evidenceService := service.NewEvidenceService(evidenceRepo, courseRepo, progressService, pub)
	certificateService := service.NewCertificateService(certificateRepo, pub)
	courseService := service.NewCourseService(courseRepo, progressRepo)
	quizService := service.NewQuizService(quizRepo, questionRepo)

	// Handlers
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	evidenceHandler := handlers.NewEvidenceHandler(evidenceService)
	progressHandler := handlers.NewProgressHandler(progressService)
	certificateHandler := handlers.NewCertificateHandler(certificateService)
	courseHandler := handlers.NewCourseHandler(courseService)
	quizHandler := handlers.NewQuizHandler(quizService, cfg.Engine.OptionCount)

	// Public catalog routes
	publicCourse := r.Group("/public/progress/course")
	{
		publicCourse.GET("/:id", courseHandler.Get)
	}
	publicPath := r.Group("/public/progress/path")
	{
		publicPath.GET("/:slug/courses", courseHandler.ListByPath)
	}

	// Protected learner routes
	protected := r.Group("/protected/progress")
	protected.Use(requireUser())
	{
		quiz := protected.Group("/quiz")
		{
			quiz.POST("/generate", attemptHandler.Generate)
			quiz.GET("/:id", attemptHandler.Get)
			quiz.POST("/:id/answer", attemptHandler.Answer)
			quiz.POST("/:id/submit", attemptHandler.Submit)
		}

		protected.POST("/evidence", evidenceHandler.Record)
		protected.GET("", progressHandler.Get)
		protected.GET("/path/:slug", progressHandler.GetByPath)
		protected.GET("/certificates", certificateHandler.List)
	}

	// Admin routes: course/quiz authoring, certificate revocation
	admin := r.Group("/protected/progress/admin")
	admin.Use(requireUser(), requireAdmin())
	{
		admin.POST("/course", courseHandler.Create)
		admin.PUT("/course/:id", courseHandler.Update)

		admin.POST("/quiz", quizHandler.Create)
		admin.GET("/quiz/:id", quizHandler.Get)
		admin.PUT("/quiz/:id", quizHandler.Update)
		admin.GET("/quiz/course/:courseId", quizHandler.ListByCourse)
		admin.GET("/quiz/:id/questions", quizHandler.ListQuestions)
		admin.POST("/quiz/:id/questions", quizHandler.CreateQuestion)
		admin.PUT("/quiz/:id/questions/:questionId", quizHandler.UpdateQuestion)
		admin.DELETE("/quiz/:id/questions/:questionId", quizHandler.DeleteQuestion)

		admin.POST("/certificates/:id/revoke", certificateHandler.Revoke)
	}

	log.Printf("%s %s listening on :%s", cfg.ServiceName, cfg.ServiceVersion, cfg.Port)
	r.Run(":" + cfg.Port)
}

// requireUser rejects requests without the X-User-ID header set by the
// gateway auth middleware.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-Role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin role required",
				"code":  "FORBIDDEN",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
