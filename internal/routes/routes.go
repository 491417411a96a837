package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"medihelp-server/internal/config"
	"medihelp-server/internal/handlers"
	"medihelp-server/internal/middleware"
	"medihelp-server/internal/models"
	"medihelp-server/internal/receiver"
	"medihelp-server/internal/session"
)

// Services are the long-lived components the handlers share.
type Services struct {
	Sessions *session.Manager
	Receiver *receiver.Service
	Logger   *zap.Logger
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, svc Services) {
	authHandler := handlers.NewAuthHandler(db, cfg, svc.Logger)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db)
	prescriptionHandler := handlers.NewPrescriptionHandler(db)
	sessionHandler := handlers.NewSessionHandler(svc.Sessions, svc.Logger)
	pushHandler := handlers.NewPushHandler(svc.Receiver, svc.Sessions, svc.Logger)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/register/doctor", authHandler.RegisterDoctor)
			authRoutes.POST("/login", authHandler.Login)
		}
	}

	// Session routes work before sign-in; a bearer token, when present,
	// identifies the user for loginSucceeded.
	sessions := router.Group("/api/v1/sessions")
	sessions.Use(middleware.OptionalAuthMiddleware(cfg.JWTSecret))
	{
		sessions.POST("", sessionHandler.Launch)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.POST("/:id/events", sessionHandler.Dispatch)
		sessions.DELETE("/:id", sessionHandler.End)
	}

	// Token rotation can arrive while signed out and is then a no-op.
	router.PUT("/api/v1/push/token", middleware.OptionalAuthMiddleware(cfg.JWTSecret), pushHandler.RotateToken)

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		private.GET("/auth/profile", authHandler.GetProfile)

		private.GET("/doctors", userHandler.GetDoctors)
		private.GET("/patients", middleware.RoleAuthMiddleware(models.RoleDoctor), userHandler.GetPatients)

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.UpdateAppointmentStatus)
		}

		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), prescriptionHandler.CreatePrescription)
			prescriptionRoutes.GET("", prescriptionHandler.GetPrescriptions)
		}

		private.POST("/push/messages", pushHandler.ReceiveMessage)
		private.GET("/notifications", pushHandler.ListNotifications)
		private.POST("/notifications/:id/open", pushHandler.OpenNotification)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "sessions": svc.Sessions.Len()})
	})
}
