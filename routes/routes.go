package routes

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"salonbook-backend/config"
	"salonbook-backend/controllers"
	"salonbook-backend/utils"
)

// Dependencies carries everything the router wires into handlers
type Dependencies struct {
	Config       *config.Config
	Logger       *slog.Logger
	JWTSecret    string
	Health       *controllers.HealthController
	Auth         *controllers.AuthController
	Appointments *controllers.AppointmentController
	Salons       *controllers.SalonController
	Services     *controllers.ServiceController
	// RateLimiter is optional; booking routes are unlimited without it.
	RateLimiter *utils.RedisRateLimiter
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.HTTP.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(deps.Logger, deps.Config.HTTP.SlowRequest))
	r.Use(requestTimeout(deps.Config.HTTP.RequestTimeout))

	r.GET("/health", deps.Health.Check)

	requireAuth := utils.AuthMiddleware(deps.JWTSecret)

	auth := r.Group("/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.GET("/me", requireAuth, deps.Auth.Me)
	}

	api := r.Group("/api")
	{
		// Booking routes
		limited := api.Group("")
		if deps.RateLimiter != nil {
			limited.Use(deps.RateLimiter.Middleware(deps.Logger, deps.Config.Redis.FailOpen))
		}
		limited.POST("/check-availability", deps.Appointments.CheckAvailability)
		limited.POST("/book-appointment", deps.Appointments.Book)
		limited.POST("/confirm-next-slot", deps.Appointments.ConfirmNextSlot)

		api.GET("/next-slot", deps.Appointments.NextSlot)

		appointments := api.Group("/appointments")
		{
			appointments.GET("/:id", deps.Appointments.Get)
			appointments.GET("", requireAuth, deps.Appointments.List)
			appointments.POST("/:id/cancel", requireAuth, deps.Appointments.Cancel)
		}

		// Salon routes
		salons := api.Group("/salons")
		{
			salons.GET("", deps.Salons.List)
			salons.POST("", requireAuth, deps.Salons.Create)
			salons.GET("/:id/services", deps.Services.List)
			salons.POST("/:id/services", requireAuth, deps.Services.Create)
		}
	}

	return r
}

// requestTimeout bounds the context handed to the booking engine
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
