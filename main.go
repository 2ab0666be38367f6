package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"salonbook-backend/booking"
	"salonbook-backend/config"
	"salonbook-backend/controllers"
	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/routes"
	"salonbook-backend/services"
	"salonbook-backend/utils"
)

var _ booking.Store = (*repository.Store)(nil)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg.App.Name, cfg.App.LogLevel)
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := config.OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database ready", "driver", cfg.Database.Driver)

	store := repository.NewStore(db)
	if cfg.Database.SeedDefaults {
		if _, err := repository.SeedDefaults(context.Background(), store, logger); err != nil {
			return err
		}
	}

	zone, err := booking.NewZone(cfg.Business.TimeZoneName, cfg.Business.TimeZoneOffset)
	if err != nil {
		return fmt.Errorf("business time zone: %w", err)
	}
	engine, err := booking.New(store, zone,
		booking.WithLogger(logger.With("component", "booking")),
		booking.WithSearchPolicy(booking.SearchPolicy{
			Granularity: cfg.Search.Granularity,
			Horizon:     cfg.Search.Horizon,
			MaxProbes:   cfg.Search.MaxProbes,
		}),
	)
	if err != nil {
		return err
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = utils.GenerateJWTSecret()
		logger.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}

	var limiter *utils.RedisRateLimiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		limiter = utils.NewRedisRateLimiter(rdb, cfg.Redis.RateLimit, cfg.Redis.Window, cfg.App.Name)
		logger.Info("rate limiting enabled", "limit", cfg.Redis.RateLimit, "window", cfg.Redis.Window.String())
	}

	var sweeper *services.AppointmentSweeper
	if cfg.Sweeper.Enabled {
		sweeper = services.NewAppointmentSweeper(store.Appointments, logger.With("component", "sweeper"))
		if err := sweeper.Start(cfg.Sweeper.Schedule); err != nil {
			return err
		}
	}

	r := routes.SetupRouter(routes.Dependencies{
		Config:       cfg,
		Logger:       logger,
		JWTSecret:    secret,
		Health:       controllers.NewHealthController(store),
		Auth:         controllers.NewAuthController(store.Users, secret, cfg.Auth.TokenTTL, logger),
		Appointments: controllers.NewAppointmentController(engine, store.Appointments, store.Salons, logger),
		Salons:       controllers.NewSalonController(store.Salons, logger),
		Services:     controllers.NewServiceController(store.Salons, store.Services, logger),
		RateLimiter:  limiter,
	})
	if cfg.IsLocal() {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sweeper != nil {
		sweeper.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
