package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"medihelp-server/internal/config"
	"medihelp-server/internal/logger"
	"medihelp-server/internal/middleware"
	"medihelp-server/internal/models"
	"medihelp-server/internal/notifier"
	"medihelp-server/internal/receiver"
	"medihelp-server/internal/routes"
	"medihelp-server/internal/session"
	"medihelp-server/internal/store"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format, "medihelp-server")
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer lg.Sync()

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		lg.Fatal("Error connecting to database", zap.Error(err))
	}

	users := store.NewUserRepository(db, lg)
	if cfg.Push.ServerKey == "" {
		lg.Warn("FCM_SERVER_KEY is not set, call notifications will fail")
	}
	calls := notifier.NewClient(cfg.Push.Endpoint, cfg.Push.ServerKey, cfg.Push.Timeout, lg)

	rcv := newReceiver(cfg, users, lg)
	sessions := session.NewManager(users, calls, cfg.RoleLookupTimeout, lg)
	defer sessions.Shutdown()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(lg))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, cfg, routes.Services{
		Sessions: sessions,
		Receiver: rcv,
		Logger:   lg,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}
	go func() {
		lg.Info("Server running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("Server shutdown failed", zap.Error(err))
	}
}

// newReceiver keeps channels and trays in Redis when REDIS_ADDR is set and in
// memory otherwise.
func newReceiver(cfg *config.Config, users *store.UserRepository, lg *zap.Logger) *receiver.Service {
	if cfg.Redis.Addr == "" {
		lg.Info("REDIS_ADDR not set, notifications kept in memory")
		mem := receiver.NewMemoryStore()
		return receiver.NewService(mem, mem, users, lg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		lg.Fatal("Error connecting to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	}
	rs := receiver.NewRedisStore(client)
	return receiver.NewService(rs, rs, users, lg)
}
