package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yusufkecer/bmi-tracker/internal/cache"
	"github.com/yusufkecer/bmi-tracker/internal/config"
	"github.com/yusufkecer/bmi-tracker/internal/db"
	"github.com/yusufkecer/bmi-tracker/internal/handler"
	"github.com/yusufkecer/bmi-tracker/internal/logging"
	"github.com/yusufkecer/bmi-tracker/internal/middleware"
	"github.com/yusufkecer/bmi-tracker/internal/repository"
	"github.com/yusufkecer/bmi-tracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	if err := logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.Fatalf("logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("database connection failed: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database); err != nil {
		logrus.Fatalf("migrations failed: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	recordRepo := repository.NewRecordRepository(database)

	var historyCache service.HistoryCache
	if cfg.RedisAddr != "" {
		c := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.HistoryCacheTTL)
		defer c.Close()
		historyCache = c
		logrus.WithField("addr", cfg.RedisAddr).Info("history cache enabled")
	}

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	users := service.NewUserService(userRepo)
	records := service.NewRecordService(recordRepo, historyCache)
	tracker := service.NewTracker(users, records)

	r := handler.NewRouter(handler.RouterConfig{
		Tracker:        tracker,
		Users:          users,
		Tokens:         middleware.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL),
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustedProxies: trustedProxies,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("graceful shutdown failed")
		}
	}()

	logrus.WithField("addr", srv.Addr).Info("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("server error: %v", err)
	}
	logrus.Info("server stopped")
}
