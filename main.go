package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/indra474/flower-project/configs"
	"github.com/indra474/flower-project/internal/auth"
	"github.com/indra474/flower-project/internal/catalog"
	"github.com/indra474/flower-project/internal/db"
	"github.com/indra474/flower-project/internal/handlers"
	"github.com/indra474/flower-project/internal/logger"
	"github.com/indra474/flower-project/internal/notifier"
	"github.com/indra474/flower-project/internal/shop"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.Database, logg)
	if err != nil {
		logg.Fatal("failed to connect to database", zap.Error(err))
	}

	flowers := catalog.NewService(conn)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logg.Warn("redis unreachable, catalog cache will fall back to the database", zap.Error(err))
		}
		flowers = catalog.NewCachedService(flowers, rdb, cfg.Redis.CacheTTL, logg)
	}

	var channels []notifier.Channel
	if cfg.Email.Enabled() {
		email, err := notifier.NewEmailNotifier(ctx, cfg.Email, logg)
		if err != nil {
			logg.Fatal("failed to set up email notifier", zap.Error(err))
		}
		channels = append(channels, email)
	}
	if cfg.AfricasTalking.Enabled() {
		sms := notifier.NewSMSNotifier(cfg.AfricasTalking, &http.Client{Timeout: 10 * time.Second}, logg)
		channels = append(channels, sms)
	}
	dispatcher := notifier.NewDispatcher(logg, notifier.DefaultSendTimeout, channels...)

	authSvc := auth.NewService(conn, logg)

	var oidc *auth.OIDC
	if cfg.OIDC.Enabled() {
		oidc, err = auth.NewOIDC(ctx, cfg.OIDC, authSvc, logg)
		if err != nil {
			logg.Fatal("failed to set up oidc", zap.Error(err))
		}
	}

	h := handlers.New(handlers.Deps{
		Catalog:  flowers,
		Cart:     shop.NewCartManager(conn, logg),
		Checkout: shop.NewCheckoutSelector(),
		Payment:  shop.NewPaymentOrchestrator(conn, logg, dispatcher),
		History:  shop.NewOrderHistory(conn),
		Auth:     authSvc,
		Log:      logg,
	})

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handlers.NewRouter(cfg.HTTP, h, oidc, logg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logg.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("http server shutdown failed", zap.Error(err))
	}
	dispatcher.Wait()

	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logg.Info("stopped")
}
