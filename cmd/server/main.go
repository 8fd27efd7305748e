package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/classpulse/dashboard-api/internal/auth"
	"github.com/classpulse/dashboard-api/internal/config"
	"github.com/classpulse/dashboard-api/internal/httpapi"
	"github.com/classpulse/dashboard-api/internal/logger"
	"github.com/classpulse/dashboard-api/internal/middleware"
	"github.com/classpulse/dashboard-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.Must(cfg.LogLevel)
	defer func() { _ = zlog.Sync() }()

	tokens, err := auth.NewTokenService(
		[]byte(cfg.SigningKey),
		cfg.SigningMethod,
		cfg.AccessTokenTTL(),
		cfg.RefreshTokenTTL(),
		zlog,
	)
	if err != nil {
		zlog.Fatal("token service", zap.Error(err))
	}

	anonClient := store.NewClient(cfg.DatastoreURL, cfg.DatastoreAnonKey, zlog)
	serviceClient := store.NewClient(cfg.DatastoreURL, cfg.DatastoreServiceKey, zlog)

	users := store.NewUsers(anonClient, zlog)
	adminUsers := store.NewUsers(serviceClient, zlog)

	auther := auth.NewAuthenticator(users, tokens, zlog)

	srv := httpapi.New(httpapi.Options{
		Logger:      zlog,
		Auther:      auther,
		Tokens:      tokens,
		Users:       users,
		AdminUsers:  adminUsers,
		Data:        anonClient,
		CORSOrigins: cfg.CORSOrigins,
		AllowList:   middleware.DefaultAllowList(),
	})

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.Listen(cfg.HTTPAddr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
		if err := srv.Shutdown(); err != nil {
			zlog.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			zlog.Fatal("server", zap.Error(err))
		}
	}
}
