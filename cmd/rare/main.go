// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Rare API server.
// It loads configuration, connects to the database, wires the stores and
// handlers into the dispatch table, and serves HTTP with graceful shutdown.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rare/internal/auth"
	"rare/internal/config"
	"rare/internal/database"
	"rare/internal/handlers"
	"rare/internal/middleware"
	"rare/internal/router"
	"rare/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"db_driver", cfg.DBDriver,
	)

	db, err := database.Connect(cfg.DBDriver, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Redis shares the auth rate limit across instances. Without it each
	// process keeps its own counters.
	var limiter middleware.Limiter
	if cfg.RedisEnabled() {
		rdb, err := database.ConnectRedis(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateWindow)
	} else {
		mem := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		defer mem.Stop()
		limiter = mem
	}
	slog.Info("auth rate limiter ready", "limiter", limiter.Name(), "limit", cfg.RateLimit, "window", cfg.RateWindow)

	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	commentStore := store.NewCommentStore(db)
	tagStore := store.NewTagStore(db)

	authService := auth.NewService(userStore, cfg.JWTSecret, cfg.TokenTTL)

	dispatcher := router.NewDispatcher(router.Handlers{
		Users:      handlers.NewUsers(userStore),
		Posts:      handlers.NewPosts(postStore),
		Categories: handlers.NewCategories(categoryStore),
		Comments:   handlers.NewComments(commentStore),
		Tags:       handlers.NewTags(tagStore),
		Auth:       handlers.NewAuth(authService),
	}, limiter)

	r := router.New(db, dispatcher)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
