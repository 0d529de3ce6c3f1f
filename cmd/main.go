// Package main wires the HTTP server for the grade and team service.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"grade-teams/config"
	"grade-teams/internal/repository"
	"grade-teams/internal/transport/http/middleware"
	"grade-teams/internal/transport/http/server/handlers-fiber"
	"grade-teams/internal/usecase"
	"grade-teams/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	repo, err := repository.New(ctx, cfg.Storage.Backend, log, cfg)
	if err != nil {
		log.Errorw("repository initialization error", "error", err)
		return
	}
	if err := repo.OnStart(ctx); err != nil {
		log.Errorw("repository start error", "backend", cfg.Storage.Backend, "error", err)
		return
	}
	defer func() {
		_ = repo.OnStop(context.Background())
	}()

	uc := usecase.New(repo, repo, cfg.HTTP.RequestTimeout)

	serv := fiber.New(fiber.Config{
		Immutable:    true,
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})
	serv.Use(recover.New())
	serv.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	serv.Use(middleware.RequestLogger(log))

	handlers_fiber.NewHandler(log, uc).RegisterRoutes(serv)

	go func() {
		log.Infow("listening", "addr", cfg.ServerAddr(), "backend", cfg.Storage.Backend)
		if err := serv.Listen(cfg.ServerAddr()); err != nil {
			log.Errorw("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := serv.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout, "error", err)
	}
}
