// cmd/personalcal is the application entry point. It wires together all
// layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"personalcal/internal/auth"
	"personalcal/internal/calendar"
	"personalcal/internal/config"
	"personalcal/internal/database"
	"personalcal/internal/handler"
	"personalcal/internal/repository"
	"personalcal/internal/service"
)

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "personalcal",
		Usage: "Single-user personal calendar server.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to a YAML config file."},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error."},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the calendar web server.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "in-memory", Usage: "Use a volatile in-memory store instead of PostgreSQL."},
			&cli.BoolFlag{Name: "skip-migrate", Usage: "Do not bootstrap the schema on startup."},
		},
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"))
			slog.SetDefault(logger)
			ctx := context.Background()

			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if cfg.Password == "" {
				// Fail closed, not fast: the server still boots, but every
				// login attempt will be rejected.
				logger.Warn("APP_PASSWORD is not set; all logins will be rejected")
			}

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			var repo service.Repository
			if c.Bool("in-memory") {
				logger.Info("using in-memory event store; contents are lost on exit")
				repo = repository.NewMemory()
			} else {
				pool, err := database.NewPool(ctx, cfg.Database)
				if err != nil {
					return fmt.Errorf("database: %w", err)
				}
				defer pool.Close()
				logger.Info("connected to PostgreSQL", "host", cfg.Database.Host, "db", cfg.Database.Name)

				if !c.Bool("skip-migrate") {
					if err := database.Migrate(ctx, pool); err != nil {
						return err
					}
				}
				repo = repository.NewPostgres(pool)
			}

			svc := service.NewEventService(repo)
			gate := auth.NewGate(cfg.Password)
			view := calendar.New(cfg.WeekStartDay(), loc)
			h := handler.New(svc, gate, view, logger, cfg.WebDir)

			srv := &http.Server{
				Addr:         cfg.Listen,
				Handler:      h.Routes(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", cfg.Listen)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("server: %w", err)
			case sig := <-quit:
				logger.Info("shutting down", "signal", sig.String())
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			logger.Info("server stopped")
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Bootstrap the database schema and exit.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"))
			slog.SetDefault(logger)
			ctx := context.Background()

			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			pool, err := database.NewPool(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer pool.Close()

			if err := database.Migrate(ctx, pool); err != nil {
				return err
			}
			logger.Info("schema is up to date")
			return nil
		},
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
