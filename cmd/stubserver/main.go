// Command stubserver runs the in-memory quiz backend for local development.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/mcoot/quizgame/internal/stub"
)

func main() {
	cfg := stub.DefaultServerConfig()
	flag.StringVar(&cfg.Host, "host", cfg.Host, "listen host")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "listen port")
	seedUser := flag.String("seed-user", "", "create this account at startup (password: password)")
	seedPoints := flag.Int("seed-points", 0, "starting points for the seeded account")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	backend := stub.New(stub.Options{Logger: logger})
	if *seedUser != "" {
		backend.AddUser(*seedUser, "password")
		backend.SetPoints(*seedUser, *seedPoints)
		logger.Info("seeded account", slog.String("username", *seedUser), slog.Int("points", *seedPoints))
	}
	server := stub.NewServer(backend, cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
