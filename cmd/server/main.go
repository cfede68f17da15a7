package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianliechti/docagent/config"
	"github.com/adrianliechti/docagent/pkg/otel"
	"github.com/adrianliechti/docagent/server"

	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	godotenv.Load()

	configFlag := flag.String("config", os.Getenv("CONFIG"), "config file")
	addressFlag := flag.String("address", "", "listen address")

	flag.Parse()

	if otel.EnableDebug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFlag, *addressFlag); err != nil {
		slog.Error("server.failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path, address string) error {
	if otel.EnableTelemetry {
		shutdown, err := otel.Setup(ctx, "docagent", version)

		if err != nil {
			return err
		}

		defer shutdown(context.Background())
	}

	cfg, err := config.Parse(path)

	if err != nil {
		return err
	}

	cfg.Version = version

	if address != "" {
		cfg.Address = address
	}

	s, err := server.New(cfg)

	if err != nil {
		return err
	}

	return s.ListenAndServe(ctx)
}
