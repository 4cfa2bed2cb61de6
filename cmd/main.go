package main

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"tracker-agent/internal/app"
	"tracker-agent/internal/app/cli"
	"tracker-agent/internal/config"
	"tracker-agent/internal/config/logger"
)

func main() {
	_ = godotenv.Load()

	opts, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := sentry.Init(sentry.ClientOptions{Dsn: os.Getenv("SENTRY_DSN")}); err != nil {
		fmt.Fprintf(os.Stderr, "sentry init failed: %v\n", err)
	}
	defer sentry.Flush(2 * time.Second)

	createApp(cfg, opts).Run()
}

func createApp(cfg *config.Config, opts *cli.Options) *fx.App {
	return fx.New(
		fx.WithLogger(createFxLogger(cfg)),
		fx.Supply(cfg, opts),
		fx.Provide(func() logger.Logger {
			return logger.NewLogger(cfg)
		}),
		app.Module,
	)
}

func createFxLogger(cfg *config.Config) func() fxevent.Logger {
	return func() fxevent.Logger {
		if cfg.Logging.Level == logger.DebugLevel {
			return &fxevent.ConsoleLogger{W: os.Stdout}
		}

		return fxevent.NopLogger
	}
}
