package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/yellowcube/internal/infrastructure/config"
	"github.com/erp/yellowcube/internal/infrastructure/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	var (
		configPath string
		logLevel   string
	)
	flag.StringVar(&configPath, "config", "", "Path to the config file (default: search ./config.toml, ./config, /etc/yellowcube)")
	flag.StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	name, cmdArgs := args[0], args[1:]

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		App:        cfg.App.Name,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, log = logger.WithRun(ctx, log, uuid.NewString(), name)

	log.Debug("Starting connector",
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
		zap.String("operating_mode", cfg.Yellowcube.OperatingMode),
	)

	err = cmd.run(ctx, cfg, log, cmdArgs)
	stop()
	_ = log.Sync()

	switch {
	case err == nil:
	case errors.Is(err, errNotAccepted):
		os.Exit(3)
	case errors.Is(err, flag.ErrHelp):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		log.Error("Command failed", zap.Error(err))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Yellowcube warehouse connector %s

Usage:
  yellowcube [-config file] [-log-level level] <command> [arguments]

Commands:
`, version)
	for _, name := range commandOrder {
		fmt.Fprintf(os.Stderr, "  %-11s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(os.Stderr, `
Exit codes: 0 success, 1 error, 2 usage, 3 reply not accepted.
Run "yellowcube <command> -h" for the arguments of a command.
`)
}
