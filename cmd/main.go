package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/floodjoin/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})
	app := runner.app()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		stop()
		logger.Fatalf("application error: %v", err)
	}
}

// app builds the root command. Config is loaded in Before so --config applies to every subcommand.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "floodjoin",
		Usage:   "Join Telegram channels by name, falling back to search when direct lookup fails",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}
