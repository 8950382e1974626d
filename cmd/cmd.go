// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// setupCommand creates the config file and prepares the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the template, initialize the database and run migrations",
		Action: r.Setup,
	}
}

// joinCommand resolves and joins one or more channels.
func joinCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "join",
		Usage:     "Join channels by username, t.me link or @name",
		ArgsUsage: "NAME...",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Minimum time between joins (overrides join.interval)",
				Value: 2 * time.Second,
			},
			&cli.IntFlag{
				Name:  "burst",
				Usage: "Joins allowed back to back before the interval applies (overrides join.burst)",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record attempts in the database",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show live progress in an interactive view",
			},
		},
		Action: r.Join,
	}
}

// searchCommand runs the directory search without joining.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search for a channel with an exact (case-insensitive) username match",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "name",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of search results to scan (overrides join.search_limit)",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// historyCommand lists, exports and clears recorded join attempts.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded join attempts",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of attempts to show",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "failed",
				Usage: "Only show failed attempts",
			},
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Only show attempts for this channel",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Only show attempts from this run ID",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Browse attempts interactively",
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Remove all recorded attempts",
				Action: r.HistoryClear,
			},
			{
				Name:  "export",
				Usage: "Export recorded attempts to CSV, Markdown or plain text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, md or txt",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: join_history.<format>)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of attempts to export (0 for all)",
					},
					&cli.BoolFlag{
						Name:  "failed",
						Usage: "Only export failed attempts",
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Only export attempts from this run ID",
					},
				},
				Action: r.HistoryExport,
			},
		},
	}
}
