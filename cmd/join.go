package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/repositories"
	"github.com/desertthunder/floodjoin/internal/services"
	"github.com/desertthunder/floodjoin/internal/shared"
	"github.com/desertthunder/floodjoin/internal/tasks"
	"github.com/desertthunder/floodjoin/internal/ui"
	"github.com/urfave/cli/v3"
)

// joinReport is the --json output of the join command.
type joinReport struct {
	RunID    string        `json:"run_id,omitempty"`
	Joined   int           `json:"joined"`
	Failed   int           `json:"failed"`
	Outcomes []outcomeJSON `json:"outcomes"`
}

type outcomeJSON struct {
	Name     string `json:"name"`
	Joined   bool   `json:"joined"`
	Source   string `json:"source"`
	Username string `json:"username,omitempty"`
	Title    string `json:"title,omitempty"`
	Entity   string `json:"entity,omitempty"`
	Error    string `json:"error,omitempty"`
}

func toOutcomeJSON(o models.JoinOutcome) outcomeJSON {
	out := outcomeJSON{
		Name:   o.Name,
		Joined: o.Joined,
		Source: string(o.Source),
		Error:  o.Error(),
	}
	if o.Resolved != nil {
		out.Username = o.Resolved.Username
		out.Title = o.Resolved.Title
		out.Entity = o.Resolved.Ref.String()
	}
	return out
}

// Join resolves and joins every channel named on the command line.
//
// Attempts are recorded unless --no-history is set or the database cannot be opened.
// Returns an error wrapping [shared.ErrJoinFailed] when any channel could not be joined.
func (r *Runner) Join(ctx context.Context, cmd *cli.Command) error {
	names := cmd.Args().Slice()
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one channel name is required", shared.ErrMissingArgument)
	}

	opts := r.engineOpts(cmd)
	useTUI := cmd.Bool("tui")

	var runID string
	if !cmd.Bool("no-history") {
		repo, closeDB, err := r.openHistory()
		if err != nil {
			r.logger.Warn("join history disabled", "error", err)
		} else {
			defer closeDB()
			recorder := repositories.NewAttemptRecorder(repo, shared.GenerateID())
			runID = recorder.RunID()
			opts.Recorder = recorder
		}
	}

	if useTUI {
		fileLogger, err := shared.NewFileLogger("./tmp/floodjoin-tui.log")
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
		opts.Logger = fileLogger
	}

	var outcomes []models.JoinOutcome
	err := r.connector.Connect(ctx, func(ctx context.Context, ch services.Channels) error {
		engine := tasks.NewJoinEngine(ch, opts)
		if useTUI {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			model := ui.NewJoinModel(ctx, engine, names)
			_, err := tea.NewProgram(model).Run()
			// Quitting early leaves the batch running; stop it before the client and history close.
			cancel()
			outcomes = model.Wait()
			if err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		}

		outcomes = engine.JoinAll(ctx, names, nil)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	joined, failed := tasks.Summary(outcomes)

	if cmd.Bool("json") {
		report := joinReport{RunID: runID, Joined: joined, Failed: failed, Outcomes: make([]outcomeJSON, 0, len(outcomes))}
		for _, o := range outcomes {
			report.Outcomes = append(report.Outcomes, toOutcomeJSON(o))
		}
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
	} else if !useTUI {
		for _, o := range outcomes {
			r.writeOutcome(o)
		}
		r.writePlainln("Joined %d/%d channels", joined, len(outcomes))
		if runID != "" {
			r.writePlain("%s\n", ui.Styles.Help("run "+runID))
		}
	}

	if failed > 0 || len(outcomes) < len(names) {
		return fmt.Errorf("%w: %d of %d channels", shared.ErrJoinFailed, len(names)-joined, len(names))
	}
	return nil
}

// engineOpts builds the engine settings from config, letting explicitly set flags win.
func (r *Runner) engineOpts(cmd *cli.Command) tasks.EngineOpts {
	interval := r.config.Join.Interval.Duration
	if cmd.IsSet("interval") {
		interval = cmd.Duration("interval")
	}
	burst := r.config.Join.Burst
	if cmd.IsSet("burst") {
		burst = cmd.Int("burst")
	}

	return tasks.EngineOpts{
		Logger:      r.logger,
		SearchLimit: r.config.Join.Limit(),
		Interval:    interval,
		Burst:       burst,
	}
}

func (r *Runner) writeOutcome(o models.JoinOutcome) {
	if !o.Joined {
		r.writePlain("%s %s: %s\n", ui.Styles.Status(false), o.Name, ui.Styles.Warn(o.Error()))
		return
	}

	detail := fmt.Sprintf("via %s", o.Source)
	if o.Resolved != nil {
		detail = fmt.Sprintf("%s, %s", detail, o.Resolved.DisplayName())
	}
	r.writePlain("%s %s (%s)\n", ui.Styles.Status(true), o.Name, detail)
}
