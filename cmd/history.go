package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/floodjoin/internal/formatter"
	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/ui"
	"github.com/urfave/cli/v3"
)

// attemptJSON is the --json form of a recorded attempt.
type attemptJSON struct {
	ID        string `json:"id"`
	Sequence  int    `json:"sequence"`
	RunID     string `json:"run_id"`
	Channel   string `json:"channel"`
	Joined    bool   `json:"joined"`
	Source    string `json:"source"`
	Entity    string `json:"entity,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toAttemptJSON(a *models.JoinAttempt) attemptJSON {
	out := attemptJSON{
		ID:        a.ID(),
		Sequence:  a.Sequence(),
		RunID:     a.RunID(),
		Channel:   a.Channel(),
		Joined:    a.Joined(),
		Source:    string(a.Source()),
		Error:     a.ErrorMessage(),
		CreatedAt: a.CreatedAt().UTC().Format(time.RFC3339),
	}
	if !a.Peer().IsZero() {
		out.Entity = a.Peer().String()
	}
	return out
}

// historyCriteria maps the shared filter flags onto repository list criteria.
func historyCriteria(cmd *cli.Command) map[string]any {
	criteria := map[string]any{}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = limit
	}
	if cmd.Bool("failed") {
		criteria["joined"] = false
	}
	if channel := cmd.String("channel"); channel != "" {
		criteria["channel"] = channel
	}
	if run := cmd.String("run"); run != "" {
		criteria["run_id"] = run
	}
	return criteria
}

// History lists recorded join attempts, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	criteria := historyCriteria(cmd)

	if cmd.Bool("tui") {
		return r.historyTUI(ctx, repo, criteria)
	}

	attempts, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list join attempts: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]attemptJSON, 0, len(attempts))
		for _, a := range attempts {
			out = append(out, toAttemptJSON(a))
		}
		return r.writeJSON(out, true)
	}

	if len(attempts) == 0 {
		r.writePlain("No join attempts recorded\n")
		return nil
	}

	for _, a := range attempts {
		at := a.CreatedAt().Local().Format("2006-01-02 15:04:05")
		if a.Joined() {
			r.writePlain("%s %s %s (via %s)\n", ui.Styles.Help(at), ui.Styles.Status(true), a.Channel(), a.Source())
		} else {
			r.writePlain("%s %s %s: %s\n", ui.Styles.Help(at), ui.Styles.Status(false), a.Channel(), ui.Styles.Warn(a.ErrorMessage()))
		}
	}
	return nil
}

// HistoryClear soft-deletes every recorded attempt.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := repo.Clear()
	if err != nil {
		return err
	}

	r.logger.Info("cleared join history", "attempts", n)
	r.writePlain("%s Cleared %d join attempts\n", ui.Styles.OK("✓"), n)
	return nil
}

// HistoryExport writes recorded attempts to a CSV, Markdown or text file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, closeDB, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	attempts, err := repo.List(historyCriteria(cmd))
	if err != nil {
		return fmt.Errorf("failed to list join attempts: %w", err)
	}

	path, err := formatter.WriteExport(attempts, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported join history", "path", path, "attempts", len(attempts))
	r.writePlain("%s Exported %d join attempts to %s\n", ui.Styles.OK("✓"), len(attempts), path)
	return nil
}
