package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/services"
	"github.com/desertthunder/floodjoin/internal/shared"
	"github.com/desertthunder/floodjoin/internal/tasks"
	"github.com/desertthunder/floodjoin/internal/ui"
	"github.com/urfave/cli/v3"
)

// searchResult is the --json output of the search command.
type searchResult struct {
	Query    string `json:"query"`
	Found    bool   `json:"found"`
	Username string `json:"username,omitempty"`
	Title    string `json:"title,omitempty"`
	Entity   string `json:"entity,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Search runs the directory search for a single name without direct lookup or joining.
//
// A search error is reported the same way as no match: the result is not found.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: channel name is required", shared.ErrMissingArgument)
	}

	limit := r.config.Join.Limit()
	if cmd.IsSet("limit") {
		limit = cmd.Int("limit")
	}

	var resolution models.Resolution
	err := r.connector.Connect(ctx, func(ctx context.Context, ch services.Channels) error {
		engine := tasks.NewJoinEngine(ch, tasks.EngineOpts{Logger: r.logger, SearchLimit: limit})
		resolution = engine.SearchChannel(ctx, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	if cmd.Bool("json") {
		result := searchResult{Query: shared.TrimAt(name), Found: resolution.Found()}
		if c := resolution.Candidate; c != nil {
			result.Username = c.Username
			result.Title = c.Title
			result.Entity = c.Ref.String()
		}
		if resolution.Err != nil {
			result.Error = resolution.Err.Error()
		}
		if err := r.writeJSON(result, true); err != nil {
			return err
		}
	} else if c := resolution.Candidate; c != nil {
		r.writePlain("%s %s (%s)\n", ui.Styles.Status(true), c.DisplayName(), c.Ref)
		if c.Title != "" {
			r.writePlain("  %s\n", c.Title)
		}
	} else {
		r.writePlain("%s no channel named %q\n", ui.Styles.Status(false), shared.TrimAt(name))
	}

	if !resolution.Found() {
		return fmt.Errorf("%w for %q", shared.ErrChannelNotFound, name)
	}
	return nil
}
