package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/floodjoin/internal/shared"
	"github.com/desertthunder/floodjoin/internal/ui"
)

// historyTUI launches the interactive history browser over source.
func (r *Runner) historyTUI(ctx context.Context, source ui.HistorySource, criteria map[string]any) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/floodjoin-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewHistoryModel(ctx, source, criteria)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
