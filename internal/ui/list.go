package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/floodjoin/internal/models"
)

var (
	_ list.Item = outcomeItem{}
	_ list.Item = attemptItem{}
)

// outcomeItem wraps [models.JoinOutcome] to implement [list.Item].
type outcomeItem struct {
	outcome models.JoinOutcome
}

func (i outcomeItem) FilterValue() string { return i.outcome.Name }
func (i outcomeItem) Title() string {
	return fmt.Sprintf("%s %s", Styles.Status(i.outcome.Joined), i.outcome.Name)
}
func (i outcomeItem) Description() string {
	if !i.outcome.Joined {
		return i.outcome.Error()
	}
	desc := fmt.Sprintf("via %s", i.outcome.Source)
	if i.outcome.Resolved != nil {
		desc = fmt.Sprintf("%s • %s", desc, i.outcome.Resolved.DisplayName())
	}
	return desc
}

// attemptItem wraps [models.JoinAttempt] to implement [list.Item].
type attemptItem struct {
	attempt *models.JoinAttempt
}

func (i attemptItem) FilterValue() string { return i.attempt.Channel() }
func (i attemptItem) Title() string {
	return fmt.Sprintf("%s %s", Styles.Status(i.attempt.Joined()), i.attempt.Channel())
}
func (i attemptItem) Description() string {
	desc := i.attempt.CreatedAt().Local().Format("2006-01-02 15:04:05")
	if msg := i.attempt.ErrorMessage(); msg != "" {
		return fmt.Sprintf("%s • %s", desc, msg)
	}
	return fmt.Sprintf("%s • via %s", desc, i.attempt.Source())
}
