package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgHistoryFetched MsgKind = iota
	MsgProgressUpdate
	MsgJoinComplete
)

type historyFetched struct {
	attempts []*models.JoinAttempt
	err      error
}

// historyFetchedMsg is the constructor for [MsgHistoryFetched]
func historyFetchedMsg(attempts []*models.JoinAttempt, err error) Msg {
	return Msg{kind: MsgHistoryFetched, data: historyFetched{attempts, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// joinCompleteMsg is the constructor for [MsgJoinComplete]
func joinCompleteMsg(outcomes []models.JoinOutcome) Msg {
	return Msg{kind: MsgJoinComplete, data: outcomes}
}
