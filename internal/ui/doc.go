// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// Two entry points share one [Model]:
//  1. [NewJoinModel] : runs a batch join, showing live progress in [JoinView], then the outcomes in [ResultView]
//  2. [NewHistoryModel] : browses recorded join attempts in [HistoryView], with [DetailView] for a single attempt
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the JoinEngine, providing non-blocking status reporting during a batch.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, f, r, q) with contextual help displayed via charmbracelet/bubbles/help.
// [Styles] is also used by the CLI for its colored status lines.
package ui
