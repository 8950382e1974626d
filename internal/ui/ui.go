package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	JoinView ViewState = iota
	ResultView
	HistoryView
	DetailView
)

// HistorySource lists recorded attempts. Implemented by repositories.JoinAttemptRepository.
type HistorySource interface {
	List(criteria map[string]any) ([]*models.JoinAttempt, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	width  int
	height int

	joiner       tasks.Joiner
	names        []string
	progressChan chan tasks.ProgressUpdate
	done         chan []models.JoinOutcome
	finished     chan struct{}
	batch        []models.JoinOutcome
	progress     tasks.ProgressUpdate
	outcomes     []models.JoinOutcome
	resultList   list.Model

	history     HistorySource
	criteria    map[string]any
	failedOnly  bool
	loaded      bool
	attempts    []*models.JoinAttempt
	historyList list.Model
	selected    *models.JoinAttempt

	err  error
	help help.Model
	keys keyMap
}

// NewJoinModel creates a model that joins names with joiner and shows the outcomes.
func NewJoinModel(ctx context.Context, joiner tasks.Joiner, names []string) *Model {
	return &Model{
		ctx:    ctx,
		view:   JoinView,
		joiner: joiner,
		names:  names,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// NewHistoryModel creates a model that browses attempts from source filtered by criteria.
func NewHistoryModel(ctx context.Context, source HistorySource, criteria map[string]any) *Model {
	copied := make(map[string]any, len(criteria))
	for k, v := range criteria {
		copied[k] = v
	}
	joined, ok := copied["joined"].(bool)
	return &Model{
		ctx:        ctx,
		view:       HistoryView,
		history:    source,
		criteria:   copied,
		failedOnly: ok && !joined,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Outcomes returns the results of the batch once it completed.
func (m *Model) Outcomes() []models.JoinOutcome {
	return m.outcomes
}

// Wait blocks until the background batch has returned and gives back its outcomes.
// It returns nil immediately when no batch was started.
func (m *Model) Wait() []models.JoinOutcome {
	if m.finished == nil {
		return nil
	}
	<-m.finished
	return m.batch
}

// Init starts the batch join or fetches history, depending on the entry point.
func (m *Model) Init() tea.Cmd {
	if m.view == JoinView {
		return m.startJoin()
	}
	return m.fetchHistory()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.outcomes != nil {
			m.resultList.SetSize(m.listSize())
		}
		if m.loaded {
			m.historyList.SetSize(m.listSize())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case JoinView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgJoinComplete:
		m.outcomes = msg.data.([]models.JoinOutcome)
		if m.outcomes == nil {
			m.outcomes = []models.JoinOutcome{}
		}
		m.progressChan = nil
		m.done = nil
		items := make([]list.Item, len(m.outcomes))
		for i, o := range m.outcomes {
			items[i] = outcomeItem{outcome: o}
		}
		joined, _ := tasks.Summary(m.outcomes)
		m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = fmt.Sprintf("Joined %d/%d channels", joined, len(m.outcomes))
		m.resultList.SetSize(m.listSize())
		m.view = ResultView
		return m, nil

	case MsgHistoryFetched:
		data := msg.data.(historyFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.attempts = data.attempts
		items := make([]list.Item, len(data.attempts))
		for i, a := range data.attempts {
			items[i] = attemptItem{attempt: a}
		}
		m.historyList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.historyList.Title = m.historyTitle()
		m.historyList.SetSize(m.listSize())
		m.loaded = true
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return Styles.Err(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case JoinView:
		return m.renderJoin()
	case ResultView:
		return m.renderResult()
	case HistoryView:
		return m.renderHistory()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil || !m.loaded {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.historyList.SelectedItem().(attemptItem); ok {
			m.selected = item.attempt
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.failed):
		m.failedOnly = !m.failedOnly
		if m.failedOnly {
			m.criteria["joined"] = false
		} else {
			delete(m.criteria, "joined")
		}
		return m, m.fetchHistory()
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchHistory()
	}

	var cmd tea.Cmd
	m.historyList, cmd = m.historyList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.selected = nil
		m.view = HistoryView
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ResultView:
		if m.outcomes != nil {
			m.resultList, cmd = m.resultList.Update(msg)
		}
	case HistoryView:
		if m.loaded {
			m.historyList, cmd = m.historyList.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) fetchHistory() tea.Cmd {
	source, criteria := m.history, make(map[string]any, len(m.criteria))
	for k, v := range m.criteria {
		criteria[k] = v
	}
	return func() tea.Msg {
		attempts, err := source.List(criteria)
		return historyFetchedMsg(attempts, err)
	}
}

// startJoin runs the batch in the background. Outcomes are delivered before the progress channel closes.
func (m *Model) startJoin() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan []models.JoinOutcome, 1)
	m.finished = make(chan struct{})

	go func(progress chan tasks.ProgressUpdate, done chan []models.JoinOutcome, finished chan struct{}) {
		defer close(finished)
		m.batch = m.joiner.JoinAll(m.ctx, m.names, progress)
		done <- m.batch
		close(progress)
	}(m.progressChan, m.done, m.finished)

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return joinCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) historyTitle() string {
	if m.failedOnly {
		return fmt.Sprintf("Failed join attempts (%d)", len(m.attempts))
	}
	return fmt.Sprintf("Join attempts (%d)", len(m.attempts))
}

func (m *Model) renderJoin() string {
	title := Styles.Title(fmt.Sprintf("Joining %d channels", len(m.names)))

	var phase string
	switch m.progress.Phase {
	case tasks.ResolveDirect:
		phase = "Resolving"
	case tasks.SearchFallback:
		phase = "Searching"
	case tasks.JoinRequest:
		phase = "Joining"
	case tasks.JoinComplete:
		phase = "Done"
	}
	if m.progress.Total > 0 {
		phase = fmt.Sprintf("%s (%d/%d)", phase, m.progress.Step, m.progress.Total)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, phase, m.progress.Message, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.resultList.View(), helpView)
}

func (m *Model) renderHistory() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.failed, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.historyList.View(), helpView)
}

func (m *Model) renderDetail() string {
	a := m.selected
	if a == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(Styles.Title(fmt.Sprintf("%s %s", Styles.Status(a.Joined()), a.Channel())))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Status:   %s\n", a.Status())
	fmt.Fprintf(&b, "Source:   %s\n", a.Source())
	if peer := a.Peer(); !peer.IsZero() {
		fmt.Fprintf(&b, "Entity:   %s\n", peer)
	}
	fmt.Fprintf(&b, "Run:      %s\n", a.RunID())
	fmt.Fprintf(&b, "Attempt:  %s\n", a.ID())
	fmt.Fprintf(&b, "At:       %s\n", a.CreatedAt().Local().Format("2006-01-02 15:04:05"))
	if msg := a.ErrorMessage(); msg != "" {
		fmt.Fprintf(&b, "\n%s\n", Styles.Warn(msg))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}
