package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/tasks"
)

type mockJoiner struct {
	outcomes []models.JoinOutcome
	names    []string
}

func (m *mockJoiner) SearchChannel(ctx context.Context, name string) models.Resolution {
	return models.NotFound(nil)
}

func (m *mockJoiner) JoinChannel(ctx context.Context, name string) bool { return false }

func (m *mockJoiner) Join(ctx context.Context, name string, progress chan<- tasks.ProgressUpdate) models.JoinOutcome {
	return models.JoinOutcome{Name: name}
}

func (m *mockJoiner) JoinAll(ctx context.Context, names []string, progress chan<- tasks.ProgressUpdate) []models.JoinOutcome {
	m.names = names
	progress <- tasks.ProgressUpdate{Phase: tasks.JoinComplete, Step: 1, Total: len(names), Message: "done"}
	return m.outcomes
}

// blockingJoiner holds the batch open until its context is cancelled.
type blockingJoiner struct {
	mockJoiner
	started chan struct{}
}

func (b *blockingJoiner) JoinAll(ctx context.Context, names []string, progress chan<- tasks.ProgressUpdate) []models.JoinOutcome {
	close(b.started)
	<-ctx.Done()
	outcomes := make([]models.JoinOutcome, len(names))
	for i, name := range names {
		outcomes[i] = models.JoinOutcome{Name: name, Err: ctx.Err()}
	}
	return outcomes
}

type mockHistory struct {
	attempts []*models.JoinAttempt
	err      error
	criteria []map[string]any
}

func (m *mockHistory) List(criteria map[string]any) ([]*models.JoinAttempt, error) {
	m.criteria = append(m.criteria, criteria)
	return m.attempts, m.err
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestJoinModel(t *testing.T) {
	joiner := &mockJoiner{outcomes: []models.JoinOutcome{
		{Name: "a", Joined: true, Source: models.SourceDirect},
		{Name: "b", Err: errors.New("could not find channel entity for \"b\"")},
	}}
	m := NewJoinModel(context.Background(), joiner, []string{"a", "b"})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected Init to start the batch")
	}

	msg := cmd()
	progress, ok := msg.(Msg)
	if !ok || progress.kind != MsgProgressUpdate {
		t.Fatalf("expected progress message first, got %#v", msg)
	}

	_, cmd = m.Update(msg)
	if !strings.Contains(m.View(), "Done (1/2)") {
		t.Errorf("expected progress in view, got %q", m.View())
	}

	msg = cmd()
	complete, ok := msg.(Msg)
	if !ok || complete.kind != MsgJoinComplete {
		t.Fatalf("expected completion message, got %#v", msg)
	}
	m.Update(msg)

	if m.view != ResultView {
		t.Errorf("expected ResultView, got %v", m.view)
	}
	if len(m.Outcomes()) != 2 {
		t.Errorf("expected 2 outcomes, got %d", len(m.Outcomes()))
	}
	if len(joiner.names) != 2 {
		t.Errorf("expected joiner to receive names, got %v", joiner.names)
	}
	if !strings.Contains(m.resultList.Title, "Joined 1/2") {
		t.Errorf("unexpected result title %q", m.resultList.Title)
	}

	_, cmd = m.Update(runes("q"))
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestJoinModelWait(t *testing.T) {
	t.Run("returns batch outcomes", func(t *testing.T) {
		joiner := &mockJoiner{outcomes: []models.JoinOutcome{{Name: "a", Joined: true}}}
		m := NewJoinModel(context.Background(), joiner, []string{"a"})
		m.Init()

		got := m.Wait()
		if len(got) != 1 || !got[0].Joined {
			t.Errorf("expected joined outcome, got %v", got)
		}
	})

	t.Run("quit mid batch waits for cancelled join", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		joiner := &blockingJoiner{started: make(chan struct{})}
		m := NewJoinModel(ctx, joiner, []string{"a", "b"})
		m.Init()
		<-joiner.started

		if _, cmd := m.Update(runes("q")); cmd == nil {
			t.Fatal("expected quit command")
		}

		waited := make(chan []models.JoinOutcome)
		go func() { waited <- m.Wait() }()

		select {
		case <-waited:
			t.Fatal("Wait returned while the batch was still running")
		case <-time.After(20 * time.Millisecond):
		}

		cancel()
		got := <-waited
		if len(got) != 2 || !errors.Is(got[1].Err, context.Canceled) {
			t.Errorf("expected cancelled outcomes, got %v", got)
		}
	})

	t.Run("history model has nothing to wait for", func(t *testing.T) {
		m := NewHistoryModel(context.Background(), &mockHistory{}, nil)
		if got := m.Wait(); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestHistoryModel(t *testing.T) {
	attempts := []*models.JoinAttempt{
		models.NewJoinAttempt("run-1", "BotSorati", true, models.SourceSearch, ""),
		models.NewJoinAttempt("run-1", "NoSuchChannel", false, models.SourceNone, "could not find channel entity"),
	}

	t.Run("loads attempts", func(t *testing.T) {
		source := &mockHistory{attempts: attempts}
		m := NewHistoryModel(context.Background(), source, map[string]any{"limit": 10})

		m.Update(m.Init()())

		if !m.loaded || len(m.attempts) != 2 {
			t.Fatalf("expected 2 attempts loaded, got %d", len(m.attempts))
		}
		if source.criteria[0]["limit"] != 10 {
			t.Errorf("expected criteria passed through, got %v", source.criteria[0])
		}
		if !strings.Contains(m.historyList.Title, "Join attempts (2)") {
			t.Errorf("unexpected title %q", m.historyList.Title)
		}
	})

	t.Run("toggle failed refetches with filter", func(t *testing.T) {
		source := &mockHistory{attempts: attempts}
		m := NewHistoryModel(context.Background(), source, nil)
		m.Update(m.Init()())

		_, cmd := m.Update(runes("f"))
		if cmd == nil {
			t.Fatal("expected refetch command")
		}
		m.Update(cmd())

		if joined, ok := source.criteria[1]["joined"].(bool); !ok || joined {
			t.Errorf("expected joined=false criteria, got %v", source.criteria[1])
		}
		if !strings.HasPrefix(m.historyList.Title, "Failed") {
			t.Errorf("expected failed title, got %q", m.historyList.Title)
		}

		_, cmd = m.Update(runes("f"))
		m.Update(cmd())
		if _, ok := source.criteria[2]["joined"]; ok {
			t.Errorf("expected filter removed, got %v", source.criteria[2])
		}
	})

	t.Run("enter shows detail and esc returns", func(t *testing.T) {
		source := &mockHistory{attempts: attempts}
		m := NewHistoryModel(context.Background(), source, nil)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
		m.Update(m.Init()())

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != DetailView || m.selected != attempts[0] {
			t.Fatalf("expected detail of first attempt, got view %v", m.view)
		}
		if !strings.Contains(m.View(), "BotSorati") {
			t.Errorf("expected channel in detail view, got %q", m.View())
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != HistoryView || m.selected != nil {
			t.Errorf("expected back to history, got view %v", m.view)
		}
	})

	t.Run("source error is shown", func(t *testing.T) {
		source := &mockHistory{err: errors.New("database is locked")}
		m := NewHistoryModel(context.Background(), source, nil)
		m.Update(m.Init()())

		if !strings.Contains(m.View(), "database is locked") {
			t.Errorf("expected error in view, got %q", m.View())
		}
		if _, cmd := m.Update(runes("q")); cmd == nil {
			t.Error("expected quit to still work")
		}
	})
}

func TestPalette(t *testing.T) {
	p := NewPalette("#000000", "#000000", "#000000", "#000000", "#000000")
	if !strings.Contains(p.Status(true), "✓") || !strings.Contains(p.Status(false), "✗") {
		t.Error("unexpected status markers")
	}
	if !strings.Contains(p.OK("joined"), "joined") {
		t.Error("expected text preserved")
	}
}
