package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/punkzieeee/demo-socketio/internal/signaling"
)

func TestWatchModelShowsStats(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) (signaling.Stats, error) {
		calls++
		return sampleStats, nil
	}
	m := NewWatchModel(fetch, time.Millisecond)

	if !strings.Contains(m.View(), "Loading stats") {
		t.Errorf("initial view = %q", m.View())
	}

	msg := m.fetchCmd()()
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("stats update did not schedule a refresh")
	}
	m = next.(WatchModel)
	if calls != 1 || !m.loaded {
		t.Fatalf("calls=%d loaded=%v", calls, m.loaded)
	}
	if !strings.Contains(m.View(), "alpha") {
		t.Error("view does not list rooms")
	}

	next, _ = m.Update(statsMsg{err: errors.New("boom")})
	m = next.(WatchModel)
	if !strings.Contains(m.View(), "stale: boom") || !strings.Contains(m.View(), "alpha") {
		t.Error("failed refresh dropped the last good snapshot")
	}
}

func TestWatchModelFirstFetchFails(t *testing.T) {
	m := NewWatchModel(nil, 0)
	if m.interval != time.Second {
		t.Errorf("interval = %v, want default 1s", m.interval)
	}

	next, _ := m.Update(statsMsg{err: errors.New("connection refused")})
	if got := next.(WatchModel).View(); !strings.Contains(got, "connection refused") {
		t.Errorf("view = %q", got)
	}
}

func TestWatchModelQuit(t *testing.T) {
	m := NewWatchModel(nil, time.Second)
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Errorf("%s: no command", key)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", key)
		}
	}
}
