package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/punkzieeee/demo-socketio/internal/signaling"
)

// StatsFetcher loads one stats snapshot.
type StatsFetcher func(ctx context.Context) (signaling.Stats, error)

type statsMsg struct {
	stats signaling.Stats
	err   error
}

type refreshMsg time.Time

// WatchModel is a live dashboard over a relay's stats endpoint.
type WatchModel struct {
	fetch    StatsFetcher
	interval time.Duration
	spinner  spinner.Model

	stats   signaling.Stats
	err     error
	loaded  bool
	updated time.Time
}

func NewWatchModel(fetch StatsFetcher, interval time.Duration) WatchModel {
	if interval <= 0 {
		interval = time.Second
	}
	return WatchModel{
		fetch:    fetch,
		interval: interval,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(SpinnerStyle)),
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m WatchModel) fetchCmd() tea.Cmd {
	fetch, timeout := m.fetch, m.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := fetch(ctx)
		return statsMsg{stats: s, err: err}
	}
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case statsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.stats = msg.stats
			m.loaded = true
			m.updated = time.Now()
		}
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return refreshMsg(t) })

	case refreshMsg:
		return m, m.fetchCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m WatchModel) View() string {
	header := HeaderStyle.Render(IconSignal + " Signaling relay")

	var body string
	switch {
	case !m.loaded && m.err == nil:
		body = fmt.Sprintf("%s Loading stats...", m.spinner.View())
	case !m.loaded:
		body = ErrorStyle.Render(fmt.Sprintf("%s %v", IconError, m.err))
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			SummaryView(m.stats),
			"",
			RoomsView(m.stats.RoomList),
		)
		if m.err != nil {
			body += "\n" + WarningStyle.Render(fmt.Sprintf("%s stale: %v", IconWarning, m.err))
		}
	}

	status := "waiting for first update"
	if m.loaded {
		status = "updated " + m.updated.Format("15:04:05")
	}
	footer := FooterStyle.Render(fmt.Sprintf("%s %s • q to quit", m.spinner.View(), status))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer) + "\n"
}

// RunWatch runs the dashboard until the user quits.
func RunWatch(fetch StatsFetcher, interval time.Duration) error {
	_, err := tea.NewProgram(NewWatchModel(fetch, interval), tea.WithAltScreen()).Run()
	return err
}
