package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jedib0t/go-pretty/v6/text"
	prettytable "github.com/jedib0t/go-pretty/v6/table"

	"github.com/punkzieeee/demo-socketio/internal/signaling"
)

// Export formats understood by RenderStats.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

var roomHeaders = []string{"Room", "State", "Members", "Caller"}

func roomRows(rooms []signaling.RoomInfo) [][]string {
	rows := make([][]string, 0, len(rooms))
	for _, r := range rooms {
		rows = append(rows, []string{r.Room, r.State, fmt.Sprintf("%d", r.Members), r.CallerID})
	}
	return rows
}

// styledTable renders zebra rows. When stateCol is a valid column its
// cells are colored by StateStyle.
func styledTable(headers []string, rows [][]string, stateCol int) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case col == stateCol && row >= 0 && row < len(rows):
				return StateStyle(rows[row][col])
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})
}

// SummaryView renders the registry counters.
func SummaryView(s signaling.Stats) string {
	rows := [][]string{
		{"Connections", fmt.Sprintf("%d", s.Connections)},
		{"Rooms", fmt.Sprintf("%d", s.Rooms)},
		{"Waiting", fmt.Sprintf("%d", s.Waiting)},
		{"Active", fmt.Sprintf("%d", s.Active)},
	}
	return styledTable([]string{"Metric", "Value"}, rows, -1).Render()
}

// RoomsView renders one row per room.
func RoomsView(rooms []signaling.RoomInfo) string {
	if len(rooms) == 0 {
		return MutedStyle.Render("No rooms")
	}
	return styledTable(roomHeaders, roomRows(rooms), 1).Render()
}

// StatsView renders the full stats snapshot.
func StatsView(s signaling.Stats) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(IconSignal+" Signaling relay"),
		SummaryView(s),
		"",
		RoomsView(s.RoomList),
	)
}

// ExportStats renders the room list as plain markdown or CSV for piping
// into other tools.
func ExportStats(s signaling.Stats, format string) (string, error) {
	t := prettytable.NewWriter()
	header := make(prettytable.Row, len(roomHeaders))
	for i, h := range roomHeaders {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, r := range s.RoomList {
		t.AppendRow(prettytable.Row{r.Room, r.State, r.Members, r.CallerID})
	}
	t.AppendFooter(prettytable.Row{"Total", "", s.Rooms, fmt.Sprintf("%d connections", s.Connections)})
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	switch strings.ToLower(format) {
	case FormatMarkdown:
		return t.RenderMarkdown(), nil
	case FormatCSV:
		return t.RenderCSV(), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// RenderStats prints s in the requested format.
func RenderStats(s signaling.Stats, format string) error {
	if format == "" || strings.EqualFold(format, FormatTable) {
		fmt.Println(StatsView(s))
		return nil
	}
	out, err := ExportStats(s, format)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
