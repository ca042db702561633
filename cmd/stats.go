package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/punkzieeee/demo-socketio/internal/signaling"
	"github.com/punkzieeee/demo-socketio/internal/ui"
)

const defaultServer = "http://localhost:8080"

var (
	flagStatsServer string
	flagStatsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rooms and connections of a running relay",
	Long: `Show rooms and connections of a running relay.

Examples:
  signal-relay stats
  signal-relay stats --server https://relay.example.com --format markdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		stop := ui.RunConnectionSpinner("Fetching stats...")
		s, err := fetchStats(ctx, flagStatsServer)
		stop()
		if err != nil {
			return err
		}
		return ui.RenderStats(s, flagStatsFormat)
	},
}

// fetchStats loads the /stats snapshot from a relay base URL.
func fetchStats(ctx context.Context, base string) (signaling.Stats, error) {
	var s signaling.Stats

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(base, "/")+"/stats", nil)
	if err != nil {
		return s, NewError("build stats request", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return s, NewError("fetch stats", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s, WrapError("fetch stats", ErrUnexpectedStatus, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return s, NewError("decode stats", err)
	}
	return s, nil
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&flagStatsServer, "server", "s", defaultServer, "Relay base URL")
	statsCmd.Flags().StringVarP(&flagStatsFormat, "format", "f", ui.FormatTable, "Output format: table, markdown or csv")
}
