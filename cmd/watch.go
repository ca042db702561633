package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/punkzieeee/demo-socketio/internal/signaling"
	"github.com/punkzieeee/demo-socketio/internal/ui"
)

var (
	flagWatchServer   string
	flagWatchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of a running relay",
	RunE: func(cmd *cobra.Command, args []string) error {
		fetch := func(ctx context.Context) (signaling.Stats, error) {
			return fetchStats(ctx, flagWatchServer)
		}
		if err := ui.RunWatch(fetch, flagWatchInterval); err != nil {
			return NewError("watch", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&flagWatchServer, "server", "s", defaultServer, "Relay base URL")
	watchCmd.Flags().DurationVarP(&flagWatchInterval, "interval", "i", time.Second, "Refresh interval")
}
