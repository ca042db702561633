package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/punkzieeee/demo-socketio/internal/config"
	"github.com/punkzieeee/demo-socketio/internal/logging"
	"github.com/punkzieeee/demo-socketio/internal/server"
	"github.com/punkzieeee/demo-socketio/internal/signaling"
	"github.com/punkzieeee/demo-socketio/internal/ui"
	"github.com/punkzieeee/demo-socketio/internal/version"
)

var (
	flagConfig    string
	flagAddr      string
	flagPath      string
	flagOrigins   []string
	flagRateLimit float64
	flagRateBurst int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling relay",
	Long: `Run the signaling relay.

Examples:
  signal-relay serve
  signal-relay serve --addr :9000 --origin https://call.example.com
  signal-relay serve --config relay.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(config.Options{
		ConfigFile: flagConfig,
		Addr:       flagAddr,
		Path:       flagPath,
		Origins:    flagOrigins,
		RateLimit:  flagRateLimit,
		RateBurst:  flagRateBurst,
		LogLevel:   flagLogLevel,
	})
	if err != nil {
		return NewError("load config", err)
	}
	logging.Init(cfg.LogLevel)

	ui.PrintInfof("signal-relay %s listening on %s%s", version.Version, cfg.Addr, cfg.Path)

	hub := signaling.NewHub(slog.Default())
	if err := server.New(cfg, hub).Run(ctx); err != nil {
		return NewError("run server", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to a YAML config file")
	serveCmd.Flags().StringVarP(&flagAddr, "addr", "a", "", "Listen address (default :8080)")
	serveCmd.Flags().StringVar(&flagPath, "path", "", "Websocket endpoint path (default /ws)")
	serveCmd.Flags().StringSliceVar(&flagOrigins, "origin", nil, "Allowed browser origin (repeatable)")
	serveCmd.Flags().Float64Var(&flagRateLimit, "rate", 0, "Inbound frames per second per connection (negative disables)")
	serveCmd.Flags().IntVar(&flagRateBurst, "burst", 0, "Inbound frame burst per connection")
}
