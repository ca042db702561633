package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/punkzieeee/demo-socketio/internal/roomname"
	"github.com/punkzieeee/demo-socketio/internal/signaling"
	"github.com/punkzieeee/demo-socketio/internal/ui"
	"github.com/punkzieeee/demo-socketio/internal/wsclient"
)

var (
	flagProbeURL     string
	flagProbeMessage string
	flagProbeNumber  string
	flagProbeMsgpack bool
	flagProbeListen  time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe [room]",
	Short: "Join a room as a test client and print every reply",
	Long: `Join a room as a test client and print every reply.

Without a room name a random one is generated.

Examples:
  signal-relay probe
  signal-relay probe lobby
  signal-relay probe lobby --message hello --listen 30s
  signal-relay probe lobby --url wss://relay.example.com/ws --msgpack`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		room := roomname.Generate()
		if len(args) == 1 {
			room = args[0]
		}
		return probe(cmd.Context(), room)
	},
}

func probe(ctx context.Context, room string) error {
	wsURL, err := probeURL(flagProbeURL, flagProbeNumber)
	if err != nil {
		return NewError("parse URL", err)
	}

	subprotocol := signaling.SubprotocolJSON
	if flagProbeMsgpack {
		subprotocol = signaling.SubprotocolMsgpack
	}

	stop := ui.RunConnectionSpinner("Connecting to relay...")
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := wsclient.Dial(dialCtx, wsURL, subprotocol, nil)
	cancel()
	stop()
	if err != nil {
		return NewError("connect to relay", err)
	}
	defer client.Close()
	ui.PrintSuccessf("Connected to %s", wsURL)
	ui.PrintInfof("%s Room: %s", ui.IconRoom, room)

	if err := probeRequest(ctx, client, string(signaling.SignalJoinRoom), signaling.SignalMessage{Room: room}); err != nil {
		return err
	}
	if flagProbeNumber != "" {
		if err := probeRequest(ctx, client, signaling.EventAck, nil); err != nil {
			return err
		}
	}
	if flagProbeMessage != "" {
		msg := signaling.SignalMessage{Room: room, Message: flagProbeMessage}
		if err := probeRequest(ctx, client, string(signaling.SignalSendMessage), msg); err != nil {
			return err
		}
	}

	s := ui.NewWaitingSpinner(fmt.Sprintf("Listening for %s...", flagProbeListen))
	s.Start()
	timer := time.NewTimer(flagProbeListen)
	defer timer.Stop()
listen:
	for {
		select {
		case ev, ok := <-client.Events():
			if !ok {
				s.Error("Relay closed the connection")
				return nil
			}
			s.Stop()
			printEvent(ev)
			s = ui.NewWaitingSpinner(fmt.Sprintf("Listening for %s...", flagProbeListen))
			s.Start()
		case <-timer.C:
			break listen
		case <-ctx.Done():
			break listen
		}
	}
	s.Stop()

	return probeRequest(context.Background(), client, string(signaling.SignalLeaveRoom), signaling.SignalMessage{Room: room})
}

func probeRequest(ctx context.Context, client *wsclient.Client, event string, data any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	reply, err := client.Request(ctx, event, data)
	if err != nil {
		return WrapError(event, ErrNoReply, err.Error())
	}
	ui.PrintInfof("%s %s → %v", ui.IconRoom, event, reply)
	return nil
}

func printEvent(ev wsclient.Event) {
	msg, err := ev.Signal()
	if err != nil || (msg.SignalType == "" && msg.Room == "" && msg.Message == "") {
		ui.PrintInfof("%s %s %v", ui.IconSignal, ev.Name, ev.Data)
		return
	}
	ui.PrintInfof("%s %s room=%s message=%s", ui.IconSignal, ev.Name, msg.Room, msg.Message)
}

// probeURL adds the diagnostic number parameter to the websocket URL.
func probeURL(raw, number string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid websocket URL: %s", raw)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if number != "" {
		q := u.Query()
		q.Set("number", number)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVarP(&flagProbeURL, "url", "u", "ws://localhost:8080/ws", "Relay websocket URL")
	probeCmd.Flags().StringVarP(&flagProbeMessage, "message", "m", "", "Chat message to send after joining")
	probeCmd.Flags().StringVarP(&flagProbeNumber, "number", "n", "", "Send ACK_EVENT with this number in the handshake")
	probeCmd.Flags().BoolVar(&flagProbeMsgpack, "msgpack", false, "Use MessagePack frames")
	probeCmd.Flags().DurationVarP(&flagProbeListen, "listen", "l", 10*time.Second, "How long to print incoming events")
}
