package signaling

import (
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// ClientOptions tunes a websocket client's pumps.
type ClientOptions struct {
	// Time allowed to write a message to the peer.
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration

	// Maximum message size allowed from peer.
	MaxMessageSize int64

	// Outbound frames queued before the client counts as a slow consumer.
	SendBuffer int

	// Inbound frames per second and burst. Zero or negative disables the
	// limit; config maps an unset rate to its default and keeps negatives.
	RateLimit float64
	RateBurst int
}

// DefaultClientOptions returns the values used when a field is zero.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 64 * 1024, // enough for SDP blobs
		SendBuffer:     256,
	}
}

func (o ClientOptions) withDefaults() ClientOptions {
	d := DefaultClientOptions()
	if o.WriteWait <= 0 {
		o.WriteWait = d.WriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = d.PongWait
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = d.SendBuffer
	}
	return o
}

// Client is a wrapper for a single websocket connection (a peer).
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	codec Codec
	opts  ClientOptions
	log   *slog.Logger

	id      string
	send    chan *Outbound
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
}

// NewClient wraps an upgraded connection. The wire codec follows the
// negotiated subprotocol.
func NewClient(hub *Hub, conn *websocket.Conn, opts ClientOptions) *Client {
	opts = opts.withDefaults()
	c := &Client{
		hub:   hub,
		conn:  conn,
		codec: CodecFor(conn.Subprotocol()),
		opts:  opts,
		id:    uuid.NewString(),
		send:  make(chan *Outbound, opts.SendBuffer),
		done:  make(chan struct{}),
	}
	c.log = hub.log.With("conn", c.id)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = int(opts.RateLimit) * 2
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

func (c *Client) ID() string { return c.id }

// Send queues a frame for the write pump without blocking.
func (c *Client) Send(out *Outbound) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- out:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrSlowConsumer
	}
}

// Serve registers the client with the hub and runs both pumps. It returns
// once the connection is gone and the hub has been told.
func (c *Client) Serve(query url.Values) {
	c.hub.Connect(c.id, c, query)
	go c.writePump()
	c.readPump()
}

func (c *Client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

// readPump pumps frames from the websocket connection to the hub.
//
// The application runs readPump in a per-connection goroutine. The
// application ensures that there is at most one reader on a connection by
// executing all reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c.id)
		c.shutdown()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		return nil
	})

	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("read failed", "error", err)
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			c.log.Warn("rate limit hit, closing")
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "rate limit"),
				time.Now().Add(c.opts.WriteWait))
			return
		}

		in, err := c.codec.DecodeFrame(b)
		if err != nil {
			c.log.Debug("dropping malformed frame", "error", err)
			continue
		}

		if err := c.hub.Dispatch(c.id, in, c.codec, c.ackFunc(in.ID)); err != nil {
			c.log.Debug("dispatch failed", "event", in.Event, "error", err)
		}
	}
}

func (c *Client) ackFunc(id *uint64) AckFunc {
	if id == nil {
		return nil
	}
	return func(data any) {
		if err := c.Send(&Outbound{Ack: id, Data: data}); err != nil {
			c.log.Debug("ack dropped", "ack", *id, "error", err)
		}
	}
}

// writePump pumps frames from the hub to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	// Send pings to peer with this period. Must be less than PongWait.
	ticker := time.NewTicker(c.opts.PongWait * 9 / 10)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case out := <-c.send:
			b, err := c.codec.Encode(out)
			if err != nil {
				c.log.Error("encode failed", "event", out.Event, "error", err)
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(c.codec.FrameType(), b); err != nil {
				c.log.Debug("write failed", "error", err)
				c.shutdown()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
