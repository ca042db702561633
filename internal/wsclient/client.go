// Package wsclient is a small client for the relay's websocket protocol,
// used by the probe command and by end-to-end tests.
package wsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/punkzieeee/demo-socketio/internal/dns"
	"github.com/punkzieeee/demo-socketio/internal/signaling"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

// ErrClosed is returned once the connection is gone.
var ErrClosed = errors.New("client closed")

// Event is a server-pushed event.
type Event struct {
	Name string
	Data any
}

// Signal decodes the event data as a SignalMessage.
func (e Event) Signal() (signaling.SignalMessage, error) {
	var msg signaling.SignalMessage
	b, err := json.Marshal(e.Data)
	if err != nil {
		return msg, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	err = dec.Decode(&msg)
	return msg, err
}

type frame struct {
	Event string  `json:"event,omitempty" msgpack:"event,omitempty"`
	ID    *uint64 `json:"id,omitempty" msgpack:"id,omitempty"`
	Ack   *uint64 `json:"ack,omitempty" msgpack:"ack,omitempty"`
	Data  any     `json:"data,omitempty" msgpack:"data,omitempty"`
}

// Client manages the WebSocket connection to the relay.
type Client struct {
	conn   *websocket.Conn
	binary bool

	writeMu sync.Mutex
	nextID  atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan any

	events chan Event
	done   chan struct{}
	once   sync.Once
}

// Dial connects to url, resolving the host with the DNS fallback. A
// non-empty subprotocol is offered to the server;
// signaling.SubprotocolMsgpack switches the client to binary frames.
func Dial(ctx context.Context, url, subprotocol string, header http.Header) (*Client, error) {
	dialer := *websocket.DefaultDialer
	dialer.NetDialContext = dns.DialContext
	if subprotocol != "" {
		dialer.Subprotocols = []string{subprotocol}
	}

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	c := &Client{
		conn:    conn,
		binary:  conn.Subprotocol() == signaling.SubprotocolMsgpack,
		pending: make(map[uint64]chan any),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
	go c.readPump()
	return c, nil
}

// Events returns the channel of server-pushed events. It is closed when
// the connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Emit sends an event without asking for an acknowledgement.
func (c *Client) Emit(event string, data any) error {
	return c.write(frame{Event: event, Data: data})
}

// Request sends an event and waits for its acknowledgement.
func (c *Client) Request(ctx context.Context, event string, data any) (any, error) {
	id := c.nextID.Add(1)
	ch := make(chan any, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.write(frame{Event: event, ID: &id, Data: data}); err != nil {
		return nil, err
	}

	select {
	case v := <-ch:
		return v, nil
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the WebSocket connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *Client) write(f frame) error {
	var (
		b   []byte
		err error
		typ = websocket.TextMessage
	)
	if c.binary {
		b, err = msgpack.Marshal(f)
		typ = websocket.BinaryMessage
	} else {
		b, err = json.Marshal(f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.Event, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(typ, b)
}

// readPump reads frames, routing acks to their waiters and events to Events.
func (c *Client) readPump() {
	defer func() {
		c.once.Do(func() { close(c.done) })
		close(c.events)
		c.conn.Close()
	}()

	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var f frame
		if c.binary {
			err = msgpack.Unmarshal(b, &f)
		} else {
			dec := json.NewDecoder(bytes.NewReader(b))
			dec.UseNumber()
			err = dec.Decode(&f)
		}
		if err != nil {
			continue
		}

		if f.Ack != nil {
			c.mu.Lock()
			ch, ok := c.pending[*f.Ack]
			c.mu.Unlock()
			if ok {
				select {
				case ch <- f.Data:
				default:
				}
			}
			continue
		}

		select {
		case c.events <- Event{Name: f.Event, Data: f.Data}:
		case <-c.done:
			return
		}
	}
}
