package signaling

import (
	"errors"
	"net/url"
	"sync/atomic"

	"github.com/go4org/hashtriemap"
)

var (
	// ErrConnClosed is returned for operations on a connection that has
	// already gone through disconnect cleanup.
	ErrConnClosed = errors.New("connection closed")

	// ErrSlowConsumer is returned when a connection's outbound queue is full.
	ErrSlowConsumer = errors.New("outbound queue full")

	// ErrUnknownConn is returned when an event arrives for an id that is not
	// registered.
	ErrUnknownConn = errors.New("unknown connection")
)

// Sink delivers outbound frames to one live connection. Send must not block.
type Sink interface {
	Send(out *Outbound) error
}

// Conn is the registry record of one live client session.
type Conn struct {
	ID string
	// Query holds the handshake query parameters.
	Query url.Values

	sink Sink

	// room and closed are guarded by Rooms.mu.
	room   string
	closed bool
}

// NewConn creates a connection record that writes to sink.
func NewConn(id string, sink Sink, query url.Values) *Conn {
	if query == nil {
		query = url.Values{}
	}
	return &Conn{ID: id, Query: query, sink: sink}
}

// Emit pushes an event to the connection.
func (c *Conn) Emit(event string, data any) error {
	return c.sink.Send(&Outbound{Event: event, Data: data})
}

// setRoom and clearRoom must be called with Rooms.mu held.
func (c *Conn) setRoom(room string) { c.room = room }
func (c *Conn) clearRoom()          { c.room = "" }

// Connections maps live connection ids to their records.
type Connections struct {
	m hashtriemap.HashTrieMap[string, *Conn]
	n atomic.Int64
}

// Add registers c. It reports false and keeps the existing record when the
// id is already present.
func (r *Connections) Add(c *Conn) (*Conn, bool) {
	actual, loaded := r.m.LoadOrStore(c.ID, c)
	if loaded {
		return actual, false
	}
	r.n.Add(1)
	return c, true
}

// Remove deletes the record for id and returns it.
func (r *Connections) Remove(id string) (*Conn, bool) {
	c, ok := r.m.LoadAndDelete(id)
	if ok {
		r.n.Add(-1)
	}
	return c, ok
}

func (r *Connections) Get(id string) (*Conn, bool) {
	return r.m.Load(id)
}

func (r *Connections) Len() int {
	return int(r.n.Load())
}

// Range calls fn for every registered connection until fn returns false.
func (r *Connections) Range(fn func(c *Conn) bool) {
	r.m.Range(func(_ string, c *Conn) bool {
		return fn(c)
	})
}
