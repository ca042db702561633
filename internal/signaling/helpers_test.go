package signaling

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
)

// recorder is a Sink that keeps every frame it is given.
type recorder struct {
	mu     sync.Mutex
	frames []*Outbound
	fail   bool
}

func (r *recorder) Send(out *Outbound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return ErrSlowConsumer
	}
	r.frames = append(r.frames, out)
	return nil
}

// events returns the data of every pushed event named name.
func (r *recorder) events(name string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, f := range r.frames {
		if f.Ack == nil && f.Event == name {
			out = append(out, f.Data)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// connect registers a recording connection under id.
func connect(h *Hub, id string) *recorder {
	rec := &recorder{}
	h.Connect(id, rec, nil)
	return rec
}

// send dispatches event with msg as JSON payload and returns the ack data.
func send(t *testing.T, h *Hub, id, event string, msg *SignalMessage) any {
	t.Helper()

	in := Inbound{Event: event}
	if msg != nil {
		b, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		in.Data = b
	}

	var (
		mu  sync.Mutex
		ack any
	)
	err := h.Dispatch(id, in, JSONCodec{}, func(data any) {
		mu.Lock()
		ack = data
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Dispatch(%s, %s) failed: %v", id, event, err)
	}
	mu.Lock()
	defer mu.Unlock()
	return ack
}

func join(t *testing.T, h *Hub, id, room string) any {
	t.Helper()
	return send(t, h, id, string(SignalJoinRoom), &SignalMessage{Room: room})
}

func signalOf(t *testing.T, data any) *SignalMessage {
	t.Helper()
	msg, ok := data.(*SignalMessage)
	if !ok {
		t.Fatalf("event data is %T, want *SignalMessage", data)
	}
	return msg
}

func mustConn(t *testing.T, h *Hub, id string) *Conn {
	t.Helper()
	c, ok := h.conns.Get(id)
	if !ok {
		t.Fatalf("connection %s not registered", id)
	}
	return c
}
