package signaling

import (
	"log/slog"
)

// Relay fans events out to connections. Delivery is best-effort: a
// recipient that is gone or cannot accept the frame is skipped.
type Relay struct {
	conns *Connections
	rooms *Rooms
	log   *slog.Logger
}

// NewRelay uses slog.Default() if log is nil.
func NewRelay(conns *Connections, rooms *Rooms, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}
	return &Relay{conns: conns, rooms: rooms, log: log}
}

// ToRoom delivers data under event to every current member of room except
// sender and returns how many members accepted it.
func (r *Relay) ToRoom(room, sender, event string, data any) int {
	return r.ToMembers(r.rooms.Members(room), sender, event, data)
}

// ToMembers delivers to the given member snapshot, skipping sender.
func (r *Relay) ToMembers(members []string, sender, event string, data any) int {
	delivered := 0
	for _, id := range members {
		if id == sender {
			continue
		}
		c, ok := r.conns.Get(id)
		if !ok {
			r.log.Debug("relay target gone", "conn", id, "event", event)
			continue
		}
		if r.Direct(c, event, data) == nil {
			delivered++
		}
	}
	return delivered
}

// ToAll delivers to every registered connection, the sender included.
func (r *Relay) ToAll(event string, data any) int {
	delivered := 0
	r.conns.Range(func(c *Conn) bool {
		if r.Direct(c, event, data) == nil {
			delivered++
		}
		return true
	})
	return delivered
}

// Direct sends one event to c. Failures are logged and returned but are
// never fatal to the caller.
func (r *Relay) Direct(c *Conn, event string, data any) error {
	if err := c.Emit(event, data); err != nil {
		r.log.Debug("send failed", "conn", c.ID, "event", event, "error", err)
		return err
	}
	return nil
}
