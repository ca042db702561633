package signaling

import (
	"log/slog"
	"net/url"
)

// Hub is the central brain of the signaling server.
// It owns the connection and room registries and routes inbound events.
type Hub struct {
	conns  *Connections
	rooms  *Rooms
	relay  *Relay
	router *Router
	log    *slog.Logger
}

// NewHub creates a Hub with the default event table.
// Uses slog.Default() if log is nil.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	conns := new(Connections)
	rooms := NewRooms()
	return &Hub{
		conns:  conns,
		rooms:  rooms,
		relay:  NewRelay(conns, rooms, log),
		router: NewRouter(),
		log:    log,
	}
}

// Router exposes the event table, e.g. to register extra handlers.
func (h *Hub) Router() *Router { return h.router }

// Rooms exposes the room registry for read-only inspection.
func (h *Hub) Rooms() *Rooms { return h.rooms }

// Connect registers a new connection without a room. Registering an id
// twice keeps the first record.
func (h *Hub) Connect(id string, sink Sink, query url.Values) *Conn {
	c, added := h.conns.Add(NewConn(id, sink, query))
	if !added {
		h.log.Warn("connection already registered", "conn", id)
		return c
	}
	h.log.Info("client connected", "conn", id)
	return c
}

// Disconnect removes the connection and, if it was in a room, tells the
// remaining member with DISCONNECTED. Repeated calls are no-ops.
func (h *Hub) Disconnect(id string) {
	c, ok := h.conns.Remove(id)
	if !ok {
		return
	}

	res := h.rooms.Disconnect(c)
	h.log.Info("client disconnected", "conn", id, "room", res.Room)
	if !res.Removed {
		return
	}
	if res.Deleted {
		h.log.Debug("room deleted", "room", res.Room)
		return
	}
	h.relay.ToMembers(res.Remaining, id, string(SignalDisconnected),
		serverMessage(SignalDisconnected, res.Room, id))
}

// Stats is a point-in-time view of the registries.
type Stats struct {
	Connections int        `json:"connections"`
	Rooms       int        `json:"rooms"`
	Waiting     int        `json:"waiting"`
	Active      int        `json:"active"`
	RoomList    []RoomInfo `json:"room_list"`
}

func (h *Hub) Stats() Stats {
	list := h.rooms.Snapshot()
	s := Stats{
		Connections: h.conns.Len(),
		Rooms:       len(list),
		RoomList:    list,
	}
	for _, r := range list {
		switch r.State {
		case RoomWaiting.String():
			s.Waiting++
		case RoomActive.String():
			s.Active++
		}
	}
	return s
}
