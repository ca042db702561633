package signaling

import (
	"fmt"
	"sync"
)

// AckFunc answers the frame that carried an acknowledgement id.
type AckFunc func(data any)

// Request is one inbound event as seen by a handler. The connection
// identity travels here and nowhere else.
type Request struct {
	Conn  *Conn
	Event string
	Msg   SignalMessage

	ack AckFunc
}

// Ack replies through the acknowledgement channel if the client asked for one.
func (r *Request) Ack(data any) {
	if r.ack != nil {
		r.ack(data)
	}
}

// HandlerFunc handles one named event.
type HandlerFunc func(h *Hub, req *Request)

// Router maps event names to handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRouter returns a router populated with the relay's events.
func NewRouter() *Router {
	rt := &Router{handlers: make(map[string]HandlerFunc)}
	rt.Handle(string(SignalJoinRoom), handleJoinRoom)
	rt.Handle(string(SignalLeaveRoom), handleLeaveRoom)
	rt.Handle(string(SignalSendMessage), handleSendMessage)
	rt.Handle(string(SignalReady), handleReady)
	rt.Handle(string(SignalRinging), handleForward)
	rt.Handle(string(SignalAnswer), handleForward)
	rt.Handle(string(SignalWaitRoom), handleForward)
	rt.Handle(EventAck, handleAckEvent)
	return rt
}

// Handle registers fn for event, replacing any previous handler.
func (rt *Router) Handle(event string, fn HandlerFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.handlers[event] = fn
}

func (rt *Router) lookup(event string) (HandlerFunc, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	fn, ok := rt.handlers[event]
	return fn, ok
}

// Dispatch is the entry point for every inbound event. Unknown events and
// undecodable payloads are answered through ack and never returned as
// errors; only an unregistered connection id is.
func (h *Hub) Dispatch(connID string, in Inbound, codec Codec, ack AckFunc) error {
	c, ok := h.conns.Get(connID)
	if !ok {
		return fmt.Errorf("dispatch %s: %w", in.Event, ErrUnknownConn)
	}
	req := &Request{Conn: c, Event: in.Event, ack: ack}

	fn, ok := h.router.lookup(in.Event)
	if !ok {
		h.log.Debug("unknown event", "conn", connID, "event", in.Event)
		req.Ack(fmt.Sprintf("Unknown event %s", in.Event))
		return nil
	}

	if in.Data != nil {
		if err := codec.DecodePayload(in.Data, &req.Msg); err != nil {
			h.log.Debug("invalid payload", "conn", connID, "event", in.Event, "error", err)
			req.Ack(fmt.Sprintf("Invalid payload: %v", err))
			return nil
		}
	}

	fn(h, req)
	return nil
}
