package signaling

import (
	"fmt"
)

const notJoinedText = "You need to join any room first!"

// handleJoinRoom runs the capacity state machine:
//   - empty room: the joiner becomes the caller and gets CREATED
//   - waiting room: the joiner gets JOINED and SET_CALLER naming the caller
//   - active room: the joiner gets FULL_ROOM and nothing changes
func handleJoinRoom(h *Hub, req *Request) {
	room := req.Msg.Room
	if room == "" {
		req.Ack("Room name is required")
		return
	}

	res, err := h.rooms.Join(req.Conn, room)
	if err != nil {
		h.log.Debug("join refused", "conn", req.Conn.ID, "room", room, "error", err)
		return
	}
	if res.Left != "" {
		h.log.Info("client switched rooms", "conn", req.Conn.ID, "from", res.Left, "to", room)
	}

	switch res.Outcome {
	case JoinCreated:
		req.Ack(fmt.Sprintf("Room %s has been created!", room))
		h.relay.Direct(req.Conn, string(SignalCreated),
			serverMessage(SignalCreated, room, req.Conn.ID))
		h.log.Info("room created", "room", room, "conn", req.Conn.ID)

	case JoinJoined:
		req.Ack(fmt.Sprintf("%s has joined room %s", req.Conn.ID, room))
		h.relay.Direct(req.Conn, string(SignalJoined),
			serverMessage(SignalJoined, room, res.CallerID))
		h.relay.Direct(req.Conn, string(SignalSetCaller),
			serverMessage(SignalSetCaller, room, res.CallerID))
		h.log.Info("client joined room", "room", room, "conn", req.Conn.ID, "caller", res.CallerID)

	case JoinFull:
		req.Ack(fmt.Sprintf("Room %s is already full!", room))
		h.relay.Direct(req.Conn, string(SignalFullRoom),
			serverMessage(SignalFullRoom, room, ""))
		h.log.Info("full room", "room", room, "conn", req.Conn.ID)

	case JoinAlready:
		req.Ack(fmt.Sprintf("You are already in room %s", room))
	}
	h.log.Debug("room size", "room", room, "members", res.Members)
}

// handleLeaveRoom leaves silently; only a disconnect notifies the peer.
func handleLeaveRoom(h *Hub, req *Request) {
	res := h.rooms.Leave(req.Conn, req.Msg.Room)
	if res.Room == "" {
		req.Ack(notJoinedText)
		return
	}
	if !res.Removed {
		req.Ack(fmt.Sprintf("You are not in room %s", res.Room))
		return
	}
	req.Ack(fmt.Sprintf("You have left room %s", res.Room))
	h.log.Info("client left room", "conn", req.Conn.ID, "room", res.Room,
		"removed", res.Removed, "deleted", res.Deleted)
}

func handleSendMessage(h *Hub, req *Request) {
	room, ok := h.targetRoom(req)
	if !ok {
		req.Ack(serverMessage("", "", notJoinedText))
		h.log.Debug("message from client outside room", "conn", req.Conn.ID)
		return
	}
	h.relay.ToRoom(room, req.Conn.ID, string(SignalGetMessage),
		serverMessage(SignalGetMessage, room, req.Msg.Message))
	req.Ack("Message sent!")
	h.log.Debug("message sent", "conn", req.Conn.ID, "room", room)
}

// handleReady announces readiness to every connection, not just the room;
// recipients filter by the room field.
func handleReady(h *Hub, req *Request) {
	room := req.Msg.Room
	if room == "" {
		room = h.rooms.RoomOf(req.Conn)
	}
	n := h.relay.ToAll(string(SignalReady), serverMessage(SignalReady, room, ""))
	h.log.Debug("ready broadcast", "conn", req.Conn.ID, "room", room, "recipients", n)
}

// handleForward relays RINGING, ANSWER and WAIT_ROOM with their full
// payload to the other member of the room.
func handleForward(h *Hub, req *Request) {
	room, ok := h.targetRoom(req)
	if !ok {
		req.Ack(serverMessage("", "", notJoinedText))
		h.log.Debug("signal from client outside room", "conn", req.Conn.ID, "event", req.Event)
		return
	}

	msg := req.Msg
	msg.SignalType = SignalType(req.Event)
	msg.Room = room
	if msg.MessageType == "" {
		msg.MessageType = MessageTypeClient
	}
	n := h.relay.ToRoom(room, req.Conn.ID, req.Event, &msg)
	h.log.Debug("signal relayed", "conn", req.Conn.ID, "room", room, "event", req.Event, "recipients", n)
}

// handleAckEvent answers whether the handshake's number parameter is even.
func handleAckEvent(h *Hub, req *Request) {
	n := req.Conn.Query.Get("number")
	if !isDigits(n) {
		req.Ack("Param is not a number!")
		return
	}
	if (n[len(n)-1]-'0')%2 == 0 {
		req.Ack("Number is even")
		return
	}
	req.Ack("Number is odd")
}

// targetRoom resolves the room a room-scoped event is aimed at: the
// payload's room, or the sender's current one. The sender must be in it.
func (h *Hub) targetRoom(req *Request) (string, bool) {
	current := h.rooms.RoomOf(req.Conn)
	room := req.Msg.Room
	if room == "" {
		room = current
	}
	return room, room != "" && room == current
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
