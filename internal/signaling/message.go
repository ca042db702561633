package signaling

// SignalType names the semantic purpose of an event on the wire.
type SignalType string

// Signal types. The inbound events share their names with the matching
// outbound discriminators.
const (
	SignalRinging      SignalType = "RINGING"
	SignalReady        SignalType = "READY"
	SignalJoined       SignalType = "JOINED"
	SignalCreated      SignalType = "CREATED"
	SignalAnswer       SignalType = "ANSWER"
	SignalConnected    SignalType = "CONNECTED"
	SignalDisconnected SignalType = "DISCONNECTED"
	SignalSendMessage  SignalType = "SEND_MESSAGE"
	SignalGetMessage   SignalType = "GET_MESSAGE"
	SignalSetCaller    SignalType = "SET_CALLER"
	SignalOnCall       SignalType = "ON_CALL"
	SignalEndCall      SignalType = "END_CALL"
	SignalJoinRoom     SignalType = "JOIN_ROOM"
	SignalWaitRoom     SignalType = "WAIT_ROOM"
	SignalLeaveRoom    SignalType = "LEAVE_ROOM"
	SignalFullRoom     SignalType = "FULL_ROOM"
)

// EventAck is the diagnostic echo event answered through the ack channel only.
const EventAck = "ACK_EVENT"

// MessageType tells whether a SignalMessage was produced by the relay itself
// or forwarded from a client.
type MessageType string

const (
	MessageTypeServer MessageType = "SERVER"
	MessageTypeClient MessageType = "CLIENT"
)

// SignalMessage is the payload record carried by every event. All fields are
// optional; handlers read only the ones their event defines.
type SignalMessage struct {
	MessageType MessageType `json:"messageType,omitempty" msgpack:"messageType,omitempty"`
	SignalType  SignalType  `json:"signalType,omitempty" msgpack:"signalType,omitempty"`
	Message     string      `json:"message,omitempty" msgpack:"message,omitempty"`
	Room        string      `json:"room,omitempty" msgpack:"room,omitempty"`

	// SDP is opaque to the relay and forwarded as decoded.
	SDP any `json:"sdp,omitempty" msgpack:"sdp,omitempty"`
}

// serverMessage builds a server-originated envelope.
func serverMessage(signal SignalType, room, text string) *SignalMessage {
	return &SignalMessage{
		MessageType: MessageTypeServer,
		SignalType:  signal,
		Message:     text,
		Room:        room,
	}
}
