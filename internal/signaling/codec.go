package signaling

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Websocket subprotocols understood by the relay. A client that negotiates
// none of them speaks JSON.
const (
	SubprotocolJSON    = "signal.json"
	SubprotocolMsgpack = "signal.msgpack"
)

// Subprotocols lists the subprotocols in server preference order.
var Subprotocols = []string{SubprotocolMsgpack, SubprotocolJSON}

var errMissingEvent = errors.New("frame has no event name")

// Inbound is a client frame whose payload has not been decoded yet.
type Inbound struct {
	Event string
	// ID is set when the client asked for an acknowledgement.
	ID   *uint64
	Data []byte
}

// Outbound is either an event pushed to a client or an acknowledgement of
// one of its frames.
type Outbound struct {
	Event string  `json:"event,omitempty" msgpack:"event,omitempty"`
	Ack   *uint64 `json:"ack,omitempty" msgpack:"ack,omitempty"`
	Data  any     `json:"data,omitempty" msgpack:"data,omitempty"`
}

// Codec converts frames to and from one wire representation.
type Codec interface {
	Name() string
	// FrameType is the websocket message type frames are written with.
	FrameType() int
	Encode(out *Outbound) ([]byte, error)
	DecodeFrame(b []byte) (Inbound, error)
	DecodePayload(data []byte, msg *SignalMessage) error
}

// CodecFor returns the codec for a negotiated subprotocol.
func CodecFor(subprotocol string) Codec {
	if subprotocol == SubprotocolMsgpack {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

// JSONCodec speaks JSON text frames.
type JSONCodec struct{}

type jsonFrame struct {
	Event string          `json:"event"`
	ID    *uint64         `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (JSONCodec) Name() string   { return SubprotocolJSON }
func (JSONCodec) FrameType() int { return websocket.TextMessage }

func (JSONCodec) Encode(out *Outbound) ([]byte, error) {
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode json frame: %w", err)
	}
	return b, nil
}

func (JSONCodec) DecodeFrame(b []byte) (Inbound, error) {
	var f jsonFrame
	if err := json.Unmarshal(b, &f); err != nil {
		return Inbound{}, fmt.Errorf("decode json frame: %w", err)
	}
	if f.Event == "" {
		return Inbound{}, errMissingEvent
	}
	in := Inbound{Event: f.Event, ID: f.ID}
	if len(f.Data) > 0 && !bytes.Equal(f.Data, []byte("null")) {
		in.Data = f.Data
	}
	return in, nil
}

// DecodePayload keeps numbers inside sdp as json.Number so the blob is
// forwarded with its original digits.
func (JSONCodec) DecodePayload(data []byte, msg *SignalMessage) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(msg); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after payload")
	}
	return nil
}

// MsgpackCodec speaks MessagePack binary frames.
type MsgpackCodec struct{}

type msgpackFrame struct {
	Event string             `msgpack:"event"`
	ID    *uint64            `msgpack:"id,omitempty"`
	Data  msgpack.RawMessage `msgpack:"data,omitempty"`
}

func (MsgpackCodec) Name() string   { return SubprotocolMsgpack }
func (MsgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (MsgpackCodec) Encode(out *Outbound) ([]byte, error) {
	// The same message may be queued for JSON peers too; convert a copy.
	if msg, ok := out.Data.(*SignalMessage); ok && msg.SDP != nil {
		cp := *msg
		cp.SDP = fromJSONNumbers(msg.SDP)
		o := *out
		o.Data = &cp
		out = &o
	}
	b, err := msgpack.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode msgpack frame: %w", err)
	}
	return b, nil
}

func (MsgpackCodec) DecodeFrame(b []byte) (Inbound, error) {
	var f msgpackFrame
	if err := msgpack.Unmarshal(b, &f); err != nil {
		return Inbound{}, fmt.Errorf("decode msgpack frame: %w", err)
	}
	if f.Event == "" {
		return Inbound{}, errMissingEvent
	}
	in := Inbound{Event: f.Event, ID: f.ID}
	// 0xc0 is msgpack nil.
	if len(f.Data) > 0 && !(len(f.Data) == 1 && f.Data[0] == 0xc0) {
		in.Data = f.Data
	}
	return in, nil
}

func (MsgpackCodec) DecodePayload(data []byte, msg *SignalMessage) error {
	return msgpack.Unmarshal(data, msg)
}

// fromJSONNumbers replaces json.Number values, which msgpack would encode
// as strings, with the narrowest numeric type that holds them exactly.
// Containers are copied, never modified in place.
func fromJSONNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(string(v), 10, 64); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return string(v)
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[k] = fromJSONNumbers(e)
		}
		return m
	case []any:
		s := make([]any, len(v))
		for i, e := range v {
			s[i] = fromJSONNumbers(e)
		}
		return s
	default:
		return v
	}
}
