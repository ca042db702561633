package signaling

import (
	"errors"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

func TestCodecFor(t *testing.T) {
	if _, ok := CodecFor(SubprotocolMsgpack).(MsgpackCodec); !ok {
		t.Error("msgpack subprotocol did not select MsgpackCodec")
	}
	for _, sp := range []string{"", SubprotocolJSON, "chat"} {
		if _, ok := CodecFor(sp).(JSONCodec); !ok {
			t.Errorf("CodecFor(%q) is not JSONCodec", sp)
		}
	}
	if (JSONCodec{}).FrameType() != websocket.TextMessage || (MsgpackCodec{}).FrameType() != websocket.BinaryMessage {
		t.Error("unexpected frame types")
	}
}

func TestJSONDecodeFrame(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantID   bool
		wantData bool
		wantErr  bool
	}{
		{name: "event only", in: `{"event":"READY"}`},
		{name: "null data", in: `{"event":"READY","data":null}`},
		{name: "with ack id", in: `{"event":"JOIN_ROOM","id":3,"data":{"room":"r"}}`, wantID: true, wantData: true},
		{name: "missing event", in: `{"data":{}}`, wantErr: true},
		{name: "not json", in: `hello`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := JSONCodec{}.DecodeFrame([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if (in.ID != nil) != tt.wantID {
				t.Errorf("ID = %v, want present=%v", in.ID, tt.wantID)
			}
			if (in.Data != nil) != tt.wantData {
				t.Errorf("Data = %s, want present=%v", in.Data, tt.wantData)
			}
		})
	}

	_, err := JSONCodec{}.DecodeFrame([]byte(`{"id":1}`))
	if !errors.Is(err, errMissingEvent) {
		t.Errorf("err = %v, want errMissingEvent", err)
	}
}

func TestMsgpackFrameCarriesPayload(t *testing.T) {
	id := uint64(9)
	b, err := msgpack.Marshal(map[string]any{
		"event": "RINGING",
		"id":    id,
		"data":  map[string]any{"room": "r1", "sdp": map[string]any{"type": "offer"}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	in, err := MsgpackCodec{}.DecodeFrame(b)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if in.Event != "RINGING" || in.ID == nil || *in.ID != id {
		t.Fatalf("frame = %+v", in)
	}

	var msg SignalMessage
	if err := (MsgpackCodec{}).DecodePayload(in.Data, &msg); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	sdp, ok := msg.SDP.(map[string]any)
	if msg.Room != "r1" || !ok || sdp["type"] != "offer" {
		t.Errorf("payload = %+v", msg)
	}
}

func TestMsgpackNilData(t *testing.T) {
	b, _ := msgpack.Marshal(map[string]any{"event": "READY", "data": nil})
	in, err := MsgpackCodec{}.DecodeFrame(b)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if in.Data != nil {
		t.Errorf("Data = %v, want nil", in.Data)
	}
}
