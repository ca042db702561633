package signaling

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestCallScenario(t *testing.T) {
	h := newTestHub()
	a := connect(h, "a")
	b := connect(h, "b")
	c := connect(h, "c")

	if got := join(t, h, "a", "r1"); got != "Room r1 has been created!" {
		t.Errorf("a join ack = %v", got)
	}
	created := a.events(string(SignalCreated))
	if len(created) != 1 {
		t.Fatalf("a got %d CREATED events, want 1", len(created))
	}
	if msg := signalOf(t, created[0]); msg.Room != "r1" || msg.MessageType != MessageTypeServer {
		t.Errorf("CREATED = %+v", msg)
	}

	if got := join(t, h, "b", "r1"); got != "b has joined room r1" {
		t.Errorf("b join ack = %v", got)
	}
	for _, ev := range []SignalType{SignalJoined, SignalSetCaller} {
		got := b.events(string(ev))
		if len(got) != 1 {
			t.Fatalf("b got %d %s events, want 1", len(got), ev)
		}
		if msg := signalOf(t, got[0]); msg.Message != "a" {
			t.Errorf("%s message = %q, want caller a", ev, msg.Message)
		}
	}

	if got := join(t, h, "c", "r1"); got != "Room r1 is already full!" {
		t.Errorf("c join ack = %v", got)
	}
	if len(c.events(string(SignalFullRoom))) != 1 {
		t.Error("c did not get FULL_ROOM")
	}

	send(t, h, "b", string(SignalRinging), &SignalMessage{SDP: "offer-sdp"})
	ringing := a.events(string(SignalRinging))
	if len(ringing) != 1 {
		t.Fatalf("a got %d RINGING events, want 1", len(ringing))
	}
	msg := signalOf(t, ringing[0])
	if msg.SDP != "offer-sdp" || msg.Room != "r1" || msg.MessageType != MessageTypeClient {
		t.Errorf("RINGING = %+v", msg)
	}
	if len(b.events(string(SignalRinging))) != 0 {
		t.Error("sender received its own RINGING")
	}
	if len(c.events(string(SignalRinging))) != 0 {
		t.Error("non-member received RINGING")
	}

	h.Disconnect("b")
	disc := a.events(string(SignalDisconnected))
	if len(disc) != 1 {
		t.Fatalf("a got %d DISCONNECTED events, want 1", len(disc))
	}
	if msg := signalOf(t, disc[0]); msg.Message != "b" || msg.Room != "r1" {
		t.Errorf("DISCONNECTED = %+v", msg)
	}
	if got := h.Rooms().State("r1"); got != RoomWaiting {
		t.Errorf("r1 state = %v, want WAITING", got)
	}
}

func TestJoinRoomRequiresName(t *testing.T) {
	h := newTestHub()
	rec := connect(h, "a")

	if got := join(t, h, "a", ""); got != "Room name is required" {
		t.Errorf("ack = %v", got)
	}
	if rec.count() != 0 || h.Rooms().Len() != 0 {
		t.Error("empty room name changed state")
	}
}

func TestJoinSameRoomTwice(t *testing.T) {
	h := newTestHub()
	rec := connect(h, "a")
	join(t, h, "a", "r1")

	if got := join(t, h, "a", "r1"); got != "You are already in room r1" {
		t.Errorf("ack = %v", got)
	}
	if len(rec.events(string(SignalCreated))) != 1 {
		t.Error("second join emitted another CREATED")
	}
}

func TestLeaveRoomIsSilent(t *testing.T) {
	h := newTestHub()
	a := connect(h, "a")
	connect(h, "b")
	join(t, h, "a", "r1")
	join(t, h, "b", "r1")

	if got := send(t, h, "b", string(SignalLeaveRoom), &SignalMessage{Room: "r1"}); got != "You have left room r1" {
		t.Errorf("leave ack = %v", got)
	}
	if len(a.events(string(SignalDisconnected))) != 0 {
		t.Error("leave notified the remaining member")
	}
	if got := h.Rooms().Members("r1"); len(got) != 1 || got[0] != "a" {
		t.Errorf("members = %v, want [a]", got)
	}

	if got := send(t, h, "b", string(SignalLeaveRoom), nil); got != notJoinedText {
		t.Errorf("leave without room ack = %v", got)
	}
}

func TestLeaveRoomNotMember(t *testing.T) {
	h := newTestHub()
	connect(h, "a")
	connect(h, "b")
	join(t, h, "a", "r1")
	join(t, h, "b", "r2")

	if got := send(t, h, "a", string(SignalLeaveRoom), &SignalMessage{Room: "r2"}); got != "You are not in room r2" {
		t.Errorf("ack = %v", got)
	}
	if got := h.Rooms().RoomOf(mustConn(t, h, "a")); got != "r1" {
		t.Errorf("a moved to %q, want r1", got)
	}
	if got := h.Rooms().Members("r2"); len(got) != 1 || got[0] != "b" {
		t.Errorf("r2 members = %v, want [b]", got)
	}
}

func TestSendMessage(t *testing.T) {
	h := newTestHub()
	a := connect(h, "a")
	b := connect(h, "b")

	got := send(t, h, "a", string(SignalSendMessage), &SignalMessage{Message: "hi"})
	if msg := signalOf(t, got); msg.Message != notJoinedText {
		t.Errorf("ack outside room = %+v", msg)
	}

	join(t, h, "a", "r1")
	join(t, h, "b", "r1")

	if got := send(t, h, "a", string(SignalSendMessage), &SignalMessage{Message: "hi"}); got != "Message sent!" {
		t.Errorf("ack = %v", got)
	}
	msgs := b.events(string(SignalGetMessage))
	if len(msgs) != 1 {
		t.Fatalf("b got %d GET_MESSAGE events, want 1", len(msgs))
	}
	if msg := signalOf(t, msgs[0]); msg.Message != "hi" || msg.Room != "r1" {
		t.Errorf("GET_MESSAGE = %+v", msg)
	}
	if len(a.events(string(SignalGetMessage))) != 0 {
		t.Error("sender received its own message")
	}
}

func TestRelayRequiresMembership(t *testing.T) {
	h := newTestHub()
	a := connect(h, "a")
	connect(h, "b")
	connect(h, "x")
	join(t, h, "a", "r1")
	join(t, h, "b", "r1")

	got := send(t, h, "x", string(SignalRinging), &SignalMessage{Room: "r1", SDP: "spoof"})
	if msg := signalOf(t, got); msg.Message != notJoinedText {
		t.Errorf("ack = %+v", msg)
	}
	if len(a.events(string(SignalRinging))) != 0 {
		t.Error("outsider reached a room member")
	}
}

func TestForwardEventsReachPeer(t *testing.T) {
	h := newTestHub()
	a := connect(h, "a")
	b := connect(h, "b")
	join(t, h, "a", "r1")
	join(t, h, "b", "r1")

	send(t, h, "a", string(SignalAnswer), &SignalMessage{SDP: map[string]any{"type": "answer"}})
	send(t, h, "b", string(SignalWaitRoom), &SignalMessage{MessageType: MessageTypeServer})

	if got := b.events(string(SignalAnswer)); len(got) != 1 {
		t.Errorf("b got %d ANSWER events, want 1", len(got))
	}
	wait := a.events(string(SignalWaitRoom))
	if len(wait) != 1 {
		t.Fatalf("a got %d WAIT_ROOM events, want 1", len(wait))
	}
	if msg := signalOf(t, wait[0]); msg.MessageType != MessageTypeServer || msg.SignalType != SignalWaitRoom {
		t.Errorf("WAIT_ROOM = %+v", msg)
	}
}

func TestForwardKeepsSDPNumbers(t *testing.T) {
	h := newTestHub()
	a := connect(h, "a")
	connect(h, "b")
	join(t, h, "a", "r1")
	join(t, h, "b", "r1")

	raw := `{"sdp":{"id":9007199254740993,"mid":[0,1.5],"type":"offer"}}`
	err := h.Dispatch("b", Inbound{Event: string(SignalRinging), Data: []byte(raw)}, JSONCodec{}, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	a.mu.Lock()
	var frame *Outbound
	for _, f := range a.frames {
		if f.Event == string(SignalRinging) {
			frame = f
		}
	}
	a.mu.Unlock()
	if frame == nil {
		t.Fatal("a got no RINGING")
	}

	// msgpack peers get real numbers, and the shared message is left as is.
	mb, err := (MsgpackCodec{}).Encode(frame)
	if err != nil {
		t.Fatalf("msgpack Encode failed: %v", err)
	}
	var decoded struct {
		Data struct {
			SDP map[string]any `msgpack:"sdp"`
		} `msgpack:"data"`
	}
	if err := msgpack.Unmarshal(mb, &decoded); err != nil {
		t.Fatalf("msgpack Unmarshal failed: %v", err)
	}
	if got := fmt.Sprint(decoded.Data.SDP["id"]); got != "9007199254740993" {
		t.Errorf("msgpack sdp id = %s", got)
	}

	jb, err := (JSONCodec{}).Encode(frame)
	if err != nil {
		t.Fatalf("json Encode failed: %v", err)
	}
	want := `"sdp":{"id":9007199254740993,"mid":[0,1.5],"type":"offer"}`
	if !strings.Contains(string(jb), want) {
		t.Errorf("forwarded frame = %s, want it to contain %s", jb, want)
	}
}

func TestReadyBroadcastsToEveryone(t *testing.T) {
	h := newTestHub()
	recs := []*recorder{connect(h, "a"), connect(h, "b"), connect(h, "c")}
	join(t, h, "a", "r1")

	send(t, h, "a", string(SignalReady), nil)
	for i, rec := range recs {
		got := rec.events(string(SignalReady))
		if len(got) != 1 {
			t.Errorf("conn %d got %d READY events, want 1", i, len(got))
			continue
		}
		if msg := signalOf(t, got[0]); msg.Room != "r1" {
			t.Errorf("READY room = %q, want r1", msg.Room)
		}
	}
}

func TestAckEvent(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"42", "Number is even"},
		{"7", "Number is odd"},
		{"1000000000000000000001", "Number is odd"},
		{"abc", "Param is not a number!"},
		{"", "Param is not a number!"},
		{"-4", "Param is not a number!"},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			h := newTestHub()
			h.Connect("a", &recorder{}, url.Values{"number": {tt.number}})
			if got := send(t, h, "a", EventAck, nil); got != tt.want {
				t.Errorf("ack = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestDispatchErrors(t *testing.T) {
	h := newTestHub()
	connect(h, "a")

	err := h.Dispatch("ghost", Inbound{Event: string(SignalJoinRoom)}, JSONCodec{}, nil)
	if !errors.Is(err, ErrUnknownConn) {
		t.Errorf("unknown conn err = %v, want ErrUnknownConn", err)
	}

	if got := send(t, h, "a", "DANCE", nil); got != "Unknown event DANCE" {
		t.Errorf("unknown event ack = %v", got)
	}

	var ack any
	err = h.Dispatch("a", Inbound{Event: string(SignalJoinRoom), Data: []byte(`"r1"`)}, JSONCodec{},
		func(data any) { ack = data })
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if s, ok := ack.(string); !ok || !strings.HasPrefix(s, "Invalid payload: ") {
		t.Errorf("invalid payload ack = %v", ack)
	}
	if h.Rooms().Len() != 0 {
		t.Error("invalid payload created a room")
	}
}

func TestDispatchWithoutAckID(t *testing.T) {
	h := newTestHub()
	rec := connect(h, "a")

	b, _ := msgpack.Marshal(&SignalMessage{Room: "r1"})
	if err := h.Dispatch("a", Inbound{Event: string(SignalJoinRoom), Data: b}, MsgpackCodec{}, nil); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(rec.events(string(SignalCreated))) != 1 {
		t.Error("msgpack join did not create the room")
	}
}

func TestCustomHandler(t *testing.T) {
	h := newTestHub()
	connect(h, "a")
	h.Router().Handle("PING", func(h *Hub, req *Request) { req.Ack("PONG " + req.Conn.ID) })

	if got := send(t, h, "a", "PING", nil); got != "PONG a" {
		t.Errorf("ack = %v", got)
	}
}

func TestDisconnect(t *testing.T) {
	t.Run("last member deletes room", func(t *testing.T) {
		h := newTestHub()
		connect(h, "a")
		join(t, h, "a", "r1")

		h.Disconnect("a")
		if h.Rooms().Len() != 0 {
			t.Error("room survived its last member")
		}
		if h.Stats().Connections != 0 {
			t.Error("connection still registered")
		}
	})

	t.Run("without room is silent", func(t *testing.T) {
		h := newTestHub()
		a := connect(h, "a")
		connect(h, "b")
		join(t, h, "a", "r1")

		h.Disconnect("b")
		if a.count() != 1 {
			t.Errorf("a got %d frames, want only CREATED", a.count())
		}
	})

	t.Run("repeated", func(t *testing.T) {
		h := newTestHub()
		a := connect(h, "a")
		connect(h, "b")
		join(t, h, "a", "r1")
		join(t, h, "b", "r1")

		h.Disconnect("b")
		h.Disconnect("b")
		if got := len(a.events(string(SignalDisconnected))); got != 1 {
			t.Errorf("a got %d DISCONNECTED events, want 1", got)
		}
	})

	t.Run("events after disconnect", func(t *testing.T) {
		h := newTestHub()
		connect(h, "a")
		h.Disconnect("a")

		err := h.Dispatch("a", Inbound{Event: string(SignalReady)}, JSONCodec{}, nil)
		if !errors.Is(err, ErrUnknownConn) {
			t.Errorf("err = %v, want ErrUnknownConn", err)
		}
	})
}

func TestFailingRecipientDoesNotAbortRelay(t *testing.T) {
	h := newTestHub()
	bad := &recorder{fail: true}
	h.Connect("bad", bad, nil)
	good := connect(h, "good")
	connect(h, "sender")

	send(t, h, "sender", string(SignalReady), nil)
	if len(good.events(string(SignalReady))) != 1 {
		t.Error("healthy connection missed READY")
	}
}

func TestConnectDuplicateKeepsFirst(t *testing.T) {
	h := newTestHub()
	first := &recorder{}
	h.Connect("a", first, nil)
	c := h.Connect("a", &recorder{}, nil)

	join(t, h, "a", "r1")
	if c.ID != "a" || len(first.events(string(SignalCreated))) != 1 {
		t.Error("duplicate Connect replaced the original record")
	}
	if h.Stats().Connections != 1 {
		t.Errorf("Connections = %d, want 1", h.Stats().Connections)
	}
}

func TestConcurrentJoinAdmitsTwo(t *testing.T) {
	const n = 64
	h := newTestHub()
	recs := make([]*recorder, n)
	for i := range recs {
		recs[i] = connect(h, fmt.Sprintf("c%d", i))
	}

	var wg sync.WaitGroup
	acks := make([]any, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			b := []byte(`{"room":"hot"}`)
			_ = h.Dispatch(id, Inbound{Event: string(SignalJoinRoom), Data: b}, JSONCodec{},
				func(data any) { acks[i] = data })
		}(i)
	}
	wg.Wait()

	var created, joined, full int
	for _, rec := range recs {
		created += len(rec.events(string(SignalCreated)))
		joined += len(rec.events(string(SignalJoined)))
		full += len(rec.events(string(SignalFullRoom)))
	}
	if created != 1 || joined != 1 || full != n-2 {
		t.Errorf("created=%d joined=%d full=%d, want 1/1/%d", created, joined, full, n-2)
	}
	if got := h.Rooms().Members("hot"); len(got) != RoomCapacity {
		t.Errorf("members = %v, want %d", got, RoomCapacity)
	}
	for i, ack := range acks {
		if ack == nil {
			t.Errorf("c%d got no ack", i)
		}
	}
}

func TestConcurrentJoinAndDisconnect(t *testing.T) {
	const n = 32
	h := newTestHub()
	for i := 0; i < n; i++ {
		connect(h, fmt.Sprintf("c%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("c%d", i)
		room := fmt.Sprintf("r%d", i%4)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = h.Dispatch(id, Inbound{Event: string(SignalJoinRoom), Data: []byte(`{"room":"` + room + `"}`)},
				JSONCodec{}, nil)
		}()
		go func() {
			defer wg.Done()
			h.Disconnect(id)
		}()
	}
	wg.Wait()

	s := h.Stats()
	if s.Connections != 0 {
		t.Errorf("Connections = %d, want 0", s.Connections)
	}
	if s.Rooms != 0 {
		t.Errorf("rooms left behind by disconnected connections: %+v", s.RoomList)
	}
}

func TestStats(t *testing.T) {
	h := newTestHub()
	for _, id := range []string{"a", "b", "c"} {
		connect(h, id)
	}
	join(t, h, "a", "r1")
	join(t, h, "b", "r1")
	join(t, h, "c", "r2")

	s := h.Stats()
	if s.Connections != 3 || s.Rooms != 2 || s.Active != 1 || s.Waiting != 1 {
		t.Errorf("Stats = %+v", s)
	}
}
