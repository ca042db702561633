package signaling

import (
	"slices"
	"sort"
	"sync"
)

// RoomCapacity is the number of participants in a call.
const RoomCapacity = 2

// RoomState is the occupancy state of a room key.
type RoomState int

const (
	// RoomEmpty means no entry exists for the key.
	RoomEmpty RoomState = iota
	// RoomWaiting holds the caller alone.
	RoomWaiting
	// RoomActive holds both participants and rejects further joins.
	RoomActive
)

func (s RoomState) String() string {
	switch s {
	case RoomWaiting:
		return "WAITING"
	case RoomActive:
		return "ACTIVE"
	default:
		return "EMPTY"
	}
}

// Room is a two-party call slot.
type Room struct {
	Name string
	// CallerID is the member a second joiner should dial. It is the first
	// joiner, or the remaining member after the caller has left.
	CallerID string

	// members in join order.
	members []string
}

func (r *Room) state() RoomState {
	switch len(r.members) {
	case 0:
		return RoomEmpty
	case 1:
		return RoomWaiting
	default:
		return RoomActive
	}
}

// JoinOutcome is the result of an admission decision.
type JoinOutcome int

const (
	// JoinCreated admitted the connection into an empty room.
	JoinCreated JoinOutcome = iota + 1
	// JoinJoined admitted the connection as the second participant.
	JoinJoined
	// JoinFull rejected the connection; nothing changed.
	JoinFull
	// JoinAlready found the connection already in the room; nothing changed.
	JoinAlready
)

// JoinResult describes what Join did.
type JoinResult struct {
	Outcome  JoinOutcome
	Room     string
	CallerID string
	// Members is the occupancy after the decision.
	Members int
	// Left names the room the connection was moved out of, if any.
	Left string
}

// LeaveResult describes what Leave or Disconnect did.
type LeaveResult struct {
	Room string
	// Removed is false when the connection was not a member of Room.
	Removed bool
	// Deleted is true when the room emptied and its entry was dropped.
	Deleted bool
	// Remaining is a snapshot of the members still in Room.
	Remaining []string
}

// RoomInfo is a read-only view of one room.
type RoomInfo struct {
	Room     string `json:"room"`
	State    string `json:"state"`
	Members  int    `json:"members"`
	CallerID string `json:"caller"`
}

// Rooms is the room registry. A single mutex covers the room map and every
// Conn.room mutation, so an admission decision and the matching
// connection update happen in one critical section.
type Rooms struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[string]*Room)}
}

// Join runs the capacity state machine for c entering name. A connection
// that is in another room leaves it first, unless the target is full.
func (r *Rooms) Join(c *Conn, name string) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.closed {
		return JoinResult{}, ErrConnClosed
	}

	room := r.rooms[name]
	if c.room == name && room != nil {
		return JoinResult{
			Outcome:  JoinAlready,
			Room:     name,
			CallerID: room.CallerID,
			Members:  len(room.members),
		}, nil
	}
	if room != nil && len(room.members) >= RoomCapacity {
		return JoinResult{
			Outcome:  JoinFull,
			Room:     name,
			CallerID: room.CallerID,
			Members:  len(room.members),
		}, nil
	}

	res := JoinResult{Room: name}
	if c.room != "" {
		res.Left = c.room
		r.leaveLocked(c, c.room)
	}

	if room == nil {
		room = &Room{Name: name, CallerID: c.ID}
		r.rooms[name] = room
		res.Outcome = JoinCreated
	} else {
		res.Outcome = JoinJoined
	}
	room.members = append(room.members, c.ID)
	c.setRoom(name)

	res.CallerID = room.CallerID
	res.Members = len(room.members)
	return res, nil
}

// Leave removes c from name. An empty name means the connection's current
// room. Leaving a room the connection is not in, or one that no longer
// exists, changes nothing.
func (r *Rooms) Leave(c *Conn, name string) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		name = c.room
	}
	return r.leaveLocked(c, name)
}

// Disconnect marks c closed and removes it from its room. Later joins by c
// fail with ErrConnClosed, and repeated calls are no-ops.
func (r *Rooms) Disconnect(c *Conn) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.closed = true
	if c.room == "" {
		return LeaveResult{}
	}
	return r.leaveLocked(c, c.room)
}

func (r *Rooms) leaveLocked(c *Conn, name string) LeaveResult {
	res := LeaveResult{Room: name}
	if c.room == name {
		c.clearRoom()
	}

	room, ok := r.rooms[name]
	if !ok {
		return res
	}
	i := slices.Index(room.members, c.ID)
	if i < 0 {
		res.Remaining = slices.Clone(room.members)
		return res
	}
	room.members = slices.Delete(room.members, i, i+1)
	res.Removed = true

	if len(room.members) == 0 {
		delete(r.rooms, name)
		res.Deleted = true
		return res
	}
	if room.CallerID == c.ID {
		room.CallerID = room.members[0]
	}
	res.Remaining = slices.Clone(room.members)
	return res
}

// RoomOf returns the room c is currently in, or "".
func (r *Rooms) RoomOf(c *Conn) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return c.room
}

// Members returns a snapshot of the members of name.
func (r *Rooms) Members(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[name]
	if !ok {
		return nil
	}
	return slices.Clone(room.members)
}

// State returns the occupancy state of name.
func (r *Rooms) State(name string) RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[name]
	if !ok {
		return RoomEmpty
	}
	return room.state()
}

// Len returns the number of non-empty rooms.
func (r *Rooms) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Snapshot lists every room sorted by name.
func (r *Rooms) Snapshot() []RoomInfo {
	r.mu.Lock()
	infos := make([]RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		infos = append(infos, RoomInfo{
			Room:     room.Name,
			State:    room.state().String(),
			Members:  len(room.members),
			CallerID: room.CallerID,
		})
	}
	r.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Room < infos[j].Room })
	return infos
}
