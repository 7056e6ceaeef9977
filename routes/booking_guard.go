package routes

import "sync"

// roomGuard serializes the overlap-check + insert critical section per room
// within this process. The row lock taken on the room inside the create
// transaction covers concurrent processes; the guard keeps a single-instance
// deployment from racing before the database ever sees the second request.
type roomGuard struct {
	mu    sync.Mutex
	rooms map[uint]*sync.Mutex
}

func newRoomGuard() *roomGuard {
	return &roomGuard{rooms: make(map[uint]*sync.Mutex)}
}

// acquire locks the guard for roomID and returns the unlock function.
// Locks are per room, so bookings for different rooms do not contend.
func (g *roomGuard) acquire(roomID uint) func() {
	g.mu.Lock()
	m, ok := g.rooms[roomID]
	if !ok {
		m = &sync.Mutex{}
		g.rooms[roomID] = m
	}
	g.mu.Unlock()

	m.Lock()
	return m.Unlock
}

var bookingGuard = newRoomGuard()
