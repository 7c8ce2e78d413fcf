package game

import "sync"

// RoomStore is the single authority for room existence. It is injected
// rather than a package-level singleton so tests can run isolated
// registries side by side.
type RoomStore interface {
	// Get returns the room registered for a session id.
	Get(sessionID int64) (*Room, bool)
	// GetOrCreate returns the registered room, constructing and
	// registering one atomically when the session id is unknown. The
	// second result reports whether a room was created.
	GetOrCreate(sessionID int64, create func() *Room) (*Room, bool)
	// Remove unregisters the room only if it is still the registered one,
	// so a deferred deletion never evicts a successor room reusing the id.
	Remove(sessionID int64, room *Room) bool
	// Rooms snapshots the registered rooms.
	Rooms() []*Room
}

// MemoryRoomStore is the in-process RoomStore.
type MemoryRoomStore struct {
	mu    sync.Mutex
	rooms map[int64]*Room
}

func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[int64]*Room)}
}

func (s *MemoryRoomStore) Get(sessionID int64) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[sessionID]
	return room, ok
}

func (s *MemoryRoomStore) GetOrCreate(sessionID int64, create func() *Room) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[sessionID]; ok {
		return room, false
	}
	room := create()
	s.rooms[sessionID] = room
	return room, true
}

func (s *MemoryRoomStore) Remove(sessionID int64, room *Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rooms[sessionID]
	if !ok || current != room {
		return false
	}
	delete(s.rooms, sessionID)
	return true
}

func (s *MemoryRoomStore) Rooms() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
