package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeConn records outbound frames so tests can assert on the wire
// protocol without a real socket.
type fakeConn struct {
	mu         sync.Mutex
	frames     [][]byte
	closed     bool
	failWrites bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return errors.New("connection gone")
	}
	if messageType == websocket.TextMessage {
		c.frames = append(c.frames, append([]byte(nil), data...))
	}
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// messages decodes every recorded text frame.
func (c *fakeConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, frame := range c.frames {
		var msg map[string]any
		if err := json.Unmarshal(frame, &msg); err != nil {
			t.Fatalf("undecodable frame %q: %v", frame, err)
		}
		out = append(out, msg)
	}
	return out
}

func (c *fakeConn) messagesOfType(t *testing.T, kind string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, msg := range c.messages(t) {
		if msg["type"] == kind {
			out = append(out, msg)
		}
	}
	return out
}

func (c *fakeConn) lastOfType(t *testing.T, kind string) map[string]any {
	t.Helper()
	msgs := c.messagesOfType(t, kind)
	if len(msgs) == 0 {
		t.Fatalf("no %q frame recorded", kind)
	}
	return msgs[len(msgs)-1]
}

// fakeScheduler runs deferred callbacks on a virtual clock driven by
// advance, so countdowns and disarm timers fire deterministically.
type fakeScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*fakeTask
}

type fakeTask struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (task *fakeTask) Stop() bool {
	if task.stopped || task.fired {
		return false
	}
	task.stopped = true
	return true
}

func newFakeScheduler() *fakeScheduler { return &fakeScheduler{} }

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &fakeTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// advance moves virtual time forward, firing due tasks in order. Tasks
// scheduled by a fired callback participate in the same advance when
// their deadline falls inside it.
func (s *fakeScheduler) advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		var next *fakeTask
		for _, task := range s.tasks {
			if task.stopped || task.fired || task.at > target {
				continue
			}
			if next == nil || task.at < next.at {
				next = task
			}
		}
		if next == nil {
			break
		}
		next.fired = true
		s.now = next.at
		s.mu.Unlock()
		next.fn()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, task := range s.tasks {
		if !task.stopped && !task.fired {
			n++
		}
	}
	return n
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

type fakeLevels struct {
	levels map[string]LevelData
	err    error
}

func (f *fakeLevels) Level(mapID string) (LevelData, error) {
	if f.err != nil {
		return LevelData{}, f.err
	}
	level, ok := f.levels[mapID]
	if !ok {
		return LevelData{}, errors.New("unknown map")
	}
	return level, nil
}

type fakeLobby struct {
	mu       sync.Mutex
	cfg      SessionConfig
	err      error
	statuses []string
}

func (f *fakeLobby) Game(gameID int64) (SessionConfig, error) {
	if f.err != nil {
		return SessionConfig{}, f.err
	}
	cfg := f.cfg
	cfg.GameID = gameID
	return cfg, nil
}

func (f *fakeLobby) SetStatus(gameID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeLobby) statusLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statuses...)
}

type statRecord struct {
	userID  string
	mapID   string
	elapsed float64
	role    string
}

type fakeStats struct {
	mu      sync.Mutex
	records []statRecord
}

func (f *fakeStats) Record(_ context.Context, userID, mapID string, elapsed float64, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, statRecord{userID: userID, mapID: mapID, elapsed: elapsed, role: role})
	return nil
}

// waitForRecords polls for the async stats goroutines to land.
func (f *fakeStats) waitForRecords(t *testing.T, n int) []statRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		f.mu.Lock()
		if len(f.records) >= n {
			out := append([]statRecord(nil), f.records...)
			f.mu.Unlock()
			return out
		}
		f.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d stat record(s)", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func rectPoints(x1, y1, x2, y2 float64) []Point {
	return []Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
}

func rectPolygon(kind PolygonType, name string, x1, y1, x2, y2 float64) Polygon {
	return Polygon{Type: kind, Name: name, Points: rectPoints(x1, y1, x2, y2)}
}

// testLevel is the shared fixture map: spawn around (100,100), a wall,
// a lava pit, a one-second trap, and the finish zone, all far enough
// apart that the 32x32 player rectangle touches exactly one at a time.
func testLevel() LevelData {
	return LevelData{
		MapID:     "arena",
		Durations: map[string]int{"normal": 60},
		Spawn:     Point{X: 100, Y: 100},
		Polygons: []Polygon{
			rectPolygon(PolygonBoundary, "wall", 200, 40, 260, 160),
			rectPolygon(PolygonLava, "pit", 40, 200, 160, 260),
			{Type: PolygonTrap, Name: "spike1", Timer: 1, Points: rectPoints(300, 40, 400, 160)},
			rectPolygon(PolygonSpawn, "start", 80, 80, 120, 120),
			rectPolygon("zone", FinishMarker, 500, 40, 600, 160),
		},
	}
}

// fixture wires a hub against in-memory collaborators and a virtual
// scheduler.
type fixture struct {
	hub    *Hub
	store  *MemoryRoomStore
	sched  *fakeScheduler
	clock  *fakeClock
	levels *fakeLevels
	lobby  *fakeLobby
	stats  *fakeStats
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: NewMemoryRoomStore(),
		sched: newFakeScheduler(),
		clock: newFakeClock(),
		levels: &fakeLevels{levels: map[string]LevelData{
			"arena": testLevel(),
		}},
		lobby: &fakeLobby{cfg: SessionConfig{
			MapID:      "arena",
			Difficulty: "normal",
			TrapperID:  "2",
			OwnerID:    "1",
			Roster:     map[string]string{"1": "alice", "2": "bob", "3": "carol"},
		}},
		stats: &fakeStats{},
	}
	f.hub = NewHub(HubConfig{
		Store:       f.store,
		Levels:      f.levels,
		Lobby:       f.lobby,
		Stats:       f.stats,
		Scheduler:   f.sched,
		Clock:       f.clock,
		StartDelay:  10 * time.Second,
		DeleteDelay: 5 * time.Second,
		SweepPeriod: 30 * time.Second,
	})
	return f
}

func (f *fixture) join(t *testing.T, sessionID int64, playerID string, host bool) (*Subscriber, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	sub := NewSubscriber(conn)
	f.hub.Join(sessionID, playerID, host, sub)
	return sub, conn
}

// started joins the full roster and advances past the start delay,
// returning the running room and the per-player connections.
func (f *fixture) started(t *testing.T, sessionID int64) (*Room, map[string]*fakeConn) {
	t.Helper()
	conns := make(map[string]*fakeConn)
	for _, id := range []string{"1", "2", "3"} {
		_, conn := f.join(t, sessionID, id, id == "1")
		conns[id] = conn
	}
	f.sched.advance(10 * time.Second)
	room, ok := f.store.Get(sessionID)
	if !ok {
		t.Fatalf("room %d missing after start", sessionID)
	}
	room.mu.Lock()
	active := room.timer.active
	room.mu.Unlock()
	if !active {
		t.Fatal("countdown did not start")
	}
	return room, conns
}
