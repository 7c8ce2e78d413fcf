package game

import (
	"context"
	"log"
	"time"

	"github.com/nastosinka/oops-trap-sub000/logging"
	loglifecycle "github.com/nastosinka/oops-trap-sub000/logging/lifecycle"
	lognetwork "github.com/nastosinka/oops-trap-sub000/logging/network"
)

// Deps bundles everything a room reaches for: the registry, the external
// collaborators, the scheduler, and the event publisher. Rooms share the
// hub's instance.
type Deps struct {
	Store     RoomStore
	Levels    LevelProvider
	Lobby     LobbyProvider
	Stats     StatsSink
	Publisher logging.Publisher
	Scheduler Scheduler
	Clock     Clock

	StartDelay  time.Duration
	DeleteDelay time.Duration
	SweepPeriod time.Duration
}

// HubConfig configures a hub. Zero-valued fields fall back to production
// defaults; only the level and lobby collaborators are mandatory.
type HubConfig struct {
	Store     RoomStore
	Levels    LevelProvider
	Lobby     LobbyProvider
	Stats     StatsSink
	Publisher logging.Publisher
	Scheduler Scheduler
	Clock     Clock

	StartDelay  time.Duration
	DeleteDelay time.Duration
	SweepPeriod time.Duration
}

// DefaultHubConfig returns the production defaults with no collaborators
// attached.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Stats:       NopStatsSink{},
		Publisher:   logging.NopPublisher(),
		Scheduler:   SystemScheduler(),
		Clock:       SystemClock{},
		StartDelay:  defaultStartDelay,
		DeleteDelay: defaultDeleteDelay,
		SweepPeriod: defaultSweepPeriod,
	}
}

// Hub routes inbound messages to rooms and owns the registry sweep. It
// creates a room on the first join for an unknown session id; everything
// after that is the room's business.
type Hub struct {
	deps Deps
}

func NewHub(cfg HubConfig) *Hub {
	def := DefaultHubConfig()
	if cfg.Store == nil {
		cfg.Store = NewMemoryRoomStore()
	}
	if cfg.Stats == nil {
		cfg.Stats = def.Stats
	}
	if cfg.Publisher == nil {
		cfg.Publisher = def.Publisher
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = def.Scheduler
	}
	if cfg.Clock == nil {
		cfg.Clock = def.Clock
	}
	if cfg.StartDelay <= 0 {
		cfg.StartDelay = def.StartDelay
	}
	if cfg.DeleteDelay <= 0 {
		cfg.DeleteDelay = def.DeleteDelay
	}
	if cfg.SweepPeriod <= 0 {
		cfg.SweepPeriod = def.SweepPeriod
	}
	return &Hub{deps: Deps{
		Store:       cfg.Store,
		Levels:      cfg.Levels,
		Lobby:       cfg.Lobby,
		Stats:       cfg.Stats,
		Publisher:   cfg.Publisher,
		Scheduler:   cfg.Scheduler,
		Clock:       cfg.Clock,
		StartDelay:  cfg.StartDelay,
		DeleteDelay: cfg.DeleteDelay,
		SweepPeriod: cfg.SweepPeriod,
	}}
}

// Dispatch routes one decoded frame from a connection bound to a session.
// The session id comes from the upgrade path and is authoritative; a
// frame naming a different game id is discarded.
func (h *Hub) Dispatch(sessionID int64, env ClientEnvelope, sub *Subscriber) {
	if env.GameID != 0 && env.GameID != sessionID {
		log.Printf("discarding frame for game %d on session %d", env.GameID, sessionID)
		return
	}
	if env.PlayerID == "" {
		h.reportMalformed(env.Type, "missing playerId")
		return
	}

	switch env.Type {
	case msgInit:
		h.Join(sessionID, env.PlayerID, env.IsHost, sub)
	case msgPlayerMove:
		if env.Settings == nil {
			h.reportMalformed(env.Type, "missing settings")
			return
		}
		h.Move(sessionID, env.PlayerID, *env.Settings)
	case msgTrap:
		h.Trap(sessionID, env.PlayerID, env.Trap)
	default:
		h.reportMalformed(env.Type, "unrecognized kind")
	}
}

func (h *Hub) reportMalformed(kind, reason string) {
	log.Printf("ignoring message kind=%q: %s", kind, reason)
	lognetwork.MalformedMessage(context.Background(), h.deps.Publisher,
		logging.EntityRef{Kind: logging.EntityKindWorld},
		lognetwork.MalformedPayload{Kind: kind, Error: reason}, nil)
}

// Join creates the room on the first join for a session and attaches the
// connection.
func (h *Hub) Join(sessionID int64, playerID string, isHost bool, sub *Subscriber) {
	room, created := h.deps.Store.GetOrCreate(sessionID, func() *Room {
		return newRoom(sessionID, &h.deps)
	})
	if created {
		loglifecycle.RoomCreated(context.Background(), h.deps.Publisher, room.ref(), nil)
	}
	room.HandleJoin(playerID, isHost, sub)
}

// Move forwards a movement update; moves for unknown sessions drop
// silently per the fail-safe rule.
func (h *Hub) Move(sessionID int64, playerID string, settings MoveSettings) {
	room, ok := h.deps.Store.Get(sessionID)
	if !ok {
		return
	}
	room.HandleMove(playerID, settings)
}

// Trap forwards a trap arm request.
func (h *Hub) Trap(sessionID int64, playerID, trapName string) {
	room, ok := h.deps.Store.Get(sessionID)
	if !ok {
		return
	}
	room.HandleTrap(playerID, trapName)
}

// Disconnect runs the disconnect path for a dropped connection.
func (h *Hub) Disconnect(sessionID int64, playerID string, sub *Subscriber) {
	room, ok := h.deps.Store.Get(sessionID)
	if !ok {
		return
	}
	room.HandleDisconnect(playerID, sub)
}

// SweepOnce removes every room with zero live connections. It backstops
// the per-event cleanup against leaked rooms.
func (h *Hub) SweepOnce() int {
	removed := 0
	for _, room := range h.deps.Store.Rooms() {
		if !room.Idle() {
			continue
		}
		if h.deps.Store.Remove(room.SessionID(), room) {
			removed++
			loglifecycle.RoomRemoved(context.Background(), h.deps.Publisher, room.ref(),
				loglifecycle.RoomRemovedPayload{Reason: "swept"}, nil)
		}
	}
	return removed
}

// RunSweeper drives the periodic sweep until the stop channel closes.
func (h *Hub) RunSweeper(stop <-chan struct{}) {
	ticker := time.NewTicker(h.deps.SweepPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := h.SweepOnce(); n > 0 {
				log.Printf("swept %d idle room(s)", n)
			}
		}
	}
}

// DiagnosticsSnapshot exposes registry state for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []RoomDiagnostics {
	rooms := h.deps.Store.Rooms()
	out := make([]RoomDiagnostics, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Diagnostics())
	}
	return out
}
