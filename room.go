package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nastosinka/oops-trap-sub000/logging"
	loglifecycle "github.com/nastosinka/oops-trap-sub000/logging/lifecycle"
	lognetwork "github.com/nastosinka/oops-trap-sub000/logging/network"
)

// member tracks one roster connection. Player gameplay state lives in
// Room.states and survives the connection; member.live only says whether
// broadcasts can currently reach the player.
type member struct {
	sub  *Subscriber
	live bool
	host bool
}

type countdownState struct {
	active    bool
	timeLeft  int
	totalTime int
	tick      Task
}

// Room owns every mutable fact about one live session: roster, polygon
// set, countdown, trap state, and the monotonic finished flag. All
// mutation happens under the room mutex; deferred callbacks re-enter
// through Room.after, which drops them once the room is finished or no
// longer registered.
type Room struct {
	mu   sync.Mutex
	id   int64
	deps *Deps
	pub  logging.Publisher

	players map[string]*member
	states  map[string]*PlayerState

	polygons  []Polygon
	mapID     string
	hostID    string
	trapperID string

	timer     countdownState
	armed     bool
	startTask Task
	finished  bool
}

func newRoom(id int64, deps *Deps) *Room {
	return &Room{
		id:   id,
		deps: deps,
		pub: logging.WithFields(deps.Publisher, map[string]any{
			"sessionId": id,
			"traceId":   uuid.NewString(),
		}),
		players: make(map[string]*member),
		states:  make(map[string]*PlayerState),
	}
}

// SessionID returns the immutable session id the room was created for.
func (r *Room) SessionID() int64 { return r.id }

func (r *Room) ref() logging.EntityRef {
	return logging.EntityRef{ID: formatSessionID(r.id), Kind: logging.EntityKindRoom}
}

func playerRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer}
}

// after schedules fn on the room's scheduler. The fired callback runs
// with the room locked and is silently dropped when the room has been
// finalized or replaced in the registry, so stale timers can never mutate
// a dead room. Outbound frames queued by fn are flushed after unlock.
func (r *Room) after(d time.Duration, allowFinished bool, fn func(out *outbox)) Task {
	return r.deps.Scheduler.AfterFunc(d, func() {
		var out outbox
		r.mu.Lock()
		current, ok := r.deps.Store.Get(r.id)
		if !ok || current != r || (r.finished && !allowFinished) {
			r.mu.Unlock()
			return
		}
		fn(&out)
		r.mu.Unlock()
		r.settle(&out)
	})
}

// settle flushes queued frames and runs the disconnect path for any
// connection that failed mid-write.
func (r *Room) settle(out *outbox) {
	for _, playerID := range out.flush() {
		r.HandleDisconnect(playerID, nil)
	}
}

// broadcastLocked queues a frame for every live connection.
func (r *Room) broadcastLocked(out *outbox, msg any) {
	for id, m := range r.players {
		if !m.live {
			continue
		}
		out.send(m.sub, id, msg)
	}
}

func (r *Room) nowMillis() int64 {
	return r.deps.Clock.Now().UnixMilli()
}

// elapsedLocked is the countdown progress in seconds.
func (r *Room) elapsedLocked() float64 {
	return float64(r.timer.totalTime - r.timer.timeLeft)
}

func (r *Room) liveCountLocked() int {
	live := 0
	for _, m := range r.players {
		if m.live {
			live++
		}
	}
	return live
}

func (r *Room) coordsLocked() []PlayerCoord {
	coords := make([]PlayerCoord, 0, len(r.states))
	for id, st := range r.states {
		coords = append(coords, st.snapshot(id))
	}
	sortCoords(coords)
	return coords
}

// HandleJoin attaches a connection to the room. Re-joining with the same
// player id replaces the connection without duplicating player state, and
// never interrupts an armed countdown.
func (r *Room) HandleJoin(playerID string, isHost bool, sub *Subscriber) {
	var out outbox
	var replaced *Subscriber

	r.mu.Lock()
	m, rejoined := r.players[playerID]
	if rejoined {
		if m.sub != nil && m.sub != sub && m.live {
			replaced = m.sub
		}
		m.sub = sub
		m.live = true
		if isHost {
			m.host = true
		}
	} else {
		m = &member{sub: sub, live: true, host: isHost}
		r.players[playerID] = m
	}
	if isHost {
		r.hostID = playerID
	}

	r.broadcastLocked(&out, playerJoinedMessage{
		Type:      "player_joined",
		PlayerID:  playerID,
		IsHost:    m.host,
		Timestamp: r.nowMillis(),
	})

	// A late join lands mid-countdown: hand it the current snapshot.
	if r.timer.active {
		out.send(sub, playerID, timerUpdateMessage{
			Type:      "timer_update",
			TimeLeft:  r.timer.timeLeft,
			TotalTime: r.timer.totalTime,
			Active:    true,
		})
	}

	if !r.armed && !r.timer.active && !r.finished {
		r.armed = true
		r.startTask = r.after(r.deps.StartDelay, false, r.delayedStartLocked)
	}
	hosting := m.host
	r.mu.Unlock()

	if replaced != nil {
		replaced.closeNormal("superseded")
	}
	lognetwork.PlayerJoined(context.Background(), r.pub, playerRef(playerID),
		lognetwork.JoinPayload{Host: hosting, Rejoined: rejoined}, nil)
	r.settle(&out)
}

// delayedStartLocked runs once the grace delay expires: it resolves the
// session and level from the collaborators, loads polygons, places the
// roster on the spawn point, assigns roles, and starts the countdown.
// A failed lookup aborts setup; the room then drops every move silently.
func (r *Room) delayedStartLocked(out *outbox) {
	r.startTask = nil
	if !r.armed || r.timer.active {
		return
	}

	cfg, err := r.deps.Lobby.Game(r.id)
	if err != nil {
		log.Printf("room %d: session lookup failed: %v", r.id, err)
		loglifecycle.SetupFailed(context.Background(), r.pub, r.ref(),
			loglifecycle.SetupFailedPayload{Reason: err.Error()}, nil)
		return
	}
	level, err := r.deps.Levels.Level(cfg.MapID)
	if err != nil {
		log.Printf("room %d: level %q lookup failed: %v", r.id, cfg.MapID, err)
		loglifecycle.SetupFailed(context.Background(), r.pub, r.ref(),
			loglifecycle.SetupFailedPayload{Reason: err.Error()}, nil)
		return
	}
	total := level.Duration(cfg.Difficulty)
	if total <= 0 {
		log.Printf("room %d: level %q has no usable duration", r.id, cfg.MapID)
		loglifecycle.SetupFailed(context.Background(), r.pub, r.ref(),
			loglifecycle.SetupFailedPayload{Reason: "no usable duration"}, nil)
		return
	}

	r.mapID = cfg.MapID
	r.trapperID = cfg.TrapperID
	if r.hostID == "" {
		r.hostID = cfg.OwnerID
	}

	r.timer.totalTime = total
	r.timer.timeLeft = total
	r.timer.active = true
	r.broadcastLocked(out, timerStartedMessage{
		Type:      "timer_started",
		TimeLeft:  r.timer.timeLeft,
		TotalTime: r.timer.totalTime,
	})
	r.timer.tick = r.after(countdownTick, false, r.tickLocked)

	r.polygons = clonePolygons(level.Polygons)

	// Fresh states for the whole roster, everyone on the shared spawn.
	r.states = make(map[string]*PlayerState, len(cfg.Roster))
	for id, name := range cfg.Roster {
		st := &PlayerState{
			Name: name,
			X:    level.Spawn.X,
			Y:    level.Spawn.Y,
			Role: RoleRunner,
			Life: LifeAlive,
		}
		if id == cfg.TrapperID {
			st.Role = RoleTrapper
		}
		r.states[id] = st
	}
	r.broadcastLocked(out, playerMoveMessage{
		Type:      "player_move",
		Coords:    r.coordsLocked(),
		Timestamp: r.nowMillis(),
	})

	if err := r.deps.Lobby.SetStatus(r.id, LobbyStatusInGame); err != nil {
		log.Printf("room %d: lobby status update failed: %v", r.id, err)
	}
	loglifecycle.RoomStarted(context.Background(), r.pub, r.ref(), loglifecycle.RoomStartedPayload{
		MapID:     cfg.MapID,
		TotalTime: total,
		Roster:    len(cfg.Roster),
	}, nil)
}

// tickLocked advances the countdown by one second and finalizes the room
// when it reaches zero.
func (r *Room) tickLocked(out *outbox) {
	if !r.timer.active {
		return
	}
	r.timer.timeLeft--
	if r.timer.timeLeft <= 0 {
		r.timer.timeLeft = 0
		r.broadcastLocked(out, timerUpdateMessage{
			Type:      "timer_update",
			TimeLeft:  0,
			TotalTime: r.timer.totalTime,
			Active:    false,
		})
		r.finalizeLocked(out)
		return
	}
	r.broadcastLocked(out, timerUpdateMessage{
		Type:      "timer_update",
		TimeLeft:  r.timer.timeLeft,
		TotalTime: r.timer.totalTime,
		Active:    true,
	})
	r.timer.tick = r.after(countdownTick, false, r.tickLocked)
}

// stopCountdownLocked is idempotent; the pending tick is cancelled at
// most once.
func (r *Room) stopCountdownLocked() {
	if r.timer.tick != nil {
		r.timer.tick.Stop()
		r.timer.tick = nil
	}
	r.timer.active = false
}

// cancelStartLocked drops a pending delayed start, if any.
func (r *Room) cancelStartLocked() {
	if r.startTask != nil {
		r.startTask.Stop()
		r.startTask = nil
	}
}

// HandleDisconnect marks the player's connection inactive, retaining the
// gameplay state. Pass a nil sub to force the drop regardless of which
// connection is current.
func (r *Room) HandleDisconnect(playerID string, sub *Subscriber) {
	var out outbox
	revertLobby := false

	r.mu.Lock()
	m, ok := r.players[playerID]
	if !ok || (sub != nil && m.sub != sub) {
		r.mu.Unlock()
		return
	}
	m.live = false

	r.broadcastLocked(&out, playerDisconnectedMessage{
		Type:      "player_disconnected",
		PlayerID:  playerID,
		Timestamp: r.nowMillis(),
	})

	live := r.liveCountLocked()
	if live == 0 {
		// Nobody is listening: park the room so a later rejoin can
		// re-trigger the delayed-start sequence before the sweep runs.
		r.stopCountdownLocked()
		r.cancelStartLocked()
		r.armed = false
	}
	if m.host && r.finished {
		revertLobby = true
	}
	r.mu.Unlock()

	if revertLobby {
		if err := r.deps.Lobby.SetStatus(r.id, LobbyStatusWaiting); err != nil {
			log.Printf("room %d: lobby revert failed: %v", r.id, err)
		}
	}
	lognetwork.PlayerDisconnected(context.Background(), r.pub, playerRef(playerID),
		lognetwork.DisconnectPayload{LiveRemaining: live}, nil)
	r.settle(&out)
}

// Idle reports whether no connection is live, stopping timers as a side
// effect so a swept room never leaves a countdown behind.
func (r *Room) Idle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.liveCountLocked() > 0 {
		return false
	}
	r.stopCountdownLocked()
	r.cancelStartLocked()
	r.armed = false
	return true
}

// RoomDiagnostics is the per-room slice of the diagnostics endpoint.
type RoomDiagnostics struct {
	SessionID int64 `json:"sessionId"`
	Players   int   `json:"players"`
	Live      int   `json:"live"`
	TimeLeft  int   `json:"timeLeft"`
	TotalTime int   `json:"totalTime"`
	Active    bool  `json:"active"`
	Finished  bool  `json:"finished"`
}

func (r *Room) Diagnostics() RoomDiagnostics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomDiagnostics{
		SessionID: r.id,
		Players:   len(r.players),
		Live:      r.liveCountLocked(),
		TimeLeft:  r.timer.timeLeft,
		TotalTime: r.timer.totalTime,
		Active:    r.timer.active,
		Finished:  r.finished,
	}
}
