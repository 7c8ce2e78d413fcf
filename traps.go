package game

import (
	"context"
	"time"

	"github.com/nastosinka/oops-trap-sub000/logging"
	loggameplay "github.com/nastosinka/oops-trap-sub000/logging/gameplay"
)

func trapRef(name string) logging.EntityRef {
	return logging.EntityRef{ID: name, Kind: logging.EntityKindTrap}
}

// HandleTrap arms a named trap. Only the room's trapper may arm, only
// while the trap is inactive and declares a positive duration; anything
// else is silently ignored. There is no manual disarm; the trap
// auto-disarms after exactly its declared duration.
func (r *Room) HandleTrap(playerID, trapName string) {
	var out outbox

	r.mu.Lock()
	r.armTrapLocked(&out, playerID, trapName)
	r.mu.Unlock()

	r.settle(&out)
}

func (r *Room) armTrapLocked(out *outbox, playerID, trapName string) {
	if r.finished || playerID != r.trapperID {
		return
	}
	trap := r.findTrapLocked(trapName)
	if trap == nil || trap.IsActive || trap.Timer <= 0 {
		return
	}

	trap.IsActive = true
	r.broadcastLocked(out, trapBroadcastMessage{
		Type:      "trap_message",
		Name:      trap.Name,
		Time:      trap.Timer,
		Result:    trapResultActivated,
		Timestamp: r.nowMillis(),
	})
	loggameplay.TrapArmed(context.Background(), r.pub, uint64(r.elapsedLocked()), trapRef(trap.Name),
		loggameplay.TrapPayload{Duration: trap.Timer, ArmedBy: playerID}, nil)

	// The floor just became lethal: sweep every committed position.
	for id, st := range r.states {
		if st.Life != LifeAlive {
			continue
		}
		poly := lethalAt(r.polygons, st.X, st.Y)
		if poly == nil {
			continue
		}
		st.kill()
		reason := poly.deathReason()
		r.broadcastLocked(out, diedMessage{
			Type:      "died",
			PlayerID:  id,
			Reason:    reason,
			Timestamp: r.nowMillis(),
		})
		loggameplay.PlayerDied(context.Background(), r.pub, uint64(r.elapsedLocked()), playerRef(id),
			loggameplay.DeathPayload{Reason: reason, X: st.X, Y: st.Y}, nil)
	}
	r.completionLocked(out)

	duration := time.Duration(trap.Timer * float64(time.Second))
	name := trap.Name
	r.after(duration, false, func(out *outbox) {
		r.disarmLocked(out, name)
	})
}

func (r *Room) disarmLocked(out *outbox, trapName string) {
	trap := r.findTrapLocked(trapName)
	if trap == nil || !trap.IsActive {
		return
	}
	trap.IsActive = false
	r.broadcastLocked(out, trapBroadcastMessage{
		Type:      "trap_message",
		Name:      trap.Name,
		Time:      trap.Timer,
		Result:    trapResultDeactivated,
		Timestamp: r.nowMillis(),
	})
	loggameplay.TrapDisarmed(context.Background(), r.pub, uint64(r.elapsedLocked()), trapRef(trap.Name),
		loggameplay.TrapPayload{Duration: trap.Timer}, nil)
}

func (r *Room) findTrapLocked(name string) *Polygon {
	if name == "" {
		return nil
	}
	for i := range r.polygons {
		poly := &r.polygons[i]
		if poly.Type == PolygonTrap && poly.Name == name {
			return poly
		}
	}
	return nil
}
