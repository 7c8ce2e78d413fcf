package game

import (
	"context"

	loggameplay "github.com/nastosinka/oops-trap-sub000/logging/gameplay"
)

// HandleMove processes a movement update for an alive player. Order
// matters: boundary first (rollback to the mover only, nothing mutated),
// then finish, then hazards; only a clear move commits the position and
// broadcasts the consolidated snapshot.
func (r *Room) HandleMove(playerID string, settings MoveSettings) {
	var out outbox

	r.mu.Lock()
	r.moveLocked(&out, playerID, settings)
	r.mu.Unlock()

	r.settle(&out)
}

func (r *Room) moveLocked(out *outbox, playerID string, settings MoveSettings) {
	if r.finished {
		return
	}
	st, ok := r.states[playerID]
	if !ok || st.Life != LifeAlive {
		// Unknown players and terminal states drop silently; a room whose
		// setup aborted has no states at all and lands here too.
		return
	}

	verdict, poly := classifyMove(r.polygons, settings.X, settings.Y)
	switch verdict {
	case moveBlocked:
		if m := r.players[playerID]; m != nil && m.live {
			out.send(m.sub, playerID, rollbackMessage{
				Type:     "rollback",
				X:        st.X,
				Y:        st.Y,
				PlayerID: playerID,
			})
		}

	case moveFinished:
		elapsed := r.elapsedLocked()
		st.finish(elapsed)
		r.recordStats(playerID, elapsed, RoleRunner)
		loggameplay.PlayerFinished(context.Background(), r.pub, uint64(elapsed), playerRef(playerID),
			loggameplay.FinishPayload{Elapsed: elapsed}, nil)
		r.completionLocked(out)

	case moveFatal:
		st.kill()
		reason := poly.deathReason()
		r.broadcastLocked(out, diedMessage{
			Type:      "died",
			PlayerID:  playerID,
			Reason:    reason,
			Timestamp: r.nowMillis(),
		})
		loggameplay.PlayerDied(context.Background(), r.pub, uint64(r.elapsedLocked()), playerRef(playerID),
			loggameplay.DeathPayload{Reason: reason, X: settings.X, Y: settings.Y}, nil)
		r.completionLocked(out)

	default:
		st.X = settings.X
		st.Y = settings.Y
		st.LastImage = settings.LastImage
		r.broadcastLocked(out, playerMoveMessage{
			Type:      "player_move",
			Coords:    r.coordsLocked(),
			Timestamp: r.nowMillis(),
		})
	}
}
