package game

import (
	"context"
	"log"
	"sort"
	"strconv"

	loglifecycle "github.com/nastosinka/oops-trap-sub000/logging/lifecycle"
)

// completionLocked checks whether every runner has reached a terminal
// state and finalizes the room when so. It is called once per triggering
// event (death, finish, expiry) and is a no-op on finished rooms.
func (r *Room) completionLocked(out *outbox) {
	if r.finished {
		return
	}
	runners := 0
	terminal := 0
	for _, st := range r.states {
		if st.Role != RoleRunner {
			continue
		}
		runners++
		if st.Life.Terminal() {
			terminal++
		}
	}
	if runners == 0 || terminal < runners {
		return
	}
	r.finalizeLocked(out)
}

// finalizeLocked seals the room outcome exactly once: it fills in
// non-winner results for runners without one, scores the trapper, and
// broadcasts the aggregated result set. The countdown is stopped, every
// connection gets a normal closure, and the room is scheduled for
// deletion after a grace delay.
func (r *Room) finalizeLocked(out *outbox) {
	if r.finished {
		return
	}
	r.finished = true

	results := make([]PlayerResult, 0, len(r.states))
	runnerFinished := false
	for id, st := range r.states {
		if st.Role != RoleRunner {
			continue
		}
		res := PlayerResult{PlayerID: id, Role: RoleRunner}
		if st.Life == LifeFinished {
			elapsed := st.Elapsed
			res.Winner = true
			res.Time = &elapsed
			runnerFinished = true
		}
		results = append(results, res)
	}
	if r.trapperID != "" {
		res := PlayerResult{PlayerID: r.trapperID, Role: RoleTrapper}
		if !runnerFinished {
			elapsed := r.elapsedLocked()
			res.Winner = true
			res.Time = &elapsed
			r.recordStats(r.trapperID, elapsed, RoleTrapper)
		}
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].PlayerID < results[j].PlayerID })

	r.broadcastLocked(out, allStatsMessage{Type: "all_stats", Stats: results})

	r.stopCountdownLocked()
	r.cancelStartLocked()

	for _, m := range r.players {
		if !m.live {
			continue
		}
		m.live = false
		out.close(m.sub)
	}

	loglifecycle.RoomFinalized(context.Background(), r.pub, uint64(r.elapsedLocked()), r.ref(),
		loglifecycle.RoomFinalizedPayload{TrapperWin: !runnerFinished, Results: len(results)}, nil)

	r.deps.Scheduler.AfterFunc(r.deps.DeleteDelay, func() {
		if r.deps.Store.Remove(r.id, r) {
			loglifecycle.RoomRemoved(context.Background(), r.pub, r.ref(),
				loglifecycle.RoomRemovedPayload{Reason: "finalized"}, nil)
		}
	})
}

// recordStats forwards one timed result to the stats sink without
// blocking the room turn; failures are logged and forgotten.
func (r *Room) recordStats(playerID string, elapsed float64, role Role) {
	sink := r.deps.Stats
	if sink == nil {
		return
	}
	mapID := r.mapID
	go func() {
		if err := sink.Record(context.Background(), playerID, mapID, elapsed, string(role)); err != nil {
			log.Printf("stats record failed for %s: %v", playerID, err)
		}
	}()
}

func formatSessionID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func sortCoords(coords []PlayerCoord) {
	sort.Slice(coords, func(i, j int) bool { return coords[i].PlayerID < coords[j].PlayerID })
}
