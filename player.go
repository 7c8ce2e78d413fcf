package game

// Role separates the adversarial trapper from cooperative runners.
type Role string

const (
	RoleTrapper Role = "trapper"
	RoleRunner  Role = "runner"
)

// LifeState is the tri-state liveness of a player. It serializes the way
// clients expect: true while alive, false once dead, null once finished.
// Dead and Finished are terminal; nothing moves a player out of them.
type LifeState uint8

const (
	LifeAlive LifeState = iota
	LifeDead
	LifeFinished
)

// Terminal reports whether the state can never change again.
func (l LifeState) Terminal() bool {
	return l != LifeAlive
}

func (l LifeState) MarshalJSON() ([]byte, error) {
	switch l {
	case LifeAlive:
		return []byte("true"), nil
	case LifeDead:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (l LifeState) String() string {
	switch l {
	case LifeAlive:
		return "alive"
	case LifeDead:
		return "dead"
	default:
		return "finished"
	}
}

// PlayerState is the per-room record for one roster member. X and Y are
// the last accepted position; LastImage is the client's facing/animation
// index and is echoed back verbatim in snapshots.
type PlayerState struct {
	Name      string
	X         float64
	Y         float64
	Role      Role
	Life      LifeState
	LastImage int

	// Elapsed seconds at the moment the player finished. Only meaningful
	// once Life is LifeFinished.
	Elapsed float64
}

// kill moves an alive player to the dead terminal state.
func (p *PlayerState) kill() bool {
	if p.Life != LifeAlive {
		return false
	}
	p.Life = LifeDead
	return true
}

// finish moves an alive player to the finished terminal state and records
// the elapsed time.
func (p *PlayerState) finish(elapsed float64) bool {
	if p.Life != LifeAlive {
		return false
	}
	p.Life = LifeFinished
	p.Elapsed = elapsed
	return true
}

// snapshot renders the wire representation used in consolidated position
// broadcasts.
func (p *PlayerState) snapshot(id string) PlayerCoord {
	return PlayerCoord{
		PlayerID:  id,
		Name:      p.Name,
		X:         p.X,
		Y:         p.Y,
		LastImage: p.LastImage,
		Role:      p.Role,
		Alive:     p.Life,
	}
}
