package game

import "context"

// External collaborators. The room engine owns none of this data; it asks
// for it at delayed-start time and degrades fail-safe when a lookup fails.

// LevelData is the per-map payload resolved from the map-metadata provider.
type LevelData struct {
	MapID     string
	Durations map[string]int // difficulty -> countdown seconds
	Polygons  []Polygon
	Spawn     Point
}

// Duration resolves the countdown for a difficulty, falling back to the
// longest configured duration when the difficulty is unknown.
func (l LevelData) Duration(difficulty string) int {
	if secs, ok := l.Durations[difficulty]; ok && secs > 0 {
		return secs
	}
	max := 0
	for _, secs := range l.Durations {
		if secs > max {
			max = secs
		}
	}
	return max
}

// LevelProvider resolves level metadata by map id.
type LevelProvider interface {
	Level(mapID string) (LevelData, error)
}

// SessionConfig is the per-game configuration owned by the lobby
// collaborator: which map, which difficulty, who traps, who runs.
type SessionConfig struct {
	GameID     int64
	MapID      string
	Difficulty string
	TrapperID  string
	OwnerID    string
	Roster     map[string]string // playerID -> display name
}

// Lobby status values the engine writes back.
const (
	LobbyStatusWaiting = "lobby"
	LobbyStatusInGame  = "ingame"
)

// LobbyProvider exposes session configuration and a mutable status field.
type LobbyProvider interface {
	Game(gameID int64) (SessionConfig, error)
	SetStatus(gameID int64, status string) error
}

// StatsSink records final times, deduplicating by best time per role.
// Calls are fire-and-forget: failures are logged and never block or roll
// back the in-memory outcome.
type StatsSink interface {
	Record(ctx context.Context, userID, mapID string, elapsed float64, role string) error
}

// NopStatsSink discards every record. Used when persistence is disabled
// or failed to initialize.
type NopStatsSink struct{}

func (NopStatsSink) Record(context.Context, string, string, float64, string) error { return nil }
