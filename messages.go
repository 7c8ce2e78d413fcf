package game

import "encoding/json"

// Inbound protocol. Every client frame is a JSON envelope carrying a type
// tag plus the union of per-kind fields; unknown kinds are logged and
// dropped by the dispatcher.

const (
	msgInit       = "init"
	msgPlayerMove = "player_move"
	msgTrap       = "trap_message"
)

// MoveSettings is the client-reported position update.
type MoveSettings struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	LastImage int     `json:"lastImage"`
}

// ClientEnvelope is the decoded inbound frame.
type ClientEnvelope struct {
	Type     string        `json:"type"`
	GameID   int64         `json:"gameId"`
	PlayerID string        `json:"playerId"`
	IsHost   bool          `json:"isHost"`
	Settings *MoveSettings `json:"settings,omitempty"`
	Trap     string        `json:"trap,omitempty"`
}

// DecodeEnvelope parses a raw frame, leaving validation to the dispatcher.
func DecodeEnvelope(payload []byte) (ClientEnvelope, error) {
	var env ClientEnvelope
	err := json.Unmarshal(payload, &env)
	return env, err
}

// Outbound protocol.

type playerJoinedMessage struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	IsHost    bool   `json:"isHost"`
	Timestamp int64  `json:"timestamp"`
}

type playerDisconnectedMessage struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Timestamp int64  `json:"timestamp"`
}

type timerStartedMessage struct {
	Type      string `json:"type"`
	TimeLeft  int    `json:"timeLeft"`
	TotalTime int    `json:"totalTime"`
}

type timerUpdateMessage struct {
	Type      string `json:"type"`
	TimeLeft  int    `json:"timeLeft"`
	TotalTime int    `json:"totalTime"`
	Active    bool   `json:"active"`
}

// PlayerCoord is one entry of the consolidated position snapshot.
type PlayerCoord struct {
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name,omitempty"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	LastImage int       `json:"lastImage"`
	Role      Role      `json:"role"`
	Alive     LifeState `json:"alive"`
}

type playerMoveMessage struct {
	Type      string        `json:"type"`
	Coords    []PlayerCoord `json:"coords"`
	Timestamp int64         `json:"timestamp"`
}

type rollbackMessage struct {
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	PlayerID string  `json:"playerId"`
}

type diedMessage struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

const (
	trapResultActivated   = "activated"
	trapResultDeactivated = "deactivated"
)

type trapBroadcastMessage struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Time      float64 `json:"time"`
	Result    string  `json:"result"`
	Timestamp int64   `json:"timestamp"`
}

// PlayerResult is one row of the final result set. Time is nil for
// non-winners, whose elapsed time was never recorded.
type PlayerResult struct {
	PlayerID string   `json:"playerId"`
	Role     Role     `json:"role"`
	Winner   bool     `json:"winner"`
	Time     *float64 `json:"time,omitempty"`
}

type allStatsMessage struct {
	Type  string         `json:"type"`
	Stats []PlayerResult `json:"stats"`
}
