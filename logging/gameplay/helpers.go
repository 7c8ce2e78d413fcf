package gameplay

import (
	"context"

	"github.com/nastosinka/oops-trap-sub000/logging"
)

const (
	// EventPlayerDied is emitted when a hazard or active trap kills a player.
	EventPlayerDied logging.EventType = "gameplay.player_died"
	// EventPlayerFinished is emitted when a runner reaches the finish zone.
	EventPlayerFinished logging.EventType = "gameplay.player_finished"
	// EventTrapArmed is emitted when the trapper activates a trap.
	EventTrapArmed logging.EventType = "gameplay.trap_armed"
	// EventTrapDisarmed is emitted when a trap auto-disarms.
	EventTrapDisarmed logging.EventType = "gameplay.trap_disarmed"
)

// DeathPayload captures where and why a player died.
type DeathPayload struct {
	Reason string  `json:"reason"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// FinishPayload captures the runner's recorded time.
type FinishPayload struct {
	Elapsed float64 `json:"elapsed"`
}

// TrapPayload captures the arm parameters.
type TrapPayload struct {
	Duration float64 `json:"duration"`
	ArmedBy  string  `json:"armedBy,omitempty"`
}

// PlayerDied publishes a death event.
func PlayerDied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DeathPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerDied,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// PlayerFinished publishes a finish event.
func PlayerFinished(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FinishPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerFinished,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// TrapArmed publishes a trap activation event.
func TrapArmed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TrapPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTrapArmed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// TrapDisarmed publishes a trap deactivation event.
func TrapDisarmed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TrapPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTrapDisarmed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
