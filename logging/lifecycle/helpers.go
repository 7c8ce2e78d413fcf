package lifecycle

import (
	"context"

	"github.com/nastosinka/oops-trap-sub000/logging"
)

const (
	// EventRoomCreated is emitted when a room is registered for a session.
	EventRoomCreated logging.EventType = "lifecycle.room_created"
	// EventRoomStarted is emitted when the delayed start completes and the countdown begins.
	EventRoomStarted logging.EventType = "lifecycle.room_started"
	// EventRoomSetupFailed is emitted when a collaborator lookup aborts the delayed start.
	EventRoomSetupFailed logging.EventType = "lifecycle.room_setup_failed"
	// EventRoomFinalized is emitted when results are sealed and broadcast.
	EventRoomFinalized logging.EventType = "lifecycle.room_finalized"
	// EventRoomRemoved is emitted when the registry forgets a room.
	EventRoomRemoved logging.EventType = "lifecycle.room_removed"
)

// RoomStartedPayload captures the parameters the countdown was armed with.
type RoomStartedPayload struct {
	MapID     string `json:"mapId"`
	TotalTime int    `json:"totalTime"`
	Roster    int    `json:"roster"`
}

// SetupFailedPayload captures why the room never started.
type SetupFailedPayload struct {
	Reason string `json:"reason"`
}

// RoomFinalizedPayload captures the sealed outcome.
type RoomFinalizedPayload struct {
	TrapperWin bool `json:"trapperWin"`
	Results    int  `json:"results"`
}

// RoomRemovedPayload captures why the registry dropped the room.
type RoomRemovedPayload struct {
	Reason string `json:"reason"`
}

// RoomCreated publishes a room registration event.
func RoomCreated(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRoomCreated,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Extra:    extra,
	})
}

// RoomStarted publishes a countdown start event.
func RoomStarted(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload RoomStartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRoomStarted,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// SetupFailed publishes a warning that the delayed start aborted.
func SetupFailed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SetupFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRoomSetupFailed,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// RoomFinalized publishes the sealed outcome.
func RoomFinalized(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoomFinalizedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRoomFinalized,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// RoomRemoved publishes a registry removal event.
func RoomRemoved(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload RoomRemovedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRoomRemoved,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
