package network

import (
	"context"

	"github.com/nastosinka/oops-trap-sub000/logging"
)

const (
	// EventPlayerJoined is emitted when a connection binds to a room.
	EventPlayerJoined logging.EventType = "network.player_joined"
	// EventPlayerDisconnected is emitted when a connection drops.
	EventPlayerDisconnected logging.EventType = "network.player_disconnected"
	// EventMalformedMessage is emitted when an inbound frame cannot be routed.
	EventMalformedMessage logging.EventType = "network.malformed_message"
)

// JoinPayload captures how a player attached.
type JoinPayload struct {
	Host     bool `json:"host"`
	Rejoined bool `json:"rejoined"`
}

// DisconnectPayload captures the room occupancy after the drop.
type DisconnectPayload struct {
	LiveRemaining int `json:"liveRemaining"`
}

// MalformedPayload captures why a frame was discarded.
type MalformedPayload struct {
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

// PlayerJoined publishes a join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload JoinPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}

// PlayerDisconnected publishes a disconnect event.
func PlayerDisconnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload DisconnectPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerDisconnected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}

// MalformedMessage publishes a warning for an unroutable frame.
func MalformedMessage(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload MalformedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMalformedMessage,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}
