package lifecycle

import (
	"context"

	"run-and-leap/server/logging"
)

const (
	// EventPlayerJoined is emitted when a player joins the session.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerLeft is emitted when a player leaves the session.
	EventPlayerLeft logging.EventType = "lifecycle.player_left"
	// EventPlayerRespawned is emitted when a dead player is reseated.
	EventPlayerRespawned logging.EventType = "lifecycle.player_respawned"
	// EventPlayerDesynced is emitted when prediction drift forces a hard snap.
	EventPlayerDesynced logging.EventType = "lifecycle.player_desynced"
)

// PlayerJoinedPayload captures spawn metadata for a new player.
type PlayerJoinedPayload struct {
	Name   string  `json:"name"`
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
}

// PlayerLeftPayload captures the reason a player left.
type PlayerLeftPayload struct {
	Reason string `json:"reason"`
}

// PlayerDesyncedPayload captures the drift that triggered a snap.
type PlayerDesyncedPayload struct {
	Distance float64 `json:"distance"`
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerJoined, tick, actor, payload, extra)
}

// PlayerLeft publishes a player departure event.
func PlayerLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerLeftPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerLeft, tick, actor, payload, extra)
}

// PlayerRespawned publishes a respawn event.
func PlayerRespawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, extra map[string]any) {
	publish(ctx, pub, EventPlayerRespawned, tick, actor, nil, extra)
}

// PlayerDesynced publishes a desync hard-snap event.
func PlayerDesynced(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerDesyncedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerDesynced, tick, actor, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
