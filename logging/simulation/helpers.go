package simulation

import (
	"context"
	"time"

	"run-and-leap/server/logging"
)

const (
	// EventCommandRejected is emitted when a staged command fails validation.
	EventCommandRejected logging.EventType = "simulation.command_rejected"
	// EventCollectibleCollected is emitted when a pickup grants its value.
	EventCollectibleCollected logging.EventType = "simulation.collectible_collected"
	// EventTickBudgetExceeded is emitted when a step overruns its slice.
	EventTickBudgetExceeded logging.EventType = "simulation.tick_budget_exceeded"
	// EventKeyframeRestoreFailed is emitted when a snapshot cannot be decoded.
	EventKeyframeRestoreFailed logging.EventType = "simulation.keyframe_restore_failed"
)

// CommandRejectedPayload names the command kind and the rule that failed.
type CommandRejectedPayload struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// CollectibleCollectedPayload records a granted pickup.
type CollectibleCollectedPayload struct {
	CollectibleID uint64 `json:"collectibleId"`
	Value         int    `json:"value"`
}

// TickBudgetPayload compares the measured step duration to its budget.
type TickBudgetPayload struct {
	Duration time.Duration `json:"duration"`
	Budget   time.Duration `json:"budget"`
}

// RestoreFailedPayload carries the decode failure detail.
type RestoreFailedPayload struct {
	Error string `json:"error"`
}

// CommandRejected publishes a validation rejection at debug severity so the
// hot path stays quiet under the default filter.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandRejectedPayload, commandID uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:      EventCommandRejected,
		Tick:      tick,
		Actor:     actor,
		Severity:  logging.SeverityDebug,
		Category:  logging.CategorySimulation,
		Payload:   payload,
		CommandID: commandID,
	})
}

// CollectibleCollected publishes a granted pickup event.
func CollectibleCollected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CollectibleCollectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCollectibleCollected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// TickBudgetExceeded publishes a step overrun warning.
func TickBudgetExceeded(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetExceeded,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// KeyframeRestoreFailed publishes a snapshot decode failure.
func KeyframeRestoreFailed(ctx context.Context, pub logging.Publisher, tick uint64, payload RestoreFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventKeyframeRestoreFailed,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityError,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}
