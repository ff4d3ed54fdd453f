package events

import (
	"time"

	"github.com/google/uuid"
)

// One event per workflow transition. The audit sink subscribes to all of
// these; nothing else in the core depends on them.
const (
	EventTypeTripRequested = "trip.requested"
	EventTypeTripApproved  = "trip.approved"
	EventTypeTripRejected  = "trip.rejected"
	EventTypeTripAssigned  = "trip.assigned"
	EventTypeTripStarted   = "trip.started"
	EventTypeTripCompleted = "trip.completed"
	EventTypeTripCancelled = "trip.cancelled"

	EventTypeClaimSubmitted = "tada.submitted"
	EventTypeClaimApproved  = "tada.approved"
	EventTypeClaimRejected  = "tada.rejected"

	EventTypeMaintenanceRequested = "maintenance.requested"
	EventTypeMaintenanceApproved  = "maintenance.approved"
	EventTypeMaintenanceRejected  = "maintenance.rejected"
	EventTypeMaintenanceStarted   = "maintenance.started"
	EventTypeMaintenanceCompleted = "maintenance.completed"
	EventTypeMaintenanceIssue     = "maintenance.issue_reported"
)

// WorkflowEvent records a single state-machine transition for auditing.
type WorkflowEvent struct {
	BaseEvent
	EntityKind string `json:"entity_kind"`
	EntityID   int64  `json:"entity_id"`
	ActorID    int64  `json:"actor_id"`
	Message    string `json:"message"`
}

func NewWorkflowEvent(eventType, entityKind string, entityID, actorID int64, message string, data map[string]interface{}) *WorkflowEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["entity_kind"] = entityKind
	data["entity_id"] = entityID
	data["actor_id"] = actorID

	return &WorkflowEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		EntityKind: entityKind,
		EntityID:   entityID,
		ActorID:    actorID,
		Message:    message,
	}
}
