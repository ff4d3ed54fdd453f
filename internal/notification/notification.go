package notification

import (
	"time"

	notificationDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/notification"
)

// Notification is one audit record per workflow transition. EventID is
// unique so replaying a bus event cannot duplicate the trail.
type Notification struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	EntityKind string    `json:"entity_kind"`
	EntityID   int64     `json:"entity_id"`
	ActorID    int64     `json:"actor_id"`
	Message    string    `json:"message"`
	Payload    string    `json:"payload,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:         n.ID,
		EventID:    n.EventID,
		EventType:  n.EventType,
		EntityKind: n.EntityKind,
		EntityID:   n.EntityID,
		ActorID:    n.ActorID,
		Message:    n.Message,
		Payload:    n.Payload,
		CreatedAt:  n.CreatedAt,
	}
}

func FromDataModel(n *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:         n.ID,
		EventID:    n.EventID,
		EventType:  n.EventType,
		EntityKind: n.EntityKind,
		EntityID:   n.EntityID,
		ActorID:    n.ActorID,
		Message:    n.Message,
		Payload:    n.Payload,
		CreatedAt:  n.CreatedAt,
	}
}

func FromDataModelSlice(dms []*notificationDatamodel.Notification) []*Notification {
	result := make([]*Notification, len(dms))
	for i, n := range dms {
		result[i] = FromDataModel(n)
	}
	return result
}
