package notification

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/core/events"
)

type Repository interface {
	Create(notification *Notification) error
	ListRecent(limit, offset int) ([]*Notification, error)
	ListByEntity(entityKind string, entityID int64) ([]*Notification, error)
}

// Subscriber wires each workflow event type to a handler at startup.
type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// WorkflowEventTypes is every transition the audit sink records.
var WorkflowEventTypes = []string{
	events.EventTypeTripRequested,
	events.EventTypeTripApproved,
	events.EventTypeTripRejected,
	events.EventTypeTripAssigned,
	events.EventTypeTripStarted,
	events.EventTypeTripCompleted,
	events.EventTypeTripCancelled,
	events.EventTypeClaimSubmitted,
	events.EventTypeClaimApproved,
	events.EventTypeClaimRejected,
	events.EventTypeMaintenanceRequested,
	events.EventTypeMaintenanceApproved,
	events.EventTypeMaintenanceRejected,
	events.EventTypeMaintenanceStarted,
	events.EventTypeMaintenanceCompleted,
	events.EventTypeMaintenanceIssue,
}

// RegisterSubscriptions attaches the audit handler to every workflow event
// type on the bus.
func (s *Service) RegisterSubscriptions(bus Subscriber) {
	for _, eventType := range WorkflowEventTypes {
		bus.Subscribe(eventType, s.HandleWorkflowEvent)
	}
	s.logger.Info("notification sink subscribed", "event_types", len(WorkflowEventTypes))
}

// HandleWorkflowEvent persists one notification row per transition event.
func (s *Service) HandleWorkflowEvent(ctx context.Context, event events.Event) error {
	we, ok := event.(*events.WorkflowEvent)
	if !ok {
		s.logger.Warn("ignoring non-workflow event", "event_type", event.EventType(), "event_id", event.EventID())
		return nil
	}

	payload, err := json.Marshal(event.Payload())
	if err != nil {
		s.logger.Error("failed to marshal event payload", "error", err, "event_id", event.EventID())
		payload = []byte("{}")
	}

	n := &Notification{
		EventID:    we.EventID(),
		EventType:  we.EventType(),
		EntityKind: we.EntityKind,
		EntityID:   we.EntityID,
		ActorID:    we.ActorID,
		Message:    we.Message,
		Payload:    string(payload),
		CreatedAt:  we.OccurredAt(),
	}

	if err := s.repo.Create(n); err != nil {
		s.logger.Error("failed to persist notification",
			"error", err,
			"event_type", we.EventType(),
			"event_id", we.EventID())
		return err
	}

	return nil
}

// ListRecent returns the latest audit records for staff.
func (s *Service) ListRecent(actor *auth.User, limit, offset int) ([]*Notification, error) {
	if !actor.IsStaff() {
		return nil, internal.NewForbiddenError("staff role required", internal.ErrCodeInsufficientRole)
	}
	notifications, err := s.repo.ListRecent(limit, offset)
	if err != nil {
		s.logger.Error("failed to list notifications", "error", err)
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	return notifications, nil
}

// ListByEntity returns the audit trail of one entity for staff.
func (s *Service) ListByEntity(actor *auth.User, entityKind string, entityID int64) ([]*Notification, error) {
	if !actor.IsStaff() {
		return nil, internal.NewForbiddenError("staff role required", internal.ErrCodeInsufficientRole)
	}
	notifications, err := s.repo.ListByEntity(entityKind, entityID)
	if err != nil {
		s.logger.Error("failed to list entity notifications", "error", err, "entity_kind", entityKind, "entity_id", entityID)
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	return notifications, nil
}
