package trip

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/core/events"
)

// StatusChange is one atomic guarded status write: the update only applies
// while the row is still in From.
type StatusChange struct {
	From Status
	To   Status
	// ApprovedBy is recorded on manager decisions.
	ApprovedBy *int64
	// RejectionReason is written when TouchRejection is set; a nil value
	// clears the column (approval discards any earlier rejection reason).
	RejectionReason *string
	TouchRejection  bool
}

// Repository is the data access contract for trips. ApplyStatus and Assign
// are single atomic read-check-write units; two racing transitions on one
// trip can never both commit.
type Repository interface {
	Create(t *Trip) error
	GetByID(id int64) (*Trip, error)
	ListByRequester(requesterID int64, limit, offset int) ([]*Trip, error)
	ListAll(limit, offset int) ([]*Trip, error)
	ListByStatus(status Status, limit, offset int) ([]*Trip, error)
	// ApplyStatus performs the conditional update and reports whether a row
	// in the expected pre-state was found.
	ApplyStatus(id int64, change StatusChange) (bool, error)
	// Assign locks the trip row, re-checks its status, verifies driver and
	// vehicle are active and free of overlapping active trips, and writes
	// the assignment, all inside one transaction.
	Assign(id int64, driverID, vehicleID int64) (*Trip, error)
}

// ProfileAPI resolves the requester's department and company at creation
// time; the caller never supplies a department.
type ProfileAPI interface {
	DepartmentFor(userID int64) (department, company string, err error)
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	profiles ProfileAPI
	bus      EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, profiles ProfileAPI, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		bus:      bus,
		logger:   logger,
	}
}

// Create files a new trip request on behalf of the actor.
func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateTripDTO) (*Trip, error) {
	if !actor.HasRole(auth.RoleEmployee, auth.RoleAdmin) {
		s.logger.Warn("trip create denied", "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("only employees may request trips", internal.ErrCodeInsufficientRole)
	}

	if err := dto.Validate(); err != nil {
		s.logger.Error("trip validation failed", "error", err, "user_id", actor.ID)
		return nil, err
	}

	department, company, err := s.profiles.DepartmentFor(actor.ID)
	if err != nil {
		s.logger.Error("failed to resolve requester profile", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to resolve requester profile", err)
	}
	if dto.Company != "" {
		company = dto.Company
	}

	trip := &Trip{
		RequesterID: actor.ID,
		Purpose:     dto.Purpose,
		FromLoc:     dto.FromLoc,
		ToLoc:       dto.ToLoc,
		Stops:       dto.Stops,
		FromTime:    dto.FromTime,
		ToTime:      dto.ToTime,
		Company:     company,
		Department:  department,
		Status:      StatusRequested,
	}

	if err := s.repo.Create(trip); err != nil {
		s.logger.Error("failed to create trip", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to create trip", err)
	}

	s.publish(ctx, events.EventTypeTripRequested, trip.ID, actor.ID, "trip requested", map[string]interface{}{
		"status": string(trip.Status),
	})

	s.logger.Info("trip created",
		"trip_id", trip.ID,
		"requester_id", actor.ID,
		"from", trip.FromLoc,
		"to", trip.ToLoc)

	return trip, nil
}

// Decide approves or rejects a requested trip.
func (s *Service) Decide(ctx context.Context, actor *auth.User, tripID int64, dto DecideTripDTO) (*Trip, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	action := ActionApprove
	eventType := events.EventTypeTripApproved
	message := "trip approved by manager"
	if dto.Decision == DecisionReject {
		action = ActionReject
		eventType = events.EventTypeTripRejected
		message = "trip rejected by manager"
	}

	approver := actor.ID
	return s.transition(ctx, actor, tripID, action, eventType, message, func(change *StatusChange) {
		change.ApprovedBy = &approver
		change.TouchRejection = true
		if action == ActionReject {
			change.RejectionReason = dto.Reason
		}
		// approval leaves RejectionReason nil, clearing any earlier reason
	})
}

// Assign books a driver and vehicle onto a manager-approved trip.
func (s *Service) Assign(ctx context.Context, actor *auth.User, tripID int64, dto AssignTripDTO) (*Trip, error) {
	rule := Transitions[ActionAssign]
	if !actor.HasRole(rule.Roles...) {
		s.logger.Warn("trip assign denied", "trip_id", tripID, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("transport role required to assign trips", internal.ErrCodeInsufficientRole)
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	trip, err := s.repo.Assign(tripID, dto.DriverID, dto.VehicleID)
	if err != nil {
		s.logger.Warn("trip assign failed",
			"trip_id", tripID,
			"driver_id", dto.DriverID,
			"vehicle_id", dto.VehicleID,
			"error", err)
		return nil, err
	}

	s.publish(ctx, events.EventTypeTripAssigned, trip.ID, actor.ID, "driver and vehicle assigned", map[string]interface{}{
		"status":     string(trip.Status),
		"driver_id":  dto.DriverID,
		"vehicle_id": dto.VehicleID,
	})

	s.logger.Info("trip assigned",
		"trip_id", trip.ID,
		"driver_id", dto.DriverID,
		"vehicle_id", dto.VehicleID,
		"assigned_by", actor.ID)

	return trip, nil
}

// Start marks an assigned trip as underway.
func (s *Service) Start(ctx context.Context, actor *auth.User, tripID int64) (*Trip, error) {
	return s.transition(ctx, actor, tripID, ActionStart, events.EventTypeTripStarted, "trip started", nil)
}

// Complete closes out an in-progress trip.
func (s *Service) Complete(ctx context.Context, actor *auth.User, tripID int64) (*Trip, error) {
	return s.transition(ctx, actor, tripID, ActionComplete, events.EventTypeTripCompleted, "trip completed", nil)
}

// Cancel withdraws a trip that has no resource commitment yet. Once a driver
// and vehicle are booked the trip must run through completion instead, so a
// cancel never silently frees resources mid-trip.
func (s *Service) Cancel(ctx context.Context, actor *auth.User, tripID int64) (*Trip, error) {
	return s.transition(ctx, actor, tripID, ActionCancel, events.EventTypeTripCancelled, "trip cancelled", nil)
}

func (s *Service) transition(ctx context.Context, actor *auth.User, tripID int64, action Action, eventType, message string, mutate func(*StatusChange)) (*Trip, error) {
	rule, ok := Transitions[action]
	if !ok {
		return nil, internal.NewInternalError("unknown trip action", nil)
	}

	trip, err := s.repo.GetByID(tripID)
	if err != nil {
		return nil, err
	}

	if !rule.AllowsActor(actor, trip.RequesterID) {
		s.logger.Warn("trip transition denied",
			"trip_id", tripID,
			"action", action,
			"user_id", actor.ID,
			"role", actor.Role)
		return nil, internal.NewForbiddenError("not allowed to perform this trip action", internal.ErrCodeInsufficientRole)
	}

	if !rule.AllowsFrom(trip.Status) {
		return nil, internal.NewStateTransitionError("trip", string(trip.Status), string(rule.Next))
	}

	change := StatusChange{From: trip.Status, To: rule.Next}
	if mutate != nil {
		mutate(&change)
	}

	applied, err := s.repo.ApplyStatus(tripID, change)
	if err != nil {
		s.logger.Error("trip status update failed", "error", err, "trip_id", tripID, "action", action)
		return nil, internal.NewInternalError("failed to update trip status", err)
	}
	if !applied {
		// lost a race: the row left the expected pre-state between read and write
		current, rerr := s.repo.GetByID(tripID)
		if rerr != nil {
			return nil, rerr
		}
		return nil, internal.NewStateTransitionError("trip", string(current.Status), string(rule.Next))
	}

	updated, err := s.repo.GetByID(tripID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventType, tripID, actor.ID, message, map[string]interface{}{
		"status": string(updated.Status),
	})

	s.logger.Info("trip transition applied",
		"trip_id", tripID,
		"action", action,
		"from", change.From,
		"to", change.To,
		"actor_id", actor.ID)

	return updated, nil
}

// GetByID returns a trip the actor is allowed to see: its requester or any
// staff role.
func (s *Service) GetByID(actor *auth.User, tripID int64) (*Trip, error) {
	trip, err := s.repo.GetByID(tripID)
	if err != nil {
		return nil, err
	}

	if trip.RequesterID != actor.ID && !actor.IsStaff() {
		s.logger.Warn("trip access denied", "trip_id", tripID, "user_id", actor.ID)
		return nil, internal.NewForbiddenError("not allowed to view this trip", internal.ErrCodeNotResourceOwner)
	}

	return trip, nil
}

func (s *Service) ListOwn(actor *auth.User, limit, offset int) ([]*Trip, error) {
	trips, err := s.repo.ListByRequester(actor.ID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list trips", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to list trips", err)
	}
	return trips, nil
}

func (s *Service) ListAll(actor *auth.User, limit, offset int) ([]*Trip, error) {
	if !actor.IsStaff() {
		return nil, internal.NewForbiddenError("staff role required", internal.ErrCodeInsufficientRole)
	}
	trips, err := s.repo.ListAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to list trips", "error", err)
		return nil, internal.NewInternalError("failed to list trips", err)
	}
	return trips, nil
}

// ListPending returns trips awaiting a manager decision.
func (s *Service) ListPending(actor *auth.User, limit, offset int) ([]*Trip, error) {
	if !actor.HasRole(auth.RoleManager, auth.RoleAdmin) {
		return nil, internal.NewForbiddenError("manager role required", internal.ErrCodeInsufficientRole)
	}
	trips, err := s.repo.ListByStatus(StatusRequested, limit, offset)
	if err != nil {
		s.logger.Error("failed to list pending trips", "error", err)
		return nil, internal.NewInternalError("failed to list pending trips", err)
	}
	return trips, nil
}

func (s *Service) publish(ctx context.Context, eventType string, tripID, actorID int64, message string, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	event := events.NewWorkflowEvent(eventType, "trip", tripID, actorID, message, data)
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Error("failed to publish trip event", "error", err, "event_type", eventType, "trip_id", tripID)
	}
}
