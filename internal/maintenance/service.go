package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/core/events"
	"github.com/shopspring/decimal"
)

// StatusChange is a guarded status write: the update only lands while the
// row is still in From.
type StatusChange struct {
	From            Status
	To              Status
	ApprovedBy      *int64
	RejectionReason *string
	Cost            *decimal.Decimal
	CompletedAt     *time.Time
}

type Repository interface {
	Create(request *Request) error
	GetByID(id int64) (*Request, error)
	ListByRequester(requesterID int64, limit, offset int) ([]*Request, error)
	ListAll(limit, offset int) ([]*Request, error)
	ListByStatus(status Status, limit, offset int) ([]*Request, error)
	// ApplyStatus performs the conditional transition and reports whether a
	// row in the expected state was found.
	ApplyStatus(id int64, change StatusChange) (bool, error)
	// AppendIssue adds issue text to the request without touching its
	// status; false means no such request exists.
	AppendIssue(id int64, issue string) (bool, error)
}

// EntitledVehicleGateway resolves employee-entitled vehicles owned by the
// fleet package.
type EntitledVehicleGateway interface {
	// OwnerOf returns the owning employee of an active entitled vehicle, or
	// fleet.ErrEntitledVehicleNotFound.
	OwnerOf(entitledVehicleID int64) (int64, error)
}

// VehicleGateway resolves fleet vehicles.
type VehicleGateway interface {
	// Exists reports whether an active vehicle with the given ID exists, or
	// fleet.ErrVehicleNotFound.
	Exists(vehicleID int64) error
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	entitled EntitledVehicleGateway
	vehicles VehicleGateway
	bus      EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, entitled EntitledVehicleGateway, vehicles VehicleGateway, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		entitled: entitled,
		vehicles: vehicles,
		bus:      bus,
		logger:   logger,
	}
}

// CreateForEntitled files a maintenance request for an employee's entitled
// vehicle. Employees may only file against vehicles entitled to them.
func (s *Service) CreateForEntitled(ctx context.Context, actor *auth.User, dto CreateEntitledDTO) (*Request, error) {
	if !actor.HasRole(auth.RoleEmployee, auth.RoleAdmin) {
		s.logger.Warn("maintenance create denied", "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("only employees may request entitled-vehicle maintenance", internal.ErrCodeInsufficientRole)
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ownerID, err := s.entitled.OwnerOf(dto.EntitledVehicleID)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RoleEmployee && ownerID != actor.ID {
		s.logger.Warn("maintenance create denied: not vehicle owner",
			"entitled_vehicle_id", dto.EntitledVehicleID, "user_id", actor.ID, "owner_id", ownerID)
		return nil, internal.NewForbiddenError("vehicle is not entitled to you", internal.ErrCodeNotResourceOwner)
	}

	request := &Request{
		EntitledVehicleID: &dto.EntitledVehicleID,
		Description:       dto.Description,
		Status:            StatusPending,
		RequesterID:       actor.ID,
	}
	return s.create(ctx, actor, request)
}

// CreateFleet files a maintenance request for a transport-owned vehicle.
func (s *Service) CreateFleet(ctx context.Context, actor *auth.User, dto CreateFleetDTO) (*Request, error) {
	if !actor.HasRole(auth.RoleTransport, auth.RoleAdmin) {
		s.logger.Warn("fleet maintenance create denied", "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("transport role required for fleet maintenance", internal.ErrCodeInsufficientRole)
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.vehicles.Exists(dto.VehicleID); err != nil {
		return nil, err
	}

	request := &Request{
		VehicleID:   &dto.VehicleID,
		Description: dto.Description,
		Status:      StatusPending,
		RequesterID: actor.ID,
	}
	return s.create(ctx, actor, request)
}

func (s *Service) create(ctx context.Context, actor *auth.User, request *Request) (*Request, error) {
	if err := s.repo.Create(request); err != nil {
		s.logger.Error("failed to persist maintenance request", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to create maintenance request", err)
	}

	s.publish(ctx, events.EventTypeMaintenanceRequested, request.ID, actor.ID, "maintenance requested", map[string]interface{}{
		"fleet": request.IsFleet(),
	})

	s.logger.Info("maintenance request created",
		"request_id", request.ID,
		"user_id", actor.ID,
		"fleet", request.IsFleet())

	return request, nil
}

// Decide approves or rejects a pending request.
func (s *Service) Decide(ctx context.Context, actor *auth.User, requestID int64, dto DecideDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.Decision == DecisionReject {
		change := StatusChange{
			From:            StatusPending,
			To:              StatusRejected,
			ApprovedBy:      &actor.ID,
			RejectionReason: dto.Reason,
		}
		return s.transition(ctx, actor, requestID, ActionReject, change,
			events.EventTypeMaintenanceRejected, "maintenance rejected")
	}

	change := StatusChange{
		From:       StatusPending,
		To:         StatusApproved,
		ApprovedBy: &actor.ID,
	}
	return s.transition(ctx, actor, requestID, ActionApprove, change,
		events.EventTypeMaintenanceApproved, "maintenance approved")
}

// Start moves an approved request into the workshop.
func (s *Service) Start(ctx context.Context, actor *auth.User, requestID int64) (*Request, error) {
	change := StatusChange{From: StatusApproved, To: StatusInProgress}
	return s.transition(ctx, actor, requestID, ActionStart, change,
		events.EventTypeMaintenanceStarted, "maintenance started")
}

// Complete closes an in-progress request, recording the cost when one is
// reported.
func (s *Service) Complete(ctx context.Context, actor *auth.User, requestID int64, dto CompleteDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	change := StatusChange{
		From:        StatusInProgress,
		To:          StatusCompleted,
		Cost:        dto.Cost,
		CompletedAt: &now,
	}
	return s.transition(ctx, actor, requestID, ActionComplete, change,
		events.EventTypeMaintenanceCompleted, "maintenance completed")
}

// ReportIssue appends issue text to a request. Any authenticated principal
// may report; the status never changes.
func (s *Service) ReportIssue(ctx context.Context, actor *auth.User, requestID int64, dto ReportIssueDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	found, err := s.repo.AppendIssue(requestID, dto.Issue)
	if err != nil {
		s.logger.Error("failed to append issue", "error", err, "request_id", requestID)
		return nil, internal.NewInternalError("failed to report issue", err)
	}
	if !found {
		return nil, ErrRequestNotFound
	}

	updated, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTypeMaintenanceIssue, requestID, actor.ID, "maintenance issue reported", map[string]interface{}{
		"status": string(updated.Status),
	})

	s.logger.Info("maintenance issue reported", "request_id", requestID, "user_id", actor.ID)

	return updated, nil
}

// GetByID returns one request; employees only see their own.
func (s *Service) GetByID(actor *auth.User, requestID int64) (*Request, error) {
	request, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && request.RequesterID != actor.ID {
		return nil, internal.NewForbiddenError("not allowed to view this maintenance request", internal.ErrCodeNotResourceOwner)
	}
	return request, nil
}

func (s *Service) ListOwn(actor *auth.User, limit, offset int) ([]*Request, error) {
	requests, err := s.repo.ListByRequester(actor.ID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list maintenance requests", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to list maintenance requests", err)
	}
	return requests, nil
}

func (s *Service) ListAll(actor *auth.User, limit, offset int) ([]*Request, error) {
	if !actor.IsStaff() {
		return nil, internal.NewForbiddenError("staff role required", internal.ErrCodeInsufficientRole)
	}
	requests, err := s.repo.ListAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to list maintenance requests", "error", err)
		return nil, internal.NewInternalError("failed to list maintenance requests", err)
	}
	return requests, nil
}

// ListPending returns requests awaiting a manager decision.
func (s *Service) ListPending(actor *auth.User, limit, offset int) ([]*Request, error) {
	if !actor.HasRole(auth.RoleManager, auth.RoleAdmin) {
		return nil, internal.NewForbiddenError("manager role required", internal.ErrCodeInsufficientRole)
	}
	requests, err := s.repo.ListByStatus(StatusPending, limit, offset)
	if err != nil {
		s.logger.Error("failed to list pending maintenance requests", "error", err)
		return nil, internal.NewInternalError("failed to list pending maintenance requests", err)
	}
	return requests, nil
}

// transition runs the shared role-check, precondition-check, guarded-write
// sequence for every status change.
func (s *Service) transition(ctx context.Context, actor *auth.User, requestID int64, action Action, change StatusChange, eventType, message string) (*Request, error) {
	rule := Transitions[action]

	if !actor.HasRole(rule.Roles...) {
		s.logger.Warn("maintenance transition denied",
			"request_id", requestID, "action", string(action), "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("role not allowed to perform this action", internal.ErrCodeInsufficientRole)
	}

	request, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, err
	}

	if !rule.AllowsFrom(request.Status) {
		return nil, internal.NewStateTransitionError("maintenance_request", string(request.Status), string(change.To))
	}

	applied, err := s.repo.ApplyStatus(requestID, change)
	if err != nil {
		s.logger.Error("maintenance transition failed", "error", err, "request_id", requestID, "action", string(action))
		return nil, internal.NewInternalError("failed to update maintenance request", err)
	}
	if !applied {
		// Lost the race: someone transitioned the row first.
		current, rerr := s.repo.GetByID(requestID)
		if rerr != nil {
			return nil, rerr
		}
		return nil, internal.NewStateTransitionError("maintenance_request", string(current.Status), string(change.To))
	}

	updated, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventType, requestID, actor.ID, message, map[string]interface{}{
		"status": string(updated.Status),
	})

	s.logger.Info("maintenance request transitioned",
		"request_id", requestID,
		"action", string(action),
		"status", string(updated.Status),
		"user_id", actor.ID)

	return updated, nil
}

func (s *Service) publish(ctx context.Context, eventType string, requestID, actorID int64, message string, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	event := events.NewWorkflowEvent(eventType, "maintenance_request", requestID, actorID, message, data)
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Error("failed to publish maintenance event", "error", err, "event_type", eventType, "request_id", requestID)
	}
}
