package tada

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/core/events"
)

// DecisionChange is the guarded approve/reject write for one claim.
type DecisionChange struct {
	Approve     bool
	ApprovedBy  int64
	Reason      *string
	ProcessedAt time.Time
}

type Repository interface {
	// CreateBatch persists all claims in one transaction; a failure writes
	// nothing (all-or-nothing).
	CreateBatch(claims []*Claim) error
	GetByID(id int64) (*Claim, error)
	ListByTrip(tripID int64) ([]*Claim, error)
	ListByStatus(status Status, limit, offset int) ([]*Claim, error)
	// ApplyDecision updates the claim only while it is still pending and
	// reports whether a pending row was found.
	ApplyDecision(id int64, change DecisionChange) (bool, error)
}

// TripGateway resolves the owning trip without pulling in the whole trip
// workflow.
type TripGateway interface {
	// RequesterOf returns the requester of the trip, or trip.ErrTripNotFound.
	RequesterOf(tripID int64) (int64, error)
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   Repository
	trips  TripGateway
	bus    EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, trips TripGateway, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		trips:  trips,
		bus:    bus,
		logger: logger,
	}
}

// Create files a single claim against a trip.
func (s *Service) Create(ctx context.Context, actor *auth.User, tripID int64, dto CreateClaimDTO) (*Claim, error) {
	claims, err := s.CreateBatch(ctx, actor, tripID, CreateBatchDTO{Claims: []CreateClaimDTO{dto}})
	if err != nil {
		return nil, err
	}
	return claims[0], nil
}

// CreateBatch files several claims against one trip atomically: one invalid
// entry or a storage failure persists nothing.
func (s *Service) CreateBatch(ctx context.Context, actor *auth.User, tripID int64, dto CreateBatchDTO) ([]*Claim, error) {
	if !actor.HasRole(auth.RoleEmployee, auth.RoleAdmin) {
		s.logger.Warn("claim create denied", "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("only employees may file claims", internal.ErrCodeInsufficientRole)
	}

	if err := dto.Validate(); err != nil {
		s.logger.Error("claim batch validation failed", "error", err, "trip_id", tripID, "user_id", actor.ID)
		return nil, err
	}

	requesterID, err := s.trips.RequesterOf(tripID)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RoleEmployee && requesterID != actor.ID {
		s.logger.Warn("claim create denied: not trip requester",
			"trip_id", tripID, "user_id", actor.ID, "requester_id", requesterID)
		return nil, internal.NewForbiddenError("claims may only be filed against your own trips", internal.ErrCodeNotResourceOwner)
	}

	claims := make([]*Claim, len(dto.Claims))
	for i, c := range dto.Claims {
		claimType, _ := ParseClaimType(c.ClaimType)
		claims[i] = &Claim{
			TripID:      tripID,
			ClaimType:   claimType,
			Amount:      c.Amount,
			Description: c.Description,
			Status:      StatusPending,
		}
	}

	if err := s.repo.CreateBatch(claims); err != nil {
		s.logger.Error("failed to persist claim batch", "error", err, "trip_id", tripID, "count", len(claims))
		return nil, internal.NewInternalError("failed to create claims", err)
	}

	for _, claim := range claims {
		s.publish(ctx, events.EventTypeClaimSubmitted, claim.ID, actor.ID, "travel allowance claim submitted", map[string]interface{}{
			"trip_id":    tripID,
			"claim_type": string(claim.ClaimType),
			"amount":     claim.Amount.String(),
		})
	}

	s.logger.Info("claim batch created",
		"trip_id", tripID,
		"user_id", actor.ID,
		"count", len(claims))

	return claims, nil
}

// Decide approves or rejects a pending claim.
func (s *Service) Decide(ctx context.Context, actor *auth.User, claimID int64, dto DecideClaimDTO) (*Claim, error) {
	if !actor.HasRole(auth.RoleManager, auth.RoleAdmin) {
		s.logger.Warn("claim decide denied", "claim_id", claimID, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("manager role required to decide claims", internal.ErrCodeInsufficientRole)
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claim, err := s.repo.GetByID(claimID)
	if err != nil {
		return nil, err
	}

	next := StatusApproved
	if dto.Decision == DecisionReject {
		next = StatusRejected
	}

	if !claim.CanBeDecided() {
		return nil, internal.NewStateTransitionError("tada_claim", string(claim.Status), string(next))
	}

	change := DecisionChange{
		Approve:     dto.Decision == DecisionApprove,
		ApprovedBy:  actor.ID,
		ProcessedAt: time.Now(),
	}
	if !change.Approve {
		change.Reason = dto.Reason
	}

	applied, err := s.repo.ApplyDecision(claimID, change)
	if err != nil {
		s.logger.Error("claim decision failed", "error", err, "claim_id", claimID)
		return nil, internal.NewInternalError("failed to decide claim", err)
	}
	if !applied {
		current, rerr := s.repo.GetByID(claimID)
		if rerr != nil {
			return nil, rerr
		}
		return nil, internal.NewStateTransitionError("tada_claim", string(current.Status), string(next))
	}

	updated, err := s.repo.GetByID(claimID)
	if err != nil {
		return nil, err
	}

	eventType := events.EventTypeClaimApproved
	message := "claim approved"
	if next == StatusRejected {
		eventType = events.EventTypeClaimRejected
		message = "claim rejected"
	}
	s.publish(ctx, eventType, claimID, actor.ID, message, map[string]interface{}{
		"trip_id": updated.TripID,
		"status":  string(updated.Status),
	})

	s.logger.Info("claim decided",
		"claim_id", claimID,
		"decision", dto.Decision,
		"manager_id", actor.ID)

	return updated, nil
}

// ListByTrip returns the claims for a trip; employees only see claims on
// their own trips.
func (s *Service) ListByTrip(actor *auth.User, tripID int64) ([]*Claim, error) {
	requesterID, err := s.trips.RequesterOf(tripID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && requesterID != actor.ID {
		return nil, internal.NewForbiddenError("not allowed to view claims for this trip", internal.ErrCodeNotResourceOwner)
	}

	claims, err := s.repo.ListByTrip(tripID)
	if err != nil {
		s.logger.Error("failed to list claims", "error", err, "trip_id", tripID)
		return nil, internal.NewInternalError("failed to list claims", err)
	}
	return claims, nil
}

// ListPending returns claims awaiting a manager decision.
func (s *Service) ListPending(actor *auth.User, limit, offset int) ([]*Claim, error) {
	if !actor.HasRole(auth.RoleManager, auth.RoleAdmin) {
		return nil, internal.NewForbiddenError("manager role required", internal.ErrCodeInsufficientRole)
	}
	claims, err := s.repo.ListByStatus(StatusPending, limit, offset)
	if err != nil {
		s.logger.Error("failed to list pending claims", "error", err)
		return nil, internal.NewInternalError("failed to list pending claims", err)
	}
	return claims, nil
}

func (s *Service) publish(ctx context.Context, eventType string, claimID, actorID int64, message string, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	event := events.NewWorkflowEvent(eventType, "tada_claim", claimID, actorID, message, data)
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.logger.Error("failed to publish claim event", "error", err, "event_type", eventType, "claim_id", claimID)
	}
}
