package trip

import (
	"time"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	tripDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/trip"
)

type Status string

const (
	StatusRequested         Status = "requested"
	StatusManagerApproved   Status = "manager_approved"
	StatusManagerRejected   Status = "manager_rejected"
	StatusTransportAssigned Status = "transport_assigned"
	StatusInProgress        Status = "in_progress"
	StatusCompleted         Status = "completed"
	StatusCancelled         Status = "cancelled"
)

// ActiveAssignmentStatuses are the statuses under which a trip holds its
// driver and vehicle exclusively.
var ActiveAssignmentStatuses = []Status{StatusTransportAssigned, StatusInProgress}

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionAssign   Action = "assign"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// TransitionRule is one row of the trip state machine: which pre-states an
// action accepts, who may fire it, and the resulting state.
type TransitionRule struct {
	From       []Status
	Roles      []auth.Role
	AllowOwner bool
	Next       Status
}

// Transitions is the full legal-transition set, kept as data so it can be
// inspected and tested directly.
var Transitions = map[Action]TransitionRule{
	ActionApprove: {
		From:  []Status{StatusRequested},
		Roles: []auth.Role{auth.RoleManager, auth.RoleAdmin},
		Next:  StatusManagerApproved,
	},
	ActionReject: {
		From:  []Status{StatusRequested},
		Roles: []auth.Role{auth.RoleManager, auth.RoleAdmin},
		Next:  StatusManagerRejected,
	},
	ActionAssign: {
		From:  []Status{StatusManagerApproved},
		Roles: []auth.Role{auth.RoleTransport, auth.RoleAdmin},
		Next:  StatusTransportAssigned,
	},
	ActionStart: {
		From:  []Status{StatusTransportAssigned},
		Roles: []auth.Role{auth.RoleTransport, auth.RoleAdmin},
		Next:  StatusInProgress,
	},
	ActionComplete: {
		From:  []Status{StatusInProgress},
		Roles: []auth.Role{auth.RoleTransport, auth.RoleAdmin},
		Next:  StatusCompleted,
	},
	ActionCancel: {
		From:       []Status{StatusRequested, StatusManagerApproved},
		Roles:      []auth.Role{auth.RoleManager, auth.RoleTransport, auth.RoleAdmin},
		AllowOwner: true,
		Next:       StatusCancelled,
	},
}

func (r TransitionRule) AllowsFrom(s Status) bool {
	for _, from := range r.From {
		if from == s {
			return true
		}
	}
	return false
}

func (r TransitionRule) AllowsActor(actor *auth.User, requesterID int64) bool {
	if r.AllowOwner && actor.ID == requesterID {
		return true
	}
	return actor.HasRole(r.Roles...)
}

// Overlaps implements the half-open window predicate: two windows conflict
// iff a.from < b.to && b.from < a.to. Touching windows do not overlap.
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return aFrom.Before(bTo) && bFrom.Before(aTo)
}

type Trip struct {
	ID              int64     `json:"id"`
	RequesterID     int64     `json:"requester_id"`
	Purpose         string    `json:"purpose"`
	FromLoc         string    `json:"from_loc"`
	ToLoc           string    `json:"to_loc"`
	Stops           *string   `json:"stops,omitempty"`
	FromTime        time.Time `json:"from_time"`
	ToTime          time.Time `json:"to_time"`
	Company         string    `json:"company"`
	Department      string    `json:"department"`
	Status          Status    `json:"status"`
	DriverID        *int64    `json:"driver_id,omitempty"`
	VehicleID       *int64    `json:"vehicle_id,omitempty"`
	ApprovedByID    *int64    `json:"approved_by_id,omitempty"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

var (
	ErrTripNotFound    = internal.NewNotFoundError("trip not found", internal.ErrCodeTripNotFound)
	ErrDriverNotFound  = internal.NewNotFoundError("driver not found", internal.ErrCodeDriverNotFound)
	ErrVehicleNotFound = internal.NewNotFoundError("vehicle not found", internal.ErrCodeVehicleNotFound)
	ErrDriverInactive  = internal.NewConflictError("driver is not active", internal.ErrCodeDriverConflict)
	ErrVehicleInactive = internal.NewConflictError("vehicle is not active", internal.ErrCodeVehicleConflict)
	ErrDriverConflict  = internal.NewConflictError("driver already has an overlapping active trip", internal.ErrCodeDriverConflict)
	ErrVehicleConflict = internal.NewConflictError("vehicle already has an overlapping active trip", internal.ErrCodeVehicleConflict)
)

func ToDataModel(t *Trip) *tripDatamodel.Trip {
	return &tripDatamodel.Trip{
		ID:              t.ID,
		RequesterID:     t.RequesterID,
		Purpose:         t.Purpose,
		FromLoc:         t.FromLoc,
		ToLoc:           t.ToLoc,
		Stops:           t.Stops,
		FromTime:        t.FromTime,
		ToTime:          t.ToTime,
		Company:         t.Company,
		Department:      t.Department,
		Status:          string(t.Status),
		DriverID:        t.DriverID,
		VehicleID:       t.VehicleID,
		ApprovedByID:    t.ApprovedByID,
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func FromDataModel(t *tripDatamodel.Trip) *Trip {
	return &Trip{
		ID:              t.ID,
		RequesterID:     t.RequesterID,
		Purpose:         t.Purpose,
		FromLoc:         t.FromLoc,
		ToLoc:           t.ToLoc,
		Stops:           t.Stops,
		FromTime:        t.FromTime,
		ToTime:          t.ToTime,
		Company:         t.Company,
		Department:      t.Department,
		Status:          Status(t.Status),
		DriverID:        t.DriverID,
		VehicleID:       t.VehicleID,
		ApprovedByID:    t.ApprovedByID,
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func FromDataModelSlice(trips []*tripDatamodel.Trip) []*Trip {
	result := make([]*Trip, len(trips))
	for i, t := range trips {
		result[i] = FromDataModel(t)
	}
	return result
}
