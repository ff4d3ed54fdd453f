package maintenance

import (
	"time"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	maintenanceDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/maintenance"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
)

type TransitionRule struct {
	From  []Status
	Roles []auth.Role
	Next  Status
}

// Transitions is the maintenance state machine as data.
var Transitions = map[Action]TransitionRule{
	ActionApprove: {
		From:  []Status{StatusPending},
		Roles: []auth.Role{auth.RoleManager, auth.RoleAdmin},
		Next:  StatusApproved,
	},
	ActionReject: {
		From:  []Status{StatusPending},
		Roles: []auth.Role{auth.RoleManager, auth.RoleAdmin},
		Next:  StatusRejected,
	},
	ActionStart: {
		From:  []Status{StatusApproved},
		Roles: []auth.Role{auth.RoleTransport, auth.RoleAdmin},
		Next:  StatusInProgress,
	},
	ActionComplete: {
		From:  []Status{StatusInProgress},
		Roles: []auth.Role{auth.RoleTransport, auth.RoleAdmin},
		Next:  StatusCompleted,
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

// MaxCost is the completion-cost sanity bound.
var MaxCost = decimal.NewFromInt(10_000_000)

// Request is a maintenance request for either an employee-entitled vehicle
// or a transport-owned fleet vehicle; exactly one of the two references is
// set.
type Request struct {
	ID                int64            `json:"id"`
	EntitledVehicleID *int64           `json:"entitled_vehicle_id,omitempty"`
	VehicleID         *int64           `json:"vehicle_id,omitempty"`
	Description       string           `json:"description"`
	Status            Status           `json:"status"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	IssueDescription  string           `json:"issue_description,omitempty"`
	RequesterID       int64            `json:"requester_id"`
	ApprovedByID      *int64           `json:"approved_by_id,omitempty"`
	RejectionReason   *string          `json:"rejection_reason,omitempty"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// IsFleet reports whether the request targets a transport-owned vehicle.
func (r *Request) IsFleet() bool {
	return r.VehicleID != nil
}

var ErrRequestNotFound = internal.NewNotFoundError("maintenance request not found", internal.ErrCodeMaintenanceNotFound)

func ToDataModel(r *Request) *maintenanceDatamodel.Request {
	return &maintenanceDatamodel.Request{
		ID:                r.ID,
		EntitledVehicleID: r.EntitledVehicleID,
		VehicleID:         r.VehicleID,
		Description:       r.Description,
		Status:            string(r.Status),
		Cost:              r.Cost,
		IssueDescription:  r.IssueDescription,
		RequesterID:       r.RequesterID,
		ApprovedByID:      r.ApprovedByID,
		RejectionReason:   r.RejectionReason,
		CompletedAt:       r.CompletedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func FromDataModel(r *maintenanceDatamodel.Request) *Request {
	return &Request{
		ID:                r.ID,
		EntitledVehicleID: r.EntitledVehicleID,
		VehicleID:         r.VehicleID,
		Description:       r.Description,
		Status:            Status(r.Status),
		Cost:              r.Cost,
		IssueDescription:  r.IssueDescription,
		RequesterID:       r.RequesterID,
		ApprovedByID:      r.ApprovedByID,
		RejectionReason:   r.RejectionReason,
		CompletedAt:       r.CompletedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func FromDataModelSlice(requests []*maintenanceDatamodel.Request) []*Request {
	result := make([]*Request, len(requests))
	for i, r := range requests {
		result[i] = FromDataModel(r)
	}
	return result
}
