package tada

import (
	"time"

	"github.com/frahmantamala/transport-management/internal"
	tadaDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/tada"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type ClaimType string

const (
	ClaimTypeFuel    ClaimType = "fuel"
	ClaimTypeLunch   ClaimType = "lunch"
	ClaimTypeToll    ClaimType = "toll"
	ClaimTypeParking ClaimType = "parking"
	ClaimTypeOther   ClaimType = "other"
)

func ParseClaimType(s string) (ClaimType, bool) {
	switch ClaimType(s) {
	case ClaimTypeFuel, ClaimTypeLunch, ClaimTypeToll, ClaimTypeParking, ClaimTypeOther:
		return ClaimType(s), true
	}
	return "", false
}

// MaxBatchSize caps a single batch submission.
const MaxBatchSize = 20

// MaxClaimAmount is the per-claim sanity bound.
var MaxClaimAmount = decimal.NewFromInt(1_000_000)

type Claim struct {
	ID              int64           `json:"id"`
	TripID          int64           `json:"trip_id"`
	ClaimType       ClaimType       `json:"claim_type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Status          Status          `json:"status"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	ApprovedByID    *int64          `json:"approved_by_id,omitempty"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CanBeDecided reports whether the claim is still open; claims are immutable
// once they leave pending.
func (c *Claim) CanBeDecided() bool {
	return c.Status == StatusPending
}

var ErrClaimNotFound = internal.NewNotFoundError("claim not found", internal.ErrCodeClaimNotFound)

func ToDataModel(c *Claim) *tadaDatamodel.Claim {
	return &tadaDatamodel.Claim{
		ID:              c.ID,
		TripID:          c.TripID,
		ClaimType:       string(c.ClaimType),
		Amount:          c.Amount,
		Description:     c.Description,
		Status:          string(c.Status),
		RejectionReason: c.RejectionReason,
		ApprovedByID:    c.ApprovedByID,
		ProcessedAt:     c.ProcessedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func FromDataModel(c *tadaDatamodel.Claim) *Claim {
	return &Claim{
		ID:              c.ID,
		TripID:          c.TripID,
		ClaimType:       ClaimType(c.ClaimType),
		Amount:          c.Amount,
		Description:     c.Description,
		Status:          Status(c.Status),
		RejectionReason: c.RejectionReason,
		ApprovedByID:    c.ApprovedByID,
		ProcessedAt:     c.ProcessedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func FromDataModelSlice(claims []*tadaDatamodel.Claim) []*Claim {
	result := make([]*Claim, len(claims))
	for i, c := range claims {
		result[i] = FromDataModel(c)
	}
	return result
}
