package tada

import (
	"time"

	"github.com/shopspring/decimal"
)

type Claim struct {
	ID              int64           `gorm:"primaryKey"`
	TripID          int64           `gorm:"column:trip_id;not null;index"`
	ClaimType       string          `gorm:"column:claim_type;not null"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Description     string          `gorm:"column:description;not null"`
	Status          string          `gorm:"column:status;not null;default:pending;index"`
	RejectionReason *string         `gorm:"column:rejection_reason"`
	ApprovedByID    *int64          `gorm:"column:approved_by_id"`
	ProcessedAt     *time.Time      `gorm:"column:processed_at"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (Claim) TableName() string {
	return "tada_claims"
}
