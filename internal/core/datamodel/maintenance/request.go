package maintenance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Request struct {
	ID                int64            `gorm:"primaryKey"`
	EntitledVehicleID *int64           `gorm:"column:entitled_vehicle_id;index"`
	VehicleID         *int64           `gorm:"column:vehicle_id;index"`
	Description       string           `gorm:"column:description;not null"`
	Status            string           `gorm:"column:status;not null;default:pending;index"`
	Cost              *decimal.Decimal `gorm:"column:cost;type:numeric(12,2)"`
	IssueDescription  string           `gorm:"column:issue_description"`
	RequesterID       int64            `gorm:"column:requester_id;not null;index"`
	ApprovedByID      *int64           `gorm:"column:approved_by_id"`
	RejectionReason   *string          `gorm:"column:rejection_reason"`
	CompletedAt       *time.Time       `gorm:"column:completed_at"`
	CreatedAt         time.Time        `gorm:"column:created_at"`
	UpdatedAt         time.Time        `gorm:"column:updated_at"`
}

func (Request) TableName() string {
	return "maintenance_requests"
}
