package trip

import "time"

type Trip struct {
	ID              int64      `gorm:"primaryKey"`
	RequesterID     int64      `gorm:"column:requester_id;not null;index"`
	Purpose         string     `gorm:"column:purpose;not null"`
	FromLoc         string     `gorm:"column:from_loc;not null"`
	ToLoc           string     `gorm:"column:to_loc;not null"`
	Stops           *string    `gorm:"column:stops"`
	FromTime        time.Time  `gorm:"column:from_time;not null;index"`
	ToTime          time.Time  `gorm:"column:to_time;not null"`
	Company         string     `gorm:"column:company"`
	Department      string     `gorm:"column:department"`
	Status          string     `gorm:"column:status;not null;default:requested;index"`
	DriverID        *int64     `gorm:"column:driver_id;index"`
	VehicleID       *int64     `gorm:"column:vehicle_id;index"`
	ApprovedByID    *int64     `gorm:"column:approved_by_id"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (Trip) TableName() string {
	return "trips"
}
