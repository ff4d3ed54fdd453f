package trip

import (
	"strings"
	"time"

	"github.com/frahmantamala/transport-management/internal"
)

type CreateTripDTO struct {
	Purpose  string    `json:"purpose"`
	FromLoc  string    `json:"from_loc"`
	ToLoc    string    `json:"to_loc"`
	Stops    *string   `json:"stops,omitempty"`
	FromTime time.Time `json:"from_time"`
	ToTime   time.Time `json:"to_time"`
	Company  string    `json:"company"`
}

func (dto CreateTripDTO) Validate() error {
	if strings.TrimSpace(dto.Purpose) == "" {
		return internal.NewValidationError("purpose is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.FromLoc) == "" {
		return internal.NewValidationError("from location is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.ToLoc) == "" {
		return internal.NewValidationError("to location is required", internal.ErrCodeValidationFailed)
	}
	if dto.FromTime.IsZero() || dto.ToTime.IsZero() {
		return internal.NewValidationError("trip time window is required", internal.ErrCodeInvalidWindow)
	}
	if dto.ToTime.Before(dto.FromTime) {
		return internal.NewValidationError("trip end time must not be before start time", internal.ErrCodeInvalidWindow)
	}
	return nil
}

type DecideTripDTO struct {
	Decision string  `json:"decision"`
	Reason   *string `json:"reason,omitempty"`
}

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

func (dto DecideTripDTO) Validate() error {
	if dto.Decision != DecisionApprove && dto.Decision != DecisionReject {
		return internal.NewValidationError("decision must be either 'approve' or 'reject'", internal.ErrCodeValidationFailed)
	}
	return nil
}

type AssignTripDTO struct {
	DriverID  int64 `json:"driver_id"`
	VehicleID int64 `json:"vehicle_id"`
}

func (dto AssignTripDTO) Validate() error {
	if dto.DriverID <= 0 {
		return internal.NewValidationError("driver id is required", internal.ErrCodeValidationFailed)
	}
	if dto.VehicleID <= 0 {
		return internal.NewValidationError("vehicle id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
