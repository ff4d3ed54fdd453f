package fleet

import (
	"strings"

	"github.com/frahmantamala/transport-management/internal"
)

type CreateDriverDTO struct {
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	LicenseNo string `json:"license_no"`
}

func (dto CreateDriverDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewValidationError("driver name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.LicenseNo) == "" {
		return internal.NewValidationError("license number is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateDriverDTO struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	LicenseNo *string `json:"license_no,omitempty"`
}

func (dto UpdateDriverDTO) Validate() error {
	if dto.Name == nil && dto.Phone == nil && dto.LicenseNo == nil {
		return internal.NewValidationError("nothing to update", internal.ErrCodeValidationFailed)
	}
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return internal.NewValidationError("driver name must not be empty", internal.ErrCodeValidationFailed)
	}
	if dto.LicenseNo != nil && strings.TrimSpace(*dto.LicenseNo) == "" {
		return internal.NewValidationError("license number must not be empty", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateVehicleDTO struct {
	Number   string `json:"number"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity,omitempty"`
}

func (dto CreateVehicleDTO) Validate() error {
	if strings.TrimSpace(dto.Number) == "" {
		return internal.NewValidationError("vehicle number is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.Type) == "" {
		return internal.NewValidationError("vehicle type is required", internal.ErrCodeValidationFailed)
	}
	if dto.Capacity < 0 {
		return internal.NewValidationError("capacity must not be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateVehicleDTO struct {
	Number   *string `json:"number,omitempty"`
	Type     *string `json:"type,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
}

func (dto UpdateVehicleDTO) Validate() error {
	if dto.Number == nil && dto.Type == nil && dto.Capacity == nil {
		return internal.NewValidationError("nothing to update", internal.ErrCodeValidationFailed)
	}
	if dto.Number != nil && strings.TrimSpace(*dto.Number) == "" {
		return internal.NewValidationError("vehicle number must not be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Type != nil && strings.TrimSpace(*dto.Type) == "" {
		return internal.NewValidationError("vehicle type must not be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Capacity != nil && *dto.Capacity < 0 {
		return internal.NewValidationError("capacity must not be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateEntitledVehicleDTO struct {
	UserID        int64  `json:"user_id"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type,omitempty"`
}

func (dto CreateEntitledVehicleDTO) Validate() error {
	if dto.UserID <= 0 {
		return internal.NewValidationError("user_id is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.VehicleNumber) == "" {
		return internal.NewValidationError("vehicle number is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
