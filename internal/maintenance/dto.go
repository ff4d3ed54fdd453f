package maintenance

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/shopspring/decimal"
)

type CreateEntitledDTO struct {
	EntitledVehicleID int64  `json:"entitled_vehicle_id"`
	Description       string `json:"description"`
}

func (dto CreateEntitledDTO) Validate() error {
	if dto.EntitledVehicleID <= 0 {
		return internal.NewValidationError("entitled_vehicle_id is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.Description) == "" {
		return internal.NewValidationError("description is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateFleetDTO struct {
	VehicleID   int64  `json:"vehicle_id"`
	Description string `json:"description"`
}

func (dto CreateFleetDTO) Validate() error {
	if dto.VehicleID <= 0 {
		return internal.NewValidationError("vehicle_id is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.Description) == "" {
		return internal.NewValidationError("description is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type DecideDTO struct {
	Decision string  `json:"decision"`
	Reason   *string `json:"reason,omitempty"`
}

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

func (dto DecideDTO) Validate() error {
	if dto.Decision != DecisionApprove && dto.Decision != DecisionReject {
		return internal.NewValidationError("decision must be either 'approve' or 'reject'", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CompleteDTO struct {
	Cost *decimal.Decimal `json:"cost,omitempty"`
}

// Validate allows a zero cost (warranty work) but rejects negative and
// implausibly large amounts.
func (dto CompleteDTO) Validate() error {
	if dto.Cost == nil {
		return nil
	}
	if dto.Cost.IsNegative() {
		return internal.NewValidationError("cost must not be negative", internal.ErrCodeInvalidCost)
	}
	if dto.Cost.GreaterThan(MaxCost) {
		return internal.NewValidationError(
			fmt.Sprintf("cost exceeds the maximum of %s", MaxCost.String()),
			internal.ErrCodeInvalidCost)
	}
	return nil
}

type ReportIssueDTO struct {
	Issue string `json:"issue"`
}

func (dto ReportIssueDTO) Validate() error {
	if strings.TrimSpace(dto.Issue) == "" {
		return internal.NewValidationError("issue text is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
