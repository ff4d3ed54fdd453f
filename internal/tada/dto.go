package tada

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/shopspring/decimal"
)

type CreateClaimDTO struct {
	ClaimType   string          `json:"claim_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (dto CreateClaimDTO) Validate() error {
	if _, ok := ParseClaimType(dto.ClaimType); !ok {
		return internal.NewValidationError(
			fmt.Sprintf("unknown claim type %q", dto.ClaimType),
			internal.ErrCodeInvalidClaimType)
	}
	if !dto.Amount.IsPositive() {
		return internal.NewValidationError("claim amount must be greater than zero", internal.ErrCodeInvalidAmount)
	}
	if dto.Amount.GreaterThan(MaxClaimAmount) {
		return internal.NewValidationError(
			fmt.Sprintf("claim amount exceeds the maximum of %s", MaxClaimAmount.String()),
			internal.ErrCodeInvalidAmount)
	}
	if strings.TrimSpace(dto.Description) == "" {
		return internal.NewValidationError("claim description is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateBatchDTO struct {
	Claims []CreateClaimDTO `json:"claims"`
}

// Validate checks every entry; one invalid claim fails the whole batch.
func (dto CreateBatchDTO) Validate() error {
	if len(dto.Claims) == 0 {
		return internal.NewValidationError("batch must contain at least one claim", internal.ErrCodeEmptyBatch)
	}
	if len(dto.Claims) > MaxBatchSize {
		return internal.NewValidationError(
			fmt.Sprintf("batch size exceeds the maximum of %d claims", MaxBatchSize),
			internal.ErrCodeBatchTooLarge)
	}
	for i, claim := range dto.Claims {
		if err := claim.Validate(); err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				return appErr.WithDetails(map[string]interface{}{"claim_index": i})
			}
			return err
		}
	}
	return nil
}

type DecideClaimDTO struct {
	Decision string  `json:"decision"`
	Reason   *string `json:"reason,omitempty"`
}

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

func (dto DecideClaimDTO) Validate() error {
	if dto.Decision != DecisionApprove && dto.Decision != DecisionReject {
		return internal.NewValidationError("decision must be either 'approve' or 'reject'", internal.ErrCodeValidationFailed)
	}
	return nil
}
