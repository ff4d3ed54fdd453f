package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized    ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeStateTransition ErrorType = "STATE_TRANSITION_ERROR"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidWindow    ErrorCode = "INVALID_TIME_WINDOW"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidCost      ErrorCode = "INVALID_COST"
	ErrCodeInvalidClaimType ErrorCode = "INVALID_CLAIM_TYPE"
	ErrCodeBatchTooLarge    ErrorCode = "BATCH_TOO_LARGE"
	ErrCodeEmptyBatch       ErrorCode = "EMPTY_BATCH"

	ErrCodeTripNotFound            ErrorCode = "TRIP_NOT_FOUND"
	ErrCodeClaimNotFound           ErrorCode = "CLAIM_NOT_FOUND"
	ErrCodeMaintenanceNotFound     ErrorCode = "MAINTENANCE_NOT_FOUND"
	ErrCodeDriverNotFound          ErrorCode = "DRIVER_NOT_FOUND"
	ErrCodeVehicleNotFound         ErrorCode = "VEHICLE_NOT_FOUND"
	ErrCodeEntitledVehicleNotFound ErrorCode = "ENTITLED_VEHICLE_NOT_FOUND"
	ErrCodeUserNotFound            ErrorCode = "USER_NOT_FOUND"

	ErrCodeInvalidTransition  ErrorCode = "INVALID_STATE_TRANSITION"
	ErrCodeDriverConflict     ErrorCode = "DRIVER_DOUBLE_BOOKED"
	ErrCodeVehicleConflict    ErrorCode = "VEHICLE_DOUBLE_BOOKED"
	ErrCodeEntityReferenced   ErrorCode = "ENTITY_REFERENCED"
	ErrCodeInsufficientRole   ErrorCode = "INSUFFICIENT_ROLE"
	ErrCodeNotResourceOwner   ErrorCode = "NOT_RESOURCE_OWNER"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// TransitionDetails names the illegal current -> requested pair so that a
// rejected transition is diagnosable from the response body alone.
type TransitionDetails struct {
	Entity    string `json:"entity"`
	Current   string `json:"current_state"`
	Requested string `json:"requested_state"`
}

// NewStateTransitionError is the conflict specialization for a state-machine
// guard failure.
func NewStateTransitionError(entity, current, requested string) *AppError {
	return &AppError{
		Type:       ErrorTypeStateTransition,
		Code:       ErrCodeInvalidTransition,
		Message:    fmt.Sprintf("invalid state transition for %s: %s -> %s", entity, current, requested),
		StatusCode: http.StatusConflict,
		Details: TransitionDetails{
			Entity:    entity,
			Current:   current,
			Requested: requested,
		},
	}
}

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

func IsStateTransitionError(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeStateTransition
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
