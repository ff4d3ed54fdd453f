package availability

import (
	"time"

	"github.com/frahmantamala/transport-management/internal"
)

// Driver and Vehicle are the slim views returned by the availability query;
// fleet administration owns the full records.
type Driver struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	LicenseNo string `json:"license_no"`
}

type Vehicle struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
}

// Availability is the result of a window query: all active drivers and
// vehicles minus those committed to an overlapping active trip.
type Availability struct {
	FromTime time.Time  `json:"from_time"`
	ToTime   time.Time  `json:"to_time"`
	Drivers  []*Driver  `json:"drivers"`
	Vehicles []*Vehicle `json:"vehicles"`
}

type Window struct {
	FromTime time.Time `json:"from_time"`
	ToTime   time.Time `json:"to_time"`
}

func (w Window) Validate() error {
	if w.FromTime.IsZero() || w.ToTime.IsZero() {
		return internal.NewValidationError("time window is required", internal.ErrCodeInvalidWindow)
	}
	if w.ToTime.Before(w.FromTime) {
		return internal.NewValidationError("window end must not be before start", internal.ErrCodeInvalidWindow)
	}
	return nil
}
