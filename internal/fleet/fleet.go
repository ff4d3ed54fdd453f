package fleet

import (
	"time"

	"github.com/frahmantamala/transport-management/internal"
	fleetDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/fleet"
)

var (
	ErrDriverNotFound          = internal.NewNotFoundError("driver not found", internal.ErrCodeDriverNotFound)
	ErrVehicleNotFound         = internal.NewNotFoundError("vehicle not found", internal.ErrCodeVehicleNotFound)
	ErrVehicleInactive         = internal.NewConflictError("vehicle is not active", internal.ErrCodeVehicleConflict)
	ErrEntitledVehicleNotFound = internal.NewNotFoundError("entitled vehicle not found", internal.ErrCodeEntitledVehicleNotFound)
	ErrDriverReferenced        = internal.NewConflictError("driver is referenced by existing trips", internal.ErrCodeEntityReferenced)
	ErrVehicleReferenced       = internal.NewConflictError("vehicle is referenced by existing trips", internal.ErrCodeEntityReferenced)
)

type Driver struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	LicenseNo string    `json:"license_no"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Vehicle struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	Capacity  int       `json:"capacity"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntitledVehicle is a company vehicle assigned to one employee, as opposed
// to the shared fleet pool.
type EntitledVehicle struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	VehicleNumber string    `json:"vehicle_number"`
	VehicleType   string    `json:"vehicle_type,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func DriverToDataModel(d *Driver) *fleetDatamodel.Driver {
	return &fleetDatamodel.Driver{
		ID:        d.ID,
		Name:      d.Name,
		Phone:     d.Phone,
		LicenseNo: d.LicenseNo,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func DriverFromDataModel(d *fleetDatamodel.Driver) *Driver {
	return &Driver{
		ID:        d.ID,
		Name:      d.Name,
		Phone:     d.Phone,
		LicenseNo: d.LicenseNo,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func DriversFromDataModel(dms []*fleetDatamodel.Driver) []*Driver {
	result := make([]*Driver, len(dms))
	for i, d := range dms {
		result[i] = DriverFromDataModel(d)
	}
	return result
}

func VehicleToDataModel(v *Vehicle) *fleetDatamodel.Vehicle {
	return &fleetDatamodel.Vehicle{
		ID:        v.ID,
		Number:    v.Number,
		Type:      v.Type,
		Capacity:  v.Capacity,
		Active:    v.Active,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func VehicleFromDataModel(v *fleetDatamodel.Vehicle) *Vehicle {
	return &Vehicle{
		ID:        v.ID,
		Number:    v.Number,
		Type:      v.Type,
		Capacity:  v.Capacity,
		Active:    v.Active,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func VehiclesFromDataModel(dms []*fleetDatamodel.Vehicle) []*Vehicle {
	result := make([]*Vehicle, len(dms))
	for i, v := range dms {
		result[i] = VehicleFromDataModel(v)
	}
	return result
}

func EntitledToDataModel(e *EntitledVehicle) *fleetDatamodel.EntitledVehicle {
	return &fleetDatamodel.EntitledVehicle{
		ID:            e.ID,
		UserID:        e.UserID,
		VehicleNumber: e.VehicleNumber,
		VehicleType:   e.VehicleType,
		Active:        e.Active,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func EntitledFromDataModel(e *fleetDatamodel.EntitledVehicle) *EntitledVehicle {
	return &EntitledVehicle{
		ID:            e.ID,
		UserID:        e.UserID,
		VehicleNumber: e.VehicleNumber,
		VehicleType:   e.VehicleType,
		Active:        e.Active,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func EntitledFromDataModelSlice(dms []*fleetDatamodel.EntitledVehicle) []*EntitledVehicle {
	result := make([]*EntitledVehicle, len(dms))
	for i, e := range dms {
		result[i] = EntitledFromDataModel(e)
	}
	return result
}
