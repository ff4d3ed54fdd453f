package postgres

import (
	"time"

	"github.com/frahmantamala/transport-management/internal/availability"
	fleetDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/fleet"
	tripPostgres "github.com/frahmantamala/transport-management/internal/trip/postgres"
	"gorm.io/gorm"
)

// AvailabilityRepository implements availability.Repository using GORM. The
// conflict queries are shared with trip assignment so both sides apply the
// same overlap predicate.
type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) availability.Repository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) ActiveDrivers() ([]*availability.Driver, error) {
	var rows []*fleetDatamodel.Driver
	if err := r.db.Where("active = ?", true).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	drivers := make([]*availability.Driver, len(rows))
	for i, row := range rows {
		drivers[i] = &availability.Driver{
			ID:        row.ID,
			Name:      row.Name,
			Phone:     row.Phone,
			LicenseNo: row.LicenseNo,
		}
	}
	return drivers, nil
}

func (r *AvailabilityRepository) ActiveVehicles() ([]*availability.Vehicle, error) {
	var rows []*fleetDatamodel.Vehicle
	if err := r.db.Where("active = ?", true).Order("number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	vehicles := make([]*availability.Vehicle, len(rows))
	for i, row := range rows {
		vehicles[i] = &availability.Vehicle{
			ID:       row.ID,
			Number:   row.Number,
			Type:     row.Type,
			Capacity: row.Capacity,
		}
	}
	return vehicles, nil
}

func (r *AvailabilityRepository) ConflictingDriverIDs(from, to time.Time) ([]int64, error) {
	return tripPostgres.ConflictingDriverIDs(r.db, from, to)
}

func (r *AvailabilityRepository) ConflictingVehicleIDs(from, to time.Time) ([]int64, error) {
	return tripPostgres.ConflictingVehicleIDs(r.db, from, to)
}
