package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/core/datamodel/fleet"
	tripDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/trip"
	"github.com/frahmantamala/transport-management/internal/trip"
	"gorm.io/gorm"
)

// TripRepository implements the trip.Repository interface using GORM
type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) trip.Repository {
	return &TripRepository{db: db}
}

func activeStatuses() []string {
	statuses := make([]string, len(trip.ActiveAssignmentStatuses))
	for i, s := range trip.ActiveAssignmentStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// ConflictingDriverIDs returns drivers holding an active trip whose window
// overlaps [from, to). Runs on the caller's handle so assignment can call it
// inside its own transaction.
func ConflictingDriverIDs(tx *gorm.DB, from, to time.Time) ([]int64, error) {
	var ids []int64
	err := tx.Model(&tripDatamodel.Trip{}).
		Where("status IN ?", activeStatuses()).
		Where("driver_id IS NOT NULL").
		Where("from_time < ? AND to_time > ?", to, from).
		Distinct().
		Pluck("driver_id", &ids).Error
	return ids, err
}

// ConflictingVehicleIDs is the vehicle counterpart of ConflictingDriverIDs.
func ConflictingVehicleIDs(tx *gorm.DB, from, to time.Time) ([]int64, error) {
	var ids []int64
	err := tx.Model(&tripDatamodel.Trip{}).
		Where("status IN ?", activeStatuses()).
		Where("vehicle_id IS NOT NULL").
		Where("from_time < ? AND to_time > ?", to, from).
		Distinct().
		Pluck("vehicle_id", &ids).Error
	return ids, err
}

func (r *TripRepository) Create(t *trip.Trip) error {
	dm := trip.ToDataModel(t)
	dm.CreatedAt = time.Now()
	dm.UpdatedAt = dm.CreatedAt
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*t = *trip.FromDataModel(dm)
	return nil
}

func (r *TripRepository) GetByID(id int64) (*trip.Trip, error) {
	var dm tripDatamodel.Trip
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trip.ErrTripNotFound
		}
		return nil, err
	}
	return trip.FromDataModel(&dm), nil
}

func (r *TripRepository) ListByRequester(requesterID int64, limit, offset int) ([]*trip.Trip, error) {
	var dms []*tripDatamodel.Trip
	err := r.db.Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	return trip.FromDataModelSlice(dms), err
}

func (r *TripRepository) ListAll(limit, offset int) ([]*trip.Trip, error) {
	var dms []*tripDatamodel.Trip
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	return trip.FromDataModelSlice(dms), err
}

func (r *TripRepository) ListByStatus(status trip.Status, limit, offset int) ([]*trip.Trip, error) {
	var dms []*tripDatamodel.Trip
	err := r.db.Where("status = ?", string(status)).
		Order("created_at ASC"). // FIFO for approvals
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	return trip.FromDataModelSlice(dms), err
}

// ApplyStatus performs the guarded status write: the WHERE clause on the
// current status makes the read-check-write atomic, so the loser of a race
// sees zero rows affected instead of silently overwriting.
func (r *TripRepository) ApplyStatus(id int64, change trip.StatusChange) (bool, error) {
	updates := map[string]interface{}{
		"status":     string(change.To),
		"updated_at": time.Now(),
	}
	if change.ApprovedBy != nil {
		updates["approved_by_id"] = *change.ApprovedBy
	}
	if change.TouchRejection {
		if change.RejectionReason != nil {
			updates["rejection_reason"] = *change.RejectionReason
		} else {
			updates["rejection_reason"] = gorm.Expr("NULL")
		}
	}

	res := r.db.Model(&tripDatamodel.Trip{}).
		Where("id = ? AND status = ?", id, string(change.From)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Assign books the driver and vehicle in one serializable transaction: the
// status re-check, the overlap queries and the assignment write all commit
// together or not at all.
func (r *TripRepository) Assign(id int64, driverID, vehicleID int64) (*trip.Trip, error) {
	var result *trip.Trip

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var row tripDatamodel.Trip
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return trip.ErrTripNotFound
			}
			return err
		}

		if row.Status != string(trip.StatusManagerApproved) {
			return internal.NewStateTransitionError("trip", row.Status, string(trip.StatusTransportAssigned))
		}

		var driver fleet.Driver
		if err := tx.Where("id = ?", driverID).First(&driver).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return trip.ErrDriverNotFound
			}
			return err
		}
		if !driver.Active {
			return trip.ErrDriverInactive
		}

		var vehicle fleet.Vehicle
		if err := tx.Where("id = ?", vehicleID).First(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return trip.ErrVehicleNotFound
			}
			return err
		}
		if !vehicle.Active {
			return trip.ErrVehicleInactive
		}

		busyDrivers, err := ConflictingDriverIDs(tx, row.FromTime, row.ToTime)
		if err != nil {
			return err
		}
		for _, busy := range busyDrivers {
			if busy == driverID {
				return trip.ErrDriverConflict
			}
		}

		busyVehicles, err := ConflictingVehicleIDs(tx, row.FromTime, row.ToTime)
		if err != nil {
			return err
		}
		for _, busy := range busyVehicles {
			if busy == vehicleID {
				return trip.ErrVehicleConflict
			}
		}

		res := tx.Model(&tripDatamodel.Trip{}).
			Where("id = ? AND status = ?", id, string(trip.StatusManagerApproved)).
			Updates(map[string]interface{}{
				"status":     string(trip.StatusTransportAssigned),
				"driver_id":  driverID,
				"vehicle_id": vehicleID,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.NewStateTransitionError("trip", row.Status, string(trip.StatusTransportAssigned))
		}

		var updated tripDatamodel.Trip
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return err
		}
		result = trip.FromDataModel(&updated)
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil {
		return nil, err
	}
	return result, nil
}
