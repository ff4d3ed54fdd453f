package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/transport-management/internal"
	fleetDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/fleet"
	tripDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/trip"
	userDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/user"
	"github.com/frahmantamala/transport-management/internal/fleet"
	"gorm.io/gorm"
)

// FleetRepository implements the fleet.Repository interface using GORM
type FleetRepository struct {
	db *gorm.DB
}

func NewFleetRepository(db *gorm.DB) fleet.Repository {
	return &FleetRepository{db: db}
}

func (r *FleetRepository) CreateDriver(d *fleet.Driver) error {
	dm := fleet.DriverToDataModel(d)
	dm.CreatedAt = time.Now()
	dm.UpdatedAt = dm.CreatedAt
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*d = *fleet.DriverFromDataModel(dm)
	return nil
}

func (r *FleetRepository) UpdateDriver(id int64, dto fleet.UpdateDriverDTO) (*fleet.Driver, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Phone != nil {
		updates["phone"] = *dto.Phone
	}
	if dto.LicenseNo != nil {
		updates["license_no"] = *dto.LicenseNo
	}

	res := r.db.Model(&fleetDatamodel.Driver{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fleet.ErrDriverNotFound
	}
	return r.GetDriver(id)
}

func (r *FleetRepository) GetDriver(id int64) (*fleet.Driver, error) {
	var dm fleetDatamodel.Driver
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fleet.ErrDriverNotFound
		}
		return nil, err
	}
	return fleet.DriverFromDataModel(&dm), nil
}

func (r *FleetRepository) ListDrivers(includeInactive bool) ([]*fleet.Driver, error) {
	q := r.db.Order("name ASC")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var dms []*fleetDatamodel.Driver
	err := q.Find(&dms).Error
	return fleet.DriversFromDataModel(dms), err
}

func (r *FleetRepository) SetDriverActive(id int64, active bool) (*fleet.Driver, error) {
	res := r.db.Model(&fleetDatamodel.Driver{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"active": active, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fleet.ErrDriverNotFound
	}
	return r.GetDriver(id)
}

// DeleteDriver removes the row; the reference count and the delete run in
// one transaction so a concurrent assignment cannot slip between them.
func (r *FleetRepository) DeleteDriver(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&tripDatamodel.Trip{}).Where("driver_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fleet.ErrDriverReferenced
		}

		res := tx.Delete(&fleetDatamodel.Driver{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fleet.ErrDriverNotFound
		}
		return nil
	})
}

func (r *FleetRepository) CreateVehicle(v *fleet.Vehicle) error {
	dm := fleet.VehicleToDataModel(v)
	dm.CreatedAt = time.Now()
	dm.UpdatedAt = dm.CreatedAt
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*v = *fleet.VehicleFromDataModel(dm)
	return nil
}

func (r *FleetRepository) UpdateVehicle(id int64, dto fleet.UpdateVehicleDTO) (*fleet.Vehicle, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if dto.Number != nil {
		updates["number"] = *dto.Number
	}
	if dto.Type != nil {
		updates["type"] = *dto.Type
	}
	if dto.Capacity != nil {
		updates["capacity"] = *dto.Capacity
	}

	res := r.db.Model(&fleetDatamodel.Vehicle{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fleet.ErrVehicleNotFound
	}
	return r.GetVehicle(id)
}

func (r *FleetRepository) GetVehicle(id int64) (*fleet.Vehicle, error) {
	var dm fleetDatamodel.Vehicle
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fleet.ErrVehicleNotFound
		}
		return nil, err
	}
	return fleet.VehicleFromDataModel(&dm), nil
}

func (r *FleetRepository) ListVehicles(includeInactive bool) ([]*fleet.Vehicle, error) {
	q := r.db.Order("number ASC")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var dms []*fleetDatamodel.Vehicle
	err := q.Find(&dms).Error
	return fleet.VehiclesFromDataModel(dms), err
}

func (r *FleetRepository) SetVehicleActive(id int64, active bool) (*fleet.Vehicle, error) {
	res := r.db.Model(&fleetDatamodel.Vehicle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"active": active, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fleet.ErrVehicleNotFound
	}
	return r.GetVehicle(id)
}

func (r *FleetRepository) DeleteVehicle(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&tripDatamodel.Trip{}).Where("vehicle_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fleet.ErrVehicleReferenced
		}

		res := tx.Delete(&fleetDatamodel.Vehicle{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fleet.ErrVehicleNotFound
		}
		return nil
	})
}

func (r *FleetRepository) CreateEntitledVehicle(ev *fleet.EntitledVehicle) error {
	dm := fleet.EntitledToDataModel(ev)
	dm.CreatedAt = time.Now()
	dm.UpdatedAt = dm.CreatedAt
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*ev = *fleet.EntitledFromDataModel(dm)
	return nil
}

func (r *FleetRepository) ListEntitledVehiclesByUser(userID int64) ([]*fleet.EntitledVehicle, error) {
	var dms []*fleetDatamodel.EntitledVehicle
	err := r.db.Where("user_id = ? AND active = ?", userID, true).
		Order("created_at ASC").
		Find(&dms).Error
	return fleet.EntitledFromDataModelSlice(dms), err
}

func (r *FleetRepository) SetEntitledVehicleActive(id int64, active bool) (*fleet.EntitledVehicle, error) {
	res := r.db.Model(&fleetDatamodel.EntitledVehicle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"active": active, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fleet.ErrEntitledVehicleNotFound
	}

	var dm fleetDatamodel.EntitledVehicle
	if err := r.db.Where("id = ?", id).First(&dm).Error; err != nil {
		return nil, err
	}
	return fleet.EntitledFromDataModel(&dm), nil
}

// UserGateway checks entitlement targets against the users table.
type UserGateway struct {
	db *gorm.DB
}

func NewUserGateway(db *gorm.DB) fleet.UserGateway {
	return &UserGateway{db: db}
}

func (g *UserGateway) Exists(userID int64) error {
	var dm userDatamodel.User
	err := g.db.Select("id", "is_active").Where("id = ?", userID).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return err
	}
	if !dm.IsActive {
		return internal.NewConflictError("user is inactive", internal.ErrCodeUserInactive)
	}
	return nil
}
