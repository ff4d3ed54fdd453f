package postgres

import (
	"errors"
	"strings"
	"time"

	fleetDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/fleet"
	maintenanceDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/maintenance"
	"github.com/frahmantamala/transport-management/internal/fleet"
	"github.com/frahmantamala/transport-management/internal/maintenance"
	"gorm.io/gorm"
)

// MaintenanceRepository implements the maintenance.Repository interface using GORM
type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) maintenance.Repository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) Create(req *maintenance.Request) error {
	dm := maintenance.ToDataModel(req)
	dm.CreatedAt = time.Now()
	dm.UpdatedAt = dm.CreatedAt
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*req = *maintenance.FromDataModel(dm)
	return nil
}

func (r *MaintenanceRepository) GetByID(id int64) (*maintenance.Request, error) {
	var dm maintenanceDatamodel.Request
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, maintenance.ErrRequestNotFound
		}
		return nil, err
	}
	return maintenance.FromDataModel(&dm), nil
}

func (r *MaintenanceRepository) ListByRequester(requesterID int64, limit, offset int) ([]*maintenance.Request, error) {
	var dms []*maintenanceDatamodel.Request
	err := r.db.Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	return maintenance.FromDataModelSlice(dms), err
}

func (r *MaintenanceRepository) ListAll(limit, offset int) ([]*maintenance.Request, error) {
	var dms []*maintenanceDatamodel.Request
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	return maintenance.FromDataModelSlice(dms), err
}

func (r *MaintenanceRepository) ListByStatus(status maintenance.Status, limit, offset int) ([]*maintenance.Request, error) {
	var dms []*maintenanceDatamodel.Request
	err := r.db.Where("status = ?", string(status)).
		Order("created_at ASC"). // FIFO for approvals
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	return maintenance.FromDataModelSlice(dms), err
}

// ApplyStatus performs the guarded status write; the WHERE clause on the
// current status makes the read-check-write atomic.
func (r *MaintenanceRepository) ApplyStatus(id int64, change maintenance.StatusChange) (bool, error) {
	updates := map[string]interface{}{
		"status":     string(change.To),
		"updated_at": time.Now(),
	}
	if change.ApprovedBy != nil {
		updates["approved_by_id"] = *change.ApprovedBy
	}
	if change.RejectionReason != nil {
		updates["rejection_reason"] = *change.RejectionReason
	}
	if change.Cost != nil {
		updates["cost"] = *change.Cost
	}
	if change.CompletedAt != nil {
		updates["completed_at"] = *change.CompletedAt
	}

	res := r.db.Model(&maintenanceDatamodel.Request{}).
		Where("id = ? AND status = ?", id, string(change.From)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AppendIssue appends issue text inside a transaction so concurrent reports
// do not clobber each other.
func (r *MaintenanceRepository) AppendIssue(id int64, issue string) (bool, error) {
	found := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var dm maintenanceDatamodel.Request
		if err := tx.Where("id = ?", id).First(&dm).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true

		text := strings.TrimSpace(issue)
		if dm.IssueDescription != "" {
			text = dm.IssueDescription + "\n" + text
		}

		return tx.Model(&maintenanceDatamodel.Request{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"issue_description": text,
				"updated_at":        time.Now(),
			}).Error
	})
	return found, err
}

// EntitledVehicleGateway resolves entitled vehicles from the fleet tables.
type EntitledVehicleGateway struct {
	db *gorm.DB
}

func NewEntitledVehicleGateway(db *gorm.DB) maintenance.EntitledVehicleGateway {
	return &EntitledVehicleGateway{db: db}
}

func (g *EntitledVehicleGateway) OwnerOf(entitledVehicleID int64) (int64, error) {
	var dm fleetDatamodel.EntitledVehicle
	err := g.db.Where("id = ?", entitledVehicleID).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fleet.ErrEntitledVehicleNotFound
		}
		return 0, err
	}
	if !dm.Active {
		return 0, fleet.ErrEntitledVehicleNotFound
	}
	return dm.UserID, nil
}

// VehicleGateway resolves fleet vehicles.
type VehicleGateway struct {
	db *gorm.DB
}

func NewVehicleGateway(db *gorm.DB) maintenance.VehicleGateway {
	return &VehicleGateway{db: db}
}

func (g *VehicleGateway) Exists(vehicleID int64) error {
	var dm fleetDatamodel.Vehicle
	err := g.db.Where("id = ?", vehicleID).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fleet.ErrVehicleNotFound
		}
		return err
	}
	if !dm.Active {
		return fleet.ErrVehicleInactive
	}
	return nil
}
