package postgres

import (
	"errors"
	"time"

	tadaDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/tada"
	tripDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/trip"
	"github.com/frahmantamala/transport-management/internal/tada"
	"github.com/frahmantamala/transport-management/internal/trip"
	"gorm.io/gorm"
)

// ClaimRepository implements the tada.Repository interface using GORM
type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) tada.Repository {
	return &ClaimRepository{db: db}
}

// CreateBatch inserts every claim in one transaction so a failed entry rolls
// the whole batch back.
func (r *ClaimRepository) CreateBatch(claims []*tada.Claim) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, c := range claims {
			dm := tada.ToDataModel(c)
			dm.CreatedAt = now
			dm.UpdatedAt = now
			if err := tx.Create(dm).Error; err != nil {
				return err
			}
			*c = *tada.FromDataModel(dm)
		}
		return nil
	})
}

func (r *ClaimRepository) GetByID(id int64) (*tada.Claim, error) {
	var dm tadaDatamodel.Claim
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tada.ErrClaimNotFound
		}
		return nil, err
	}
	return tada.FromDataModel(&dm), nil
}

func (r *ClaimRepository) ListByTrip(tripID int64) ([]*tada.Claim, error) {
	var dms []*tadaDatamodel.Claim
	err := r.db.Where("trip_id = ?", tripID).
		Order("created_at ASC").
		Find(&dms).Error
	return tada.FromDataModelSlice(dms), err
}

func (r *ClaimRepository) ListByStatus(status tada.Status, limit, offset int) ([]*tada.Claim, error) {
	var dms []*tadaDatamodel.Claim
	err := r.db.Where("status = ?", string(status)).
		Order("created_at ASC"). // FIFO for approvals
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	return tada.FromDataModelSlice(dms), err
}

// ApplyDecision writes the decision only while the claim is still pending.
func (r *ClaimRepository) ApplyDecision(id int64, change tada.DecisionChange) (bool, error) {
	status := tada.StatusApproved
	if !change.Approve {
		status = tada.StatusRejected
	}

	updates := map[string]interface{}{
		"status":         string(status),
		"approved_by_id": change.ApprovedBy,
		"processed_at":   change.ProcessedAt,
		"updated_at":     time.Now(),
	}
	if !change.Approve && change.Reason != nil {
		updates["rejection_reason"] = *change.Reason
	}

	res := r.db.Model(&tadaDatamodel.Claim{}).
		Where("id = ? AND status = ?", id, string(tada.StatusPending)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TripGateway resolves claim ownership from the trips table.
type TripGateway struct {
	db *gorm.DB
}

func NewTripGateway(db *gorm.DB) tada.TripGateway {
	return &TripGateway{db: db}
}

func (g *TripGateway) RequesterOf(tripID int64) (int64, error) {
	var dm tripDatamodel.Trip
	err := g.db.Select("id", "requester_id").Where("id = ?", tripID).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, trip.ErrTripNotFound
		}
		return 0, err
	}
	return dm.RequesterID, nil
}
