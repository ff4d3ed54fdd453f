package postgres

import (
	"time"

	notificationDatamodel "github.com/frahmantamala/transport-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/transport-management/internal/notification"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository implements the notification.Repository interface using GORM
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

// Create inserts the audit row; a replayed event ID is a no-op thanks to
// the unique index.
func (r *NotificationRepository) Create(n *notification.Notification) error {
	dm := notification.ToDataModel(n)
	if dm.CreatedAt.IsZero() {
		dm.CreatedAt = time.Now()
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(dm).Error
	if err != nil {
		return err
	}

	*n = *notification.FromDataModel(dm)
	return nil
}

func (r *NotificationRepository) ListRecent(limit, offset int) ([]*notification.Notification, error) {
	var dms []*notificationDatamodel.Notification
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	return notification.FromDataModelSlice(dms), err
}

func (r *NotificationRepository) ListByEntity(entityKind string, entityID int64) ([]*notification.Notification, error) {
	var dms []*notificationDatamodel.Notification
	err := r.db.Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
		Order("created_at ASC").
		Find(&dms).Error
	return notification.FromDataModelSlice(dms), err
}
