package notification

import "time"

type Notification struct {
	ID         int64     `gorm:"primaryKey"`
	EventID    string    `gorm:"column:event_id;uniqueIndex;not null"`
	EventType  string    `gorm:"column:event_type;not null;index"`
	EntityKind string    `gorm:"column:entity_kind;not null"`
	EntityID   int64     `gorm:"column:entity_id;not null;index"`
	ActorID    int64     `gorm:"column:actor_id;not null"`
	Message    string    `gorm:"column:message"`
	Payload    string    `gorm:"column:payload"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
