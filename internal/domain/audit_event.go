package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEvent records destructive operations on financial records, written in
// the same transaction as the deletion itself.
type AuditEvent struct {
	ID         uuid.UUID      `gorm:"column:audit_event_id;type:uuid;primaryKey" json:"audit_event_id"`
	EntityType string         `gorm:"column:entity_type;type:varchar(32);not null" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"column:entity_id;type:uuid;not null;index" json:"entity_id"`
	Action     string         `gorm:"column:action;type:varchar(32);not null" json:"action"`
	Details    datatypes.JSON `gorm:"column:details;type:json" json:"details"`
	CreatedAt  time.Time      `json:"created_on"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

func (e *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
