package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventModel struct {
	EventID          uuid.UUID  `gorm:"type:uuid;primaryKey;column:event_id" json:"event_id"`
	EventTitle       string     `gorm:"type:varchar(200);not null;column:event_title" json:"event_title"`
	EventSlug        string     `gorm:"type:varchar(220);not null;uniqueIndex:uq_events_slug;column:event_slug" json:"event_slug"`
	EventDescription *string    `gorm:"type:text;column:event_description" json:"event_description,omitempty"`
	EventLocation    *string    `gorm:"type:varchar(200);column:event_location" json:"event_location,omitempty"`
	EventStartsAt    time.Time  `gorm:"not null;index:idx_events_starts_at;column:event_starts_at" json:"event_starts_at"`
	EventEndsAt      *time.Time `gorm:"column:event_ends_at" json:"event_ends_at,omitempty"`

	EventCreatedAt time.Time      `gorm:"autoCreateTime;column:event_created_at" json:"event_created_at"`
	EventUpdatedAt time.Time      `gorm:"autoUpdateTime;column:event_updated_at" json:"event_updated_at"`
	EventDeletedAt gorm.DeletedAt `gorm:"index;column:event_deleted_at" json:"event_deleted_at,omitempty"`
}

func (EventModel) TableName() string { return "events" }

func (e *EventModel) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
