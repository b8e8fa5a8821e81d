package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated     EventType = "booking_created"
	EventTypeBookingCancelled   EventType = "booking_cancelled"
	EventTypeBookingRescheduled EventType = "booking_rescheduled"
)

// events — события аудита жизненного цикла записей.
// Ядро их только пишет; чтение — операторская выдача.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	BookingID string `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	// Произвольные детали события (старое/новое время при переносе и т.п.).
	Details datatypes.JSON `gorm:"type:json"`
}
