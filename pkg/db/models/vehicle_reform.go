package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleReform is written once when a vehicle is retired and is immutable
// thereafter.
type VehicleReform struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID   uuid.UUID `gorm:"column:vehicle_id;type:uuid;not null;uniqueIndex"`
	Reason      string    `gorm:"column:reason;not null"`
	Agent       string    `gorm:"column:agent;not null"`
	Destination string    `gorm:"column:destination;not null"`
	Notes       *string   `gorm:"column:notes"`
	ReformedAt  time.Time `gorm:"column:reformed_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
