package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleAssignment is one entry of the per-vehicle assignment timeline.
// Released rows are never deleted.
type VehicleAssignment struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID     uuid.UUID  `gorm:"column:vehicle_id;type:uuid;not null;index"`
	Region        string     `gorm:"column:region;not null"`
	Recipient     string     `gorm:"column:recipient;not null"`
	Structure     *string    `gorm:"column:structure"`
	District      *string    `gorm:"column:district"`
	AssignedAt    time.Time  `gorm:"column:assigned_at;not null"`
	ReleasedAt    *time.Time `gorm:"column:released_at"`
	ReleasedBy    *string    `gorm:"column:released_by"`
	ReleaseReason *string    `gorm:"column:release_reason"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
