package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaintenanceRecord is an append-only maintenance log entry for a vehicle.
type MaintenanceRecord struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID    uuid.UUID       `gorm:"column:vehicle_id;type:uuid;not null;index"`
	Type         string          `gorm:"column:type;not null"`
	Date         time.Time       `gorm:"column:date;not null"`
	Mileage      *int            `gorm:"column:mileage"`
	Cost         decimal.Decimal `gorm:"column:cost;type:numeric(12,3);not null"`
	Agent        string          `gorm:"column:agent;not null"`
	NextDate     *time.Time      `gorm:"column:next_date"`
	NextMileage  *int            `gorm:"column:next_mileage"`
	Observations *string         `gorm:"column:observations"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
