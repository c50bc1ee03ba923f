package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the authoritative per-product stock record. Quantity is mutated
// only through the inventory ledger, never by direct field writes.
type Product struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference         string    `gorm:"column:reference;not null;uniqueIndex"`
	Name              string    `gorm:"column:name;not null"`
	Category          *string   `gorm:"column:category"`
	Quantity          int       `gorm:"column:quantity;not null;default:0"`
	CriticalThreshold int       `gorm:"column:critical_threshold;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
