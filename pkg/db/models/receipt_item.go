package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptItem is a line of a receipt movement. ProductID is filled when the
// line is applied to the ledger (directly or on approval).
type ReceiptItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MovementID uuid.UUID       `gorm:"column:movement_id;type:uuid;not null"`
	Name       string          `gorm:"column:name;not null"`
	Reference  *string         `gorm:"column:reference"`
	Category   *string         `gorm:"column:category"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,3);not null"`
	ProductID  *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
