package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adelferjani/stockparc-backend/pkg/enums"
)

// StockLedgerEntry is the append-only audit of every quantity change. Delta is
// signed; the sum of deltas for a product reconciles to its on-hand quantity.
type StockLedgerEntry struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	Delta     int                `gorm:"column:delta;not null"`
	Reason    enums.LedgerReason `gorm:"column:reason;type:text;not null"`
	ActorID   uuid.UUID          `gorm:"column:actor_id;type:uuid;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}
