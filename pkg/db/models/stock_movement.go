package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adelferjani/stockparc-backend/pkg/enums"
)

// StockMovement is the sum type over the two movement variants. Receipt rows
// fill the supplier fields and carry Items; stock-out rows fill the product
// fields. PendingOperationID is denormalized so callers can see "awaiting
// approval" without a join.
type StockMovement struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind               enums.MovementKind   `gorm:"column:kind;type:text;not null"`
	Status             enums.MovementStatus `gorm:"column:status;type:text;not null;default:'none'"`
	OccurredAt         time.Time            `gorm:"column:occurred_at;not null"`
	Notes              *string              `gorm:"column:notes"`
	CreatedBy          uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	PendingOperationID *uuid.UUID           `gorm:"column:pending_operation_id;type:uuid"`

	// Receipt variant.
	Supplier       *string       `gorm:"column:supplier"`
	Agent          *string       `gorm:"column:agent"`
	Acquirer       *string       `gorm:"column:acquirer"`
	PersonsPresent *string       `gorm:"column:persons_present"`
	Items          []ReceiptItem `gorm:"foreignKey:MovementID;constraint:OnDelete:CASCADE"`

	// Stock-out variant.
	ProductID   *uuid.UUID          `gorm:"column:product_id;type:uuid"`
	Quantity    int                 `gorm:"column:quantity;not null;default:0"`
	Beneficiary *string             `gorm:"column:beneficiary"`
	ExitKind    *enums.StockOutKind `gorm:"column:exit_kind;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
