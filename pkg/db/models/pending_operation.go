package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/adelferjani/stockparc-backend/pkg/enums"
)

// PendingOperation holds a shaped-but-unapplied mutation awaiting a terminal
// approve/reject decision. Status never leaves approved or rejected.
type PendingOperation struct {
	ID          uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind        enums.PendingOperationKind   `gorm:"column:kind;type:text;not null"`
	Payload     json.RawMessage              `gorm:"column:payload;type:jsonb;serializer:json"`
	SubmittedBy uuid.UUID                    `gorm:"column:submitted_by;type:uuid;not null"`
	Status      enums.PendingOperationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ResolvedBy  *uuid.UUID                   `gorm:"column:resolved_by;type:uuid"`
	ResolvedAt  *time.Time                   `gorm:"column:resolved_at"`
	CreatedAt   time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
