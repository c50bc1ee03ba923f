package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adelferjani/stockparc-backend/pkg/enums"
)

// Vehicle is the fleet aggregate. Assignments is the append-only assignment
// history; the current assignment is the row with a null released_at.
type Vehicle struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type                string              `gorm:"column:type;not null"`
	Designation         string              `gorm:"column:designation;not null"`
	ChassisNumber       string              `gorm:"column:chassis_number;not null;uniqueIndex"`
	PlateNumber         string              `gorm:"column:plate_number;not null;uniqueIndex"`
	AcquisitionDate     time.Time           `gorm:"column:acquisition_date;not null"`
	Acquirer            *string             `gorm:"column:acquirer"`
	ReceptionCommission *string             `gorm:"column:reception_commission"`
	Observations        *string             `gorm:"column:observations"`
	Status              enums.VehicleStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Assignments         []VehicleAssignment `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	Reform              *VehicleReform      `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
