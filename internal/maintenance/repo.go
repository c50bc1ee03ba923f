package maintenance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, record *models.MaintenanceRecord) error
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.MaintenanceRecord, error)
	// ListDueBetween returns records whose follow-up date falls inside the
	// inclusive [from, to] window.
	ListDueBetween(ctx context.Context, from, to time.Time) ([]models.MaintenanceRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a maintenance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *models.MaintenanceRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create maintenance record")
	}
	return nil
}

func (r *repository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.MaintenanceRecord, error) {
	var records []models.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("date DESC").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list maintenance records")
	}
	return records, nil
}

func (r *repository) ListDueBetween(ctx context.Context, from, to time.Time) ([]models.MaintenanceRecord, error) {
	var records []models.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Where("next_date IS NOT NULL AND next_date >= ? AND next_date <= ?", from, to).
		Order("next_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list due maintenance records")
	}
	return records, nil
}
