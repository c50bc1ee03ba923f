package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

// dueWindowDays is how far ahead DueSoon looks, inclusive.
const dueWindowDays = 7

// VehicleFinder is the slice of the fleet the maintenance log needs: records
// attach only to vehicles that exist.
type VehicleFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

// Service keeps the append-only maintenance log. Entries never couple to the
// vehicle lifecycle; a reformed vehicle keeps its history.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.MaintenanceRecord, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.MaintenanceRecord, error)
	DueSoon(ctx context.Context, now time.Time) ([]models.MaintenanceRecord, error)
}

// RecordInput captures one maintenance intervention.
type RecordInput struct {
	VehicleID    uuid.UUID       `json:"vehicle_id" validate:"required"`
	Type         string          `json:"type" validate:"required"`
	Date         time.Time       `json:"date" validate:"required"`
	Mileage      *int            `json:"mileage,omitempty"`
	Cost         decimal.Decimal `json:"cost"`
	Agent        string          `json:"agent" validate:"required"`
	NextDate     *time.Time      `json:"next_date,omitempty"`
	NextMileage  *int            `json:"next_mileage,omitempty"`
	Observations *string         `json:"observations,omitempty"`
}

type service struct {
	repo     Repository
	vehicles VehicleFinder
}

// NewService wires the maintenance log.
func NewService(repo Repository, vehicles VehicleFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("maintenance repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle finder required")
	}
	return &service{repo: repo, vehicles: vehicles}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.MaintenanceRecord, error) {
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	if input.Type == "" || input.Agent == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type and agent are required")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if input.Cost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
	}
	if input.Mileage != nil && *input.Mileage < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mileage cannot be negative")
	}

	if _, err := s.vehicles.FindByID(ctx, input.VehicleID); err != nil {
		return nil, err
	}

	record := &models.MaintenanceRecord{
		ID:           uuid.New(),
		VehicleID:    input.VehicleID,
		Type:         input.Type,
		Date:         input.Date,
		Mileage:      input.Mileage,
		Cost:         input.Cost,
		Agent:        input.Agent,
		NextDate:     input.NextDate,
		NextMileage:  input.NextMileage,
		Observations: input.Observations,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.MaintenanceRecord, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	if _, err := s.vehicles.FindByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	return s.repo.ListByVehicle(ctx, vehicleID)
}

// DueSoon returns entries whose follow-up falls within the next seven days,
// endpoints included.
func (s *service) DueSoon(ctx context.Context, now time.Time) ([]models.MaintenanceRecord, error) {
	from := now.Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, dueWindowDays).Add(24*time.Hour - time.Nanosecond)
	return s.repo.ListDueBetween(ctx, from, to)
}
