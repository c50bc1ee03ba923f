package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/logger"
	"github.com/adelferjani/stockparc-backend/pkg/metrics"
)

const maintenanceAlertJobName = "maintenance_alerts"

// maintenanceSource is the slice of the maintenance log the job reads.
type maintenanceSource interface {
	DueSoon(ctx context.Context, now time.Time) ([]models.MaintenanceRecord, error)
}

// vehicleSource resolves the vehicles named by due records.
type vehicleSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

// MaintenanceAlertJobParams configure the due-maintenance sweep.
type MaintenanceAlertJobParams struct {
	Logger      *logger.Logger
	Maintenance maintenanceSource
	Vehicles    vehicleSource
	Metrics     *metrics.JobMetrics
}

// NewMaintenanceAlertJob builds the job that surfaces maintenance falling due
// within the alert window.
func NewMaintenanceAlertJob(params MaintenanceAlertJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Maintenance == nil {
		return nil, fmt.Errorf("maintenance service required")
	}
	if params.Vehicles == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	return &maintenanceAlertJob{
		logg:        params.Logger,
		maintenance: params.Maintenance,
		vehicles:    params.Vehicles,
		metrics:     params.Metrics,
		now:         time.Now,
	}, nil
}

type maintenanceAlertJob struct {
	logg        *logger.Logger
	maintenance maintenanceSource
	vehicles    vehicleSource
	metrics     *metrics.JobMetrics
	now         func() time.Time
}

func (j *maintenanceAlertJob) Name() string {
	return maintenanceAlertJobName
}

func (j *maintenanceAlertJob) Run(ctx context.Context) error {
	due, err := j.maintenance.DueSoon(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("query due maintenance: %w", err)
	}

	var errs []error
	alerted := 0
	for _, record := range due {
		if err := j.alert(ctx, record); err != nil {
			errs = append(errs, err)
			continue
		}
		alerted++
	}

	if j.metrics != nil && alerted > 0 {
		j.metrics.AddAlerts(maintenanceAlertJobName, alerted)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"due": len(due), "alerted": alerted})
	j.logg.Info(logCtx, "maintenance alert sweep complete")
	return multierr.Combine(errs...)
}

func (j *maintenanceAlertJob) alert(ctx context.Context, record models.MaintenanceRecord) error {
	vehicle, err := j.vehicles.FindByID(ctx, record.VehicleID)
	if err != nil {
		return fmt.Errorf("load vehicle %s: %w", record.VehicleID, err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"vehicle_id":  vehicle.ID.String(),
		"plate":       vehicle.PlateNumber,
		"designation": vehicle.Designation,
		"type":        record.Type,
		"next_date":   record.NextDate.Format("2006-01-02"),
	})
	j.logg.Warn(logCtx, "maintenance due soon")
	return nil
}
