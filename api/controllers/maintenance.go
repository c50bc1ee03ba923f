package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adelferjani/stockparc-backend/api/responses"
	"github.com/adelferjani/stockparc-backend/api/validators"
	"github.com/adelferjani/stockparc-backend/internal/maintenance"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
	"github.com/adelferjani/stockparc-backend/pkg/logger"
)

type maintenanceCreateRequest struct {
	VehicleID    string          `json:"vehicle_id" validate:"required"`
	Type         string          `json:"type" validate:"required"`
	Date         time.Time       `json:"date" validate:"required"`
	Mileage      *int            `json:"mileage,omitempty"`
	Cost         decimal.Decimal `json:"cost"`
	Agent        string          `json:"agent" validate:"required"`
	NextDate     *time.Time      `json:"next_date,omitempty"`
	NextMileage  *int            `json:"next_mileage,omitempty"`
	Observations *string         `json:"observations,omitempty"`
}

func (r maintenanceCreateRequest) toInput() (maintenance.RecordInput, error) {
	vehicleID, err := uuid.Parse(strings.TrimSpace(r.VehicleID))
	if err != nil {
		return maintenance.RecordInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle_id")
	}
	return maintenance.RecordInput{
		VehicleID:    vehicleID,
		Type:         strings.TrimSpace(r.Type),
		Date:         r.Date,
		Mileage:      r.Mileage,
		Cost:         r.Cost,
		Agent:        strings.TrimSpace(r.Agent),
		NextDate:     r.NextDate,
		NextMileage:  r.NextMileage,
		Observations: r.Observations,
	}, nil
}

// MaintenanceCreate appends an intervention to a vehicle's log.
func MaintenanceCreate(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload maintenanceCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, maintenanceResponseFromModel(record))
	}
}

// MaintenanceListByVehicle returns a vehicle's interventions, most recent first.
func MaintenanceListByVehicle(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := pathUUID(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByVehicle(r.Context(), vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]maintenanceResponse, 0, len(list))
		for i := range list {
			out = append(out, maintenanceResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// MaintenanceDueSoon returns interventions whose follow-up falls inside the alert window.
func MaintenanceDueSoon(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.DueSoon(r.Context(), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]maintenanceResponse, 0, len(list))
		for i := range list {
			out = append(out, maintenanceResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type maintenanceResponse struct {
	ID           uuid.UUID       `json:"id"`
	VehicleID    uuid.UUID       `json:"vehicle_id"`
	Type         string          `json:"type"`
	Date         time.Time       `json:"date"`
	Mileage      *int            `json:"mileage,omitempty"`
	Cost         decimal.Decimal `json:"cost"`
	Agent        string          `json:"agent"`
	NextDate     *time.Time      `json:"next_date,omitempty"`
	NextMileage  *int            `json:"next_mileage,omitempty"`
	Observations *string         `json:"observations,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func maintenanceResponseFromModel(m *models.MaintenanceRecord) maintenanceResponse {
	return maintenanceResponse{
		ID:           m.ID,
		VehicleID:    m.VehicleID,
		Type:         m.Type,
		Date:         m.Date,
		Mileage:      m.Mileage,
		Cost:         m.Cost,
		Agent:        m.Agent,
		NextDate:     m.NextDate,
		NextMileage:  m.NextMileage,
		Observations: m.Observations,
		CreatedAt:    m.CreatedAt,
	}
}
