package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adelferjani/stockparc-backend/api/responses"
	"github.com/adelferjani/stockparc-backend/api/validators"
	"github.com/adelferjani/stockparc-backend/internal/vehicles"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	"github.com/adelferjani/stockparc-backend/pkg/logger"
)

type vehicleCreateRequest struct {
	Type                string    `json:"type" validate:"required"`
	Designation         string    `json:"designation" validate:"required"`
	ChassisNumber       string    `json:"chassis_number" validate:"required"`
	PlateNumber         string    `json:"plate_number" validate:"required"`
	AcquisitionDate     time.Time `json:"acquisition_date" validate:"required"`
	Acquirer            *string   `json:"acquirer,omitempty"`
	ReceptionCommission *string   `json:"reception_commission,omitempty"`
	Observations        *string   `json:"observations,omitempty"`
}

func (r vehicleCreateRequest) toInput() vehicles.ReceiveInput {
	return vehicles.ReceiveInput{
		Type:                strings.TrimSpace(r.Type),
		Designation:         strings.TrimSpace(r.Designation),
		ChassisNumber:       strings.TrimSpace(r.ChassisNumber),
		PlateNumber:         strings.TrimSpace(r.PlateNumber),
		AcquisitionDate:     r.AcquisitionDate,
		Acquirer:            r.Acquirer,
		ReceptionCommission: r.ReceptionCommission,
		Observations:        r.Observations,
	}
}

type vehicleAssignRequest struct {
	Region    string  `json:"region" validate:"required"`
	Recipient string  `json:"recipient" validate:"required"`
	Structure *string `json:"structure,omitempty"`
	District  *string `json:"district,omitempty"`
}

type vehicleUnassignRequest struct {
	Agent  string `json:"agent" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

type vehicleReformRequest struct {
	Reason      string  `json:"reason" validate:"required"`
	Agent       string  `json:"agent" validate:"required"`
	Destination string  `json:"destination" validate:"required"`
	Notes       *string `json:"notes,omitempty"`
}

// VehicleCreate registers a newly received vehicle in pending state.
func VehicleCreate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload vehicleCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Receive(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vehicleResponseFromModel(vehicle))
	}
}

// VehicleGet returns one vehicle with its assignment history and reform record.
func VehicleGet(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicleResponseFromModel(vehicle))
	}
}

// VehicleList returns vehicles, optionally filtered by status.
func VehicleList(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := vehicles.ListFilter{
			Status: enums.VehicleStatus(r.URL.Query().Get("status")),
			Limit:  limit,
		}

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]vehicleResponse, 0, len(list))
		for i := range list {
			out = append(out, vehicleResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// VehicleAssign puts a pending vehicle into service.
func VehicleAssign(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehicleAssignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Assign(r.Context(), id, vehicles.AssignInput{
			Region:    strings.TrimSpace(payload.Region),
			Recipient: strings.TrimSpace(payload.Recipient),
			Structure: payload.Structure,
			District:  payload.District,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicleResponseFromModel(vehicle))
	}
}

// VehicleUnassign returns an assigned vehicle to the pending pool.
func VehicleUnassign(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehicleUnassignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Unassign(r.Context(), id, vehicles.UnassignInput{
			Agent:  strings.TrimSpace(payload.Agent),
			Reason: strings.TrimSpace(payload.Reason),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicleResponseFromModel(vehicle))
	}
}

// VehicleReform retires a vehicle permanently.
func VehicleReform(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehicleReformRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Reform(r.Context(), id, vehicles.ReformInput{
			Reason:      strings.TrimSpace(payload.Reason),
			Agent:       strings.TrimSpace(payload.Agent),
			Destination: strings.TrimSpace(payload.Destination),
			Notes:       payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicleResponseFromModel(vehicle))
	}
}

// VehicleAssignments returns the full assignment history, oldest first.
func VehicleAssignments(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAssignments(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]vehicleAssignmentResponse, 0, len(list))
		for i := range list {
			out = append(out, vehicleAssignmentResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type vehicleAssignmentResponse struct {
	ID            uuid.UUID  `json:"id"`
	Region        string     `json:"region"`
	Recipient     string     `json:"recipient"`
	Structure     *string    `json:"structure,omitempty"`
	District      *string    `json:"district,omitempty"`
	AssignedAt    time.Time  `json:"assigned_at"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	ReleasedBy    *string    `json:"released_by,omitempty"`
	ReleaseReason *string    `json:"release_reason,omitempty"`
}

type vehicleReformResponse struct {
	Reason      string    `json:"reason"`
	Agent       string    `json:"agent"`
	Destination string    `json:"destination"`
	Notes       *string   `json:"notes,omitempty"`
	ReformedAt  time.Time `json:"reformed_at"`
}

type vehicleResponse struct {
	ID                  uuid.UUID                   `json:"id"`
	Type                string                      `json:"type"`
	Designation         string                      `json:"designation"`
	ChassisNumber       string                      `json:"chassis_number"`
	PlateNumber         string                      `json:"plate_number"`
	AcquisitionDate     time.Time                   `json:"acquisition_date"`
	Acquirer            *string                     `json:"acquirer,omitempty"`
	ReceptionCommission *string                     `json:"reception_commission,omitempty"`
	Observations        *string                     `json:"observations,omitempty"`
	Status              enums.VehicleStatus         `json:"status"`
	Assignments         []vehicleAssignmentResponse `json:"assignments,omitempty"`
	Reform              *vehicleReformResponse      `json:"reform,omitempty"`
	CreatedAt           time.Time                   `json:"created_at"`
}

func vehicleAssignmentResponseFromModel(m *models.VehicleAssignment) vehicleAssignmentResponse {
	return vehicleAssignmentResponse{
		ID:            m.ID,
		Region:        m.Region,
		Recipient:     m.Recipient,
		Structure:     m.Structure,
		District:      m.District,
		AssignedAt:    m.AssignedAt,
		ReleasedAt:    m.ReleasedAt,
		ReleasedBy:    m.ReleasedBy,
		ReleaseReason: m.ReleaseReason,
	}
}

func vehicleResponseFromModel(m *models.Vehicle) vehicleResponse {
	out := vehicleResponse{
		ID:                  m.ID,
		Type:                m.Type,
		Designation:         m.Designation,
		ChassisNumber:       m.ChassisNumber,
		PlateNumber:         m.PlateNumber,
		AcquisitionDate:     m.AcquisitionDate,
		Acquirer:            m.Acquirer,
		ReceptionCommission: m.ReceptionCommission,
		Observations:        m.Observations,
		Status:              m.Status,
		CreatedAt:           m.CreatedAt,
	}
	for i := range m.Assignments {
		out.Assignments = append(out.Assignments, vehicleAssignmentResponseFromModel(&m.Assignments[i]))
	}
	if m.Reform != nil {
		out.Reform = &vehicleReformResponse{
			Reason:      m.Reform.Reason,
			Agent:       m.Reform.Agent,
			Destination: m.Reform.Destination,
			Notes:       m.Reform.Notes,
			ReformedAt:  m.Reform.ReformedAt,
		}
	}
	return out
}
