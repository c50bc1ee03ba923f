package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adelferjani/stockparc-backend/internal/vehicles"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

type stubVehicleService struct {
	vehicle     *models.Vehicle
	list        []models.Vehicle
	assignments []models.VehicleAssignment
	err         error

	gotID    uuid.UUID
	gotInput any
}

func (s *stubVehicleService) Receive(_ context.Context, input vehicles.ReceiveInput) (*models.Vehicle, error) {
	s.gotInput = input
	return s.vehicle, s.err
}

func (s *stubVehicleService) Assign(_ context.Context, id uuid.UUID, input vehicles.AssignInput) (*models.Vehicle, error) {
	s.gotID = id
	s.gotInput = input
	return s.vehicle, s.err
}

func (s *stubVehicleService) Unassign(_ context.Context, id uuid.UUID, input vehicles.UnassignInput) (*models.Vehicle, error) {
	s.gotID = id
	s.gotInput = input
	return s.vehicle, s.err
}

func (s *stubVehicleService) Reform(_ context.Context, id uuid.UUID, input vehicles.ReformInput) (*models.Vehicle, error) {
	s.gotID = id
	s.gotInput = input
	return s.vehicle, s.err
}

func (s *stubVehicleService) Get(_ context.Context, id uuid.UUID) (*models.Vehicle, error) {
	s.gotID = id
	return s.vehicle, s.err
}

func (s *stubVehicleService) List(_ context.Context, filter vehicles.ListFilter) ([]models.Vehicle, error) {
	s.gotInput = filter
	return s.list, s.err
}

func (s *stubVehicleService) ListAssignments(_ context.Context, id uuid.UUID) ([]models.VehicleAssignment, error) {
	s.gotID = id
	return s.assignments, s.err
}

func sampleVehicle(status enums.VehicleStatus) *models.Vehicle {
	return &models.Vehicle{
		ID:              uuid.New(),
		Type:            "pickup",
		Designation:     "Toyota Hilux",
		ChassisNumber:   "CH-0001",
		PlateNumber:     "00123-116-16",
		AcquisitionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:          status,
	}
}

func TestVehicleCreateSuccess(t *testing.T) {
	svc := &stubVehicleService{vehicle: sampleVehicle(enums.VehicleStatusPending)}
	handler := VehicleCreate(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"type":             "pickup",
		"designation":      "Toyota Hilux",
		"chassis_number":   "CH-0001",
		"plate_number":     "00123-116-16",
		"acquisition_date": "2024-03-01T00:00:00Z",
	})
	req := authedRequest(http.MethodPost, "/api/v1/vehicles", body, uuid.New(), enums.ActorRoleManager)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	input, ok := svc.gotInput.(vehicles.ReceiveInput)
	if !ok {
		t.Fatalf("service received %T", svc.gotInput)
	}
	if input.ChassisNumber != "CH-0001" || input.PlateNumber != "00123-116-16" {
		t.Fatalf("unexpected input: %+v", input)
	}

	var envelope struct {
		Data vehicleResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.VehicleStatusPending {
		t.Fatalf("expected pending status got %s", envelope.Data.Status)
	}
}

func TestVehicleCreateMissingFields(t *testing.T) {
	svc := &stubVehicleService{}
	handler := VehicleCreate(svc, nil)

	body, _ := json.Marshal(map[string]any{"type": "pickup"})
	req := authedRequest(http.MethodPost, "/api/v1/vehicles", body, uuid.New(), enums.ActorRoleManager)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.gotInput != nil {
		t.Fatal("service should not be called on invalid payload")
	}
}

func TestVehicleAssignForwardsID(t *testing.T) {
	vehicleID := uuid.New()
	svc := &stubVehicleService{vehicle: sampleVehicle(enums.VehicleStatusAssigned)}
	handler := VehicleAssign(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"region":    "Alger",
		"recipient": "Brigade 12",
	})
	req := authedRequest(http.MethodPost, "/api/v1/vehicles/"+vehicleID.String()+"/assign", body, uuid.New(), enums.ActorRoleManager)
	req = withPathParam(req, "vehicleID", vehicleID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotID != vehicleID {
		t.Fatalf("expected vehicle id %s got %s", vehicleID, svc.gotID)
	}
	input, ok := svc.gotInput.(vehicles.AssignInput)
	if !ok || input.Region != "Alger" || input.Recipient != "Brigade 12" {
		t.Fatalf("unexpected input: %+v", svc.gotInput)
	}
}

func TestVehicleReformConflictSurfaces422(t *testing.T) {
	vehicleID := uuid.New()
	svc := &stubVehicleService{err: pkgerrors.New(pkgerrors.CodeInvalidTransition, "vehicle already reformed")}
	handler := VehicleReform(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"reason":      "worn out",
		"agent":       "B. Khellaf",
		"destination": "scrap yard",
	})
	req := authedRequest(http.MethodPost, "/api/v1/vehicles/"+vehicleID.String()+"/reform", body, uuid.New(), enums.ActorRoleAdmin)
	req = withPathParam(req, "vehicleID", vehicleID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestVehicleListForwardsStatusFilter(t *testing.T) {
	svc := &stubVehicleService{list: []models.Vehicle{*sampleVehicle(enums.VehicleStatusAssigned)}}
	handler := VehicleList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles?status=assigned&limit=5", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	filter, ok := svc.gotInput.(vehicles.ListFilter)
	if !ok || filter.Status != enums.VehicleStatusAssigned || filter.Limit != 5 {
		t.Fatalf("unexpected filter: %+v", svc.gotInput)
	}
}

func TestVehicleAssignmentsHistory(t *testing.T) {
	vehicleID := uuid.New()
	released := time.Now()
	svc := &stubVehicleService{assignments: []models.VehicleAssignment{
		{ID: uuid.New(), VehicleID: vehicleID, Region: "Oran", Recipient: "Brigade 3", AssignedAt: released.Add(-48 * time.Hour), ReleasedAt: &released},
		{ID: uuid.New(), VehicleID: vehicleID, Region: "Alger", Recipient: "Brigade 12", AssignedAt: released},
	}}
	handler := VehicleAssignments(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/"+vehicleID.String()+"/assignments", nil)
	req = withPathParam(req, "vehicleID", vehicleID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data []vehicleAssignmentResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 assignments got %d", len(envelope.Data))
	}
	if envelope.Data[0].ReleasedAt == nil || envelope.Data[1].ReleasedAt != nil {
		t.Fatal("expected first assignment released and second open")
	}
}
