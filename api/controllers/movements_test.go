package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adelferjani/stockparc-backend/api/middleware"
	"github.com/adelferjani/stockparc-backend/internal/approvals"
	"github.com/adelferjani/stockparc-backend/internal/movements"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

type stubMovementService struct {
	movement *models.StockMovement
	list     []models.StockMovement
	err      error

	gotInput any
	gotActor approvals.Actor
}

func (s *stubMovementService) CreateReceipt(_ context.Context, input movements.CreateReceiptInput, actor approvals.Actor) (*models.StockMovement, error) {
	s.gotInput = input
	s.gotActor = actor
	return s.movement, s.err
}

func (s *stubMovementService) CreateStockOut(_ context.Context, input movements.CreateStockOutInput, actor approvals.Actor) (*models.StockMovement, error) {
	s.gotInput = input
	s.gotActor = actor
	return s.movement, s.err
}

func (s *stubMovementService) ValidateStockOut(_ context.Context, id uuid.UUID, actor approvals.Actor) (*models.StockMovement, error) {
	s.gotInput = id
	s.gotActor = actor
	return s.movement, s.err
}

func (s *stubMovementService) ReturnStockOut(_ context.Context, id uuid.UUID, actor approvals.Actor) (*models.StockMovement, error) {
	s.gotInput = id
	s.gotActor = actor
	return s.movement, s.err
}

func (s *stubMovementService) Get(_ context.Context, id uuid.UUID) (*models.StockMovement, error) {
	s.gotInput = id
	return s.movement, s.err
}

func (s *stubMovementService) List(_ context.Context, filter movements.ListFilter) ([]models.StockMovement, error) {
	s.gotInput = filter
	return s.list, s.err
}

func authedRequest(method, target string, body []byte, actorID uuid.UUID, role enums.ActorRole) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := middleware.WithUserID(req.Context(), actorID.String())
	ctx = middleware.WithRole(ctx, role.String())
	return req.WithContext(ctx)
}

func withPathParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestReceiptCreateSuccess(t *testing.T) {
	actorID := uuid.New()
	supplier := "Fournisseur Central"
	svc := &stubMovementService{movement: &models.StockMovement{
		ID:         uuid.New(),
		Kind:       enums.MovementKindReceipt,
		Status:     enums.MovementStatusCompleted,
		OccurredAt: time.Now(),
		CreatedBy:  actorID,
		Supplier:   &supplier,
	}}
	handler := ReceiptCreate(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"supplier": "Fournisseur Central",
		"agent":    "B. Khellaf",
		"acquirer": "Direction",
		"items": []map[string]any{
			{"name": "Oil filter", "quantity": 4, "unit_price": "1200.00"},
		},
	})
	req := authedRequest(http.MethodPost, "/api/v1/movements/receipts", body, actorID, enums.ActorRoleManager)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	input, ok := svc.gotInput.(movements.CreateReceiptInput)
	if !ok {
		t.Fatalf("service received %T", svc.gotInput)
	}
	if input.Supplier != "Fournisseur Central" || len(input.Items) != 1 {
		t.Fatalf("unexpected input: %+v", input)
	}
	if svc.gotActor.ID != actorID || svc.gotActor.Role != enums.ActorRoleManager {
		t.Fatalf("unexpected actor: %+v", svc.gotActor)
	}
}

func TestReceiptCreateRejectsEmptyItems(t *testing.T) {
	svc := &stubMovementService{}
	handler := ReceiptCreate(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"supplier": "Fournisseur Central",
		"agent":    "B. Khellaf",
		"acquirer": "Direction",
		"items":    []map[string]any{},
	})
	req := authedRequest(http.MethodPost, "/api/v1/movements/receipts", body, uuid.New(), enums.ActorRoleManager)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.gotInput != nil {
		t.Fatal("service should not be called on invalid payload")
	}
}

func TestReceiptCreateRequiresAuthContext(t *testing.T) {
	handler := ReceiptCreate(&stubMovementService{}, nil)

	body, _ := json.Marshal(map[string]any{
		"supplier": "x", "agent": "y", "acquirer": "z",
		"items": []map[string]any{{"name": "n", "quantity": 1}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movements/receipts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestStockOutCreateInsufficientStock(t *testing.T) {
	svc := &stubMovementService{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{"requested": 10, "on_hand": 3})}
	handler := StockOutCreate(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"product_id": uuid.NewString(),
		"quantity":   10,
		"kind":       "definitive",
	})
	req := authedRequest(http.MethodPost, "/api/v1/movements/stock-outs", body, uuid.New(), enums.ActorRoleAdmin)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock code got %s", envelope.Error.Code)
	}
	if envelope.Error.Details["on_hand"] != float64(3) {
		t.Fatalf("expected on_hand detail got %v", envelope.Error.Details)
	}
}

func TestStockOutCreateRejectsUnknownKind(t *testing.T) {
	svc := &stubMovementService{}
	handler := StockOutCreate(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"product_id": uuid.NewString(),
		"quantity":   1,
		"kind":       "temporary",
	})
	req := authedRequest(http.MethodPost, "/api/v1/movements/stock-outs", body, uuid.New(), enums.ActorRoleAdmin)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.gotInput != nil {
		t.Fatal("service should not be called for an unknown kind")
	}
}

func TestStockOutValidatePassesMovementID(t *testing.T) {
	movementID := uuid.New()
	kind := enums.StockOutKindProvisional
	svc := &stubMovementService{movement: &models.StockMovement{
		ID:       movementID,
		Kind:     enums.MovementKindStockOut,
		Status:   enums.MovementStatusCompleted,
		ExitKind: &kind,
	}}
	handler := StockOutValidate(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/movements/stock-outs/"+movementID.String()+"/validate", nil, uuid.New(), enums.ActorRoleManager)
	req = withPathParam(req, "movementID", movementID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if got, ok := svc.gotInput.(uuid.UUID); !ok || got != movementID {
		t.Fatalf("expected movement id %s got %v", movementID, svc.gotInput)
	}
}

func TestMovementGetRejectsBadID(t *testing.T) {
	handler := MovementGet(&stubMovementService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movements/not-a-uuid", nil)
	req = withPathParam(req, "movementID", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestMovementListForwardsFilter(t *testing.T) {
	svc := &stubMovementService{list: []models.StockMovement{
		{ID: uuid.New(), Kind: enums.MovementKindStockOut, Status: enums.MovementStatusCompleted},
	}}
	handler := MovementList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movements?kind=stock_out&status=completed&limit=10", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	filter, ok := svc.gotInput.(movements.ListFilter)
	if !ok {
		t.Fatalf("service received %T", svc.gotInput)
	}
	if filter.Kind != enums.MovementKindStockOut || filter.Status != enums.MovementStatusCompleted || filter.Limit != 10 {
		t.Fatalf("unexpected filter: %+v", filter)
	}

	var envelope struct {
		Data []movementResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected 1 movement got %d", len(envelope.Data))
	}
}
