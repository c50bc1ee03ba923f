package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/internal/approvals"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

type stubApprovalService struct {
	op   *models.PendingOperation
	list []models.PendingOperation
	err  error

	gotID       uuid.UUID
	gotResolver approvals.Actor
	gotFilter   approvals.ListFilter
}

func (s *stubApprovalService) RegisterApplier(approvals.EffectApplier) {}

func (s *stubApprovalService) Submit(context.Context, *gorm.DB, approvals.SubmitInput) (*models.PendingOperation, error) {
	return s.op, s.err
}

func (s *stubApprovalService) Approve(_ context.Context, id uuid.UUID, resolver approvals.Actor) (*models.PendingOperation, error) {
	s.gotID = id
	s.gotResolver = resolver
	return s.op, s.err
}

func (s *stubApprovalService) Reject(_ context.Context, id uuid.UUID, resolver approvals.Actor) (*models.PendingOperation, error) {
	s.gotID = id
	s.gotResolver = resolver
	return s.op, s.err
}

func (s *stubApprovalService) Get(_ context.Context, id uuid.UUID) (*models.PendingOperation, error) {
	s.gotID = id
	return s.op, s.err
}

func (s *stubApprovalService) List(_ context.Context, filter approvals.ListFilter) ([]models.PendingOperation, error) {
	s.gotFilter = filter
	return s.list, s.err
}

func TestApprovalApproveSuccess(t *testing.T) {
	opID := uuid.New()
	resolverID := uuid.New()
	now := time.Now()
	svc := &stubApprovalService{op: &models.PendingOperation{
		ID:          opID,
		Kind:        enums.PendingOperationKindStockOut,
		Status:      enums.PendingOperationStatusApproved,
		SubmittedBy: uuid.New(),
		ResolvedBy:  &resolverID,
		ResolvedAt:  &now,
	}}
	handler := ApprovalApprove(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/approvals/"+opID.String()+"/approve", nil, resolverID, enums.ActorRoleAdmin)
	req = withPathParam(req, "operationID", opID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotID != opID {
		t.Fatalf("expected op id %s got %s", opID, svc.gotID)
	}
	if svc.gotResolver.ID != resolverID || svc.gotResolver.Role != enums.ActorRoleAdmin {
		t.Fatalf("unexpected resolver: %+v", svc.gotResolver)
	}

	var envelope struct {
		Data pendingOperationResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.PendingOperationStatusApproved {
		t.Fatalf("expected approved status got %s", envelope.Data.Status)
	}
	if envelope.Data.ResolvedBy == nil || *envelope.Data.ResolvedBy != resolverID {
		t.Fatal("expected resolver id in response")
	}
}

func TestApprovalRejectAlreadyResolved(t *testing.T) {
	opID := uuid.New()
	svc := &stubApprovalService{err: pkgerrors.New(pkgerrors.CodeAlreadyResolved, "operation already approved")}
	handler := ApprovalReject(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/approvals/"+opID.String()+"/reject", nil, uuid.New(), enums.ActorRoleManager)
	req = withPathParam(req, "operationID", opID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeAlreadyResolved) {
		t.Fatalf("expected already resolved code got %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "operation already approved" {
		t.Fatalf("expected terminal status in message got %q", envelope.Error.Message)
	}
}

func TestApprovalApproveRequiresAuthContext(t *testing.T) {
	opID := uuid.New()
	handler := ApprovalApprove(&stubApprovalService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/approvals/"+opID.String()+"/approve", nil)
	req = withPathParam(req, "operationID", opID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestApprovalListForwardsFilter(t *testing.T) {
	svc := &stubApprovalService{list: []models.PendingOperation{
		{ID: uuid.New(), Kind: enums.PendingOperationKindReceipt, Status: enums.PendingOperationStatusPending, SubmittedBy: uuid.New()},
	}}
	handler := ApprovalList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/approvals?status=pending&kind=receipt&limit=25", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotFilter.Status != enums.PendingOperationStatusPending ||
		svc.gotFilter.Kind != enums.PendingOperationKindReceipt ||
		svc.gotFilter.Limit != 25 {
		t.Fatalf("unexpected filter: %+v", svc.gotFilter)
	}
}

func TestApprovalGetNotFound(t *testing.T) {
	opID := uuid.New()
	svc := &stubApprovalService{err: pkgerrors.New(pkgerrors.CodeNotFound, "operation not found")}
	handler := ApprovalGet(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/approvals/"+opID.String(), nil)
	req = withPathParam(req, "operationID", opID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
