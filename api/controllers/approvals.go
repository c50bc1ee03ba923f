package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adelferjani/stockparc-backend/api/responses"
	"github.com/adelferjani/stockparc-backend/api/validators"
	"github.com/adelferjani/stockparc-backend/internal/approvals"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	"github.com/adelferjani/stockparc-backend/pkg/logger"
)

// ApprovalList returns queued operations, newest last.
func ApprovalList(svc approvals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := approvals.ListFilter{
			Status: enums.PendingOperationStatus(r.URL.Query().Get("status")),
			Kind:   enums.PendingOperationKind(r.URL.Query().Get("kind")),
			Limit:  limit,
		}

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]pendingOperationResponse, 0, len(list))
		for i := range list {
			out = append(out, pendingOperationResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ApprovalGet returns one queued operation.
func ApprovalGet(svc approvals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "operationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		op, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pendingOperationResponseFromModel(op))
	}
}

// ApprovalApprove resolves a queued operation and applies its effect.
func ApprovalApprove(svc approvals.Service, logg *logger.Logger) http.HandlerFunc {
	return resolveHandler(logg, svc.Approve)
}

// ApprovalReject resolves a queued operation without applying it.
func ApprovalReject(svc approvals.Service, logg *logger.Logger) http.HandlerFunc {
	return resolveHandler(logg, svc.Reject)
}

func resolveHandler(
	logg *logger.Logger,
	resolve func(ctx context.Context, id uuid.UUID, resolver approvals.Actor) (*models.PendingOperation, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "operationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		op, err := resolve(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pendingOperationResponseFromModel(op))
	}
}

type pendingOperationResponse struct {
	ID          uuid.UUID                    `json:"id"`
	Kind        enums.PendingOperationKind   `json:"kind"`
	Status      enums.PendingOperationStatus `json:"status"`
	Payload     json.RawMessage              `json:"payload,omitempty"`
	SubmittedBy uuid.UUID                    `json:"submitted_by"`
	ResolvedBy  *uuid.UUID                   `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time                   `json:"resolved_at,omitempty"`
	CreatedAt   time.Time                    `json:"created_at"`
}

func pendingOperationResponseFromModel(m *models.PendingOperation) pendingOperationResponse {
	out := pendingOperationResponse{
		ID:          m.ID,
		Kind:        m.Kind,
		Status:      m.Status,
		SubmittedBy: m.SubmittedBy,
		ResolvedBy:  m.ResolvedBy,
		ResolvedAt:  m.ResolvedAt,
		CreatedAt:   m.CreatedAt,
	}
	if len(m.Payload) > 0 {
		out.Payload = json.RawMessage(m.Payload)
	}
	return out
}
