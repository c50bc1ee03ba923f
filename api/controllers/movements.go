package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adelferjani/stockparc-backend/api/responses"
	"github.com/adelferjani/stockparc-backend/api/validators"
	"github.com/adelferjani/stockparc-backend/internal/movements"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
	"github.com/adelferjani/stockparc-backend/pkg/logger"
)

type receiptLineRequest struct {
	Name      string          `json:"name" validate:"required"`
	Reference *string         `json:"reference,omitempty"`
	Category  *string         `json:"category,omitempty"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type receiptCreateRequest struct {
	Supplier       string               `json:"supplier" validate:"required"`
	Agent          string               `json:"agent" validate:"required"`
	Acquirer       string               `json:"acquirer" validate:"required"`
	PersonsPresent *string              `json:"persons_present,omitempty"`
	OccurredAt     *time.Time           `json:"occurred_at,omitempty"`
	Notes          *string              `json:"notes,omitempty"`
	Items          []receiptLineRequest `json:"items" validate:"required,min=1,dive"`
}

func (r receiptCreateRequest) toInput() movements.CreateReceiptInput {
	input := movements.CreateReceiptInput{
		Supplier:       strings.TrimSpace(r.Supplier),
		Agent:          strings.TrimSpace(r.Agent),
		Acquirer:       strings.TrimSpace(r.Acquirer),
		PersonsPresent: r.PersonsPresent,
		Notes:          r.Notes,
	}
	if r.OccurredAt != nil {
		input.OccurredAt = *r.OccurredAt
	}
	for _, line := range r.Items {
		input.Items = append(input.Items, movements.ReceiptLineInput{
			Name:      strings.TrimSpace(line.Name),
			Reference: line.Reference,
			Category:  line.Category,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return input
}

type stockOutCreateRequest struct {
	ProductID   string     `json:"product_id" validate:"required"`
	Quantity    int        `json:"quantity" validate:"required,gt=0"`
	Kind        string     `json:"kind" validate:"required"`
	Beneficiary *string    `json:"beneficiary,omitempty"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

func (r stockOutCreateRequest) toInput() (movements.CreateStockOutInput, error) {
	productID, err := uuid.Parse(strings.TrimSpace(r.ProductID))
	if err != nil {
		return movements.CreateStockOutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id")
	}
	kind, err := enums.ParseStockOutKind(strings.TrimSpace(r.Kind))
	if err != nil {
		return movements.CreateStockOutInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock-out kind")
	}

	input := movements.CreateStockOutInput{
		ProductID:   productID,
		Quantity:    r.Quantity,
		Kind:        kind,
		Beneficiary: r.Beneficiary,
		Notes:       r.Notes,
	}
	if r.OccurredAt != nil {
		input.OccurredAt = *r.OccurredAt
	}
	return input, nil
}

// ReceiptCreate records goods entering the store.
func ReceiptCreate(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload receiptCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.CreateReceipt(r.Context(), payload.toInput(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, movementResponseFromModel(movement))
	}
}

// StockOutCreate records goods leaving the store.
func StockOutCreate(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockOutCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.CreateStockOut(r.Context(), input, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, movementResponseFromModel(movement))
	}
}

// StockOutValidate confirms an open provisional stock-out.
func StockOutValidate(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "movementID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.ValidateStockOut(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, movementResponseFromModel(movement))
	}
}

// StockOutReturn reintegrates an open provisional stock-out.
func StockOutReturn(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "movementID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.ReturnStockOut(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, movementResponseFromModel(movement))
	}
}

// MovementGet returns one movement with its line items.
func MovementGet(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "movementID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, movementResponseFromModel(movement))
	}
}

// MovementList returns movements, optionally filtered by kind and status.
func MovementList(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := movements.ListFilter{
			Kind:   enums.MovementKind(r.URL.Query().Get("kind")),
			Status: enums.MovementStatus(r.URL.Query().Get("status")),
			Limit:  limit,
		}

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]movementResponse, 0, len(list))
		for i := range list {
			out = append(out, movementResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type receiptItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Reference *string         `json:"reference,omitempty"`
	Category  *string         `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
}

type movementResponse struct {
	ID                 uuid.UUID            `json:"id"`
	Kind               enums.MovementKind   `json:"kind"`
	Status             enums.MovementStatus `json:"status"`
	OccurredAt         time.Time            `json:"occurred_at"`
	Notes              *string              `json:"notes,omitempty"`
	CreatedBy          uuid.UUID            `json:"created_by"`
	PendingOperationID *uuid.UUID           `json:"pending_operation_id,omitempty"`

	Supplier       *string               `json:"supplier,omitempty"`
	Agent          *string               `json:"agent,omitempty"`
	Acquirer       *string               `json:"acquirer,omitempty"`
	PersonsPresent *string               `json:"persons_present,omitempty"`
	Items          []receiptItemResponse `json:"items,omitempty"`

	ProductID   *uuid.UUID          `json:"product_id,omitempty"`
	Quantity    int                 `json:"quantity,omitempty"`
	Beneficiary *string             `json:"beneficiary,omitempty"`
	ExitKind    *enums.StockOutKind `json:"exit_kind,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func movementResponseFromModel(m *models.StockMovement) movementResponse {
	out := movementResponse{
		ID:                 m.ID,
		Kind:               m.Kind,
		Status:             m.Status,
		OccurredAt:         m.OccurredAt,
		Notes:              m.Notes,
		CreatedBy:          m.CreatedBy,
		PendingOperationID: m.PendingOperationID,
		Supplier:           m.Supplier,
		Agent:              m.Agent,
		Acquirer:           m.Acquirer,
		PersonsPresent:     m.PersonsPresent,
		ProductID:          m.ProductID,
		Quantity:           m.Quantity,
		Beneficiary:        m.Beneficiary,
		ExitKind:           m.ExitKind,
		CreatedAt:          m.CreatedAt,
	}
	for _, item := range m.Items {
		out.Items = append(out.Items, receiptItemResponse{
			ID:        item.ID,
			Name:      item.Name,
			Reference: item.Reference,
			Category:  item.Category,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ProductID: item.ProductID,
		})
	}
	return out
}
