package movements

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/internal/approvals"
	"github.com/adelferjani/stockparc-backend/internal/inventory"
	"github.com/adelferjani/stockparc-backend/pkg/auth"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records stock movements. Authorized actors mutate stock
// immediately; everyone else gets a movement parked behind a pending
// operation.
type Service interface {
	CreateReceipt(ctx context.Context, input CreateReceiptInput, actor approvals.Actor) (*models.StockMovement, error)
	CreateStockOut(ctx context.Context, input CreateStockOutInput, actor approvals.Actor) (*models.StockMovement, error)
	ValidateStockOut(ctx context.Context, id uuid.UUID, actor approvals.Actor) (*models.StockMovement, error)
	ReturnStockOut(ctx context.Context, id uuid.UUID, actor approvals.Actor) (*models.StockMovement, error)
	Get(ctx context.Context, id uuid.UUID) (*models.StockMovement, error)
	List(ctx context.Context, filter ListFilter) ([]models.StockMovement, error)
}

// ReceiptLineInput is one line of goods entering the store.
type ReceiptLineInput struct {
	Name      string          `json:"name" validate:"required"`
	Reference *string         `json:"reference,omitempty"`
	Category  *string         `json:"category,omitempty"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateReceiptInput captures a delivery note.
type CreateReceiptInput struct {
	Supplier       string             `json:"supplier" validate:"required"`
	Agent          string             `json:"agent" validate:"required"`
	Acquirer       string             `json:"acquirer" validate:"required"`
	PersonsPresent *string            `json:"persons_present,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
	Notes          *string            `json:"notes,omitempty"`
	Items          []ReceiptLineInput `json:"items" validate:"required,min=1,dive"`
}

// CreateStockOutInput captures goods leaving the store.
type CreateStockOutInput struct {
	ProductID   uuid.UUID          `json:"product_id" validate:"required"`
	Quantity    int                `json:"quantity" validate:"required,gt=0"`
	Kind        enums.StockOutKind `json:"kind" validate:"required"`
	Beneficiary *string            `json:"beneficiary,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
	Notes       *string            `json:"notes,omitempty"`
}

type service struct {
	tx       txRunner
	repo     Repository
	products inventory.Repository
	ledger   inventory.Ledger
	queue    approvals.Service
	policy   auth.Policy
	now      func() time.Time
}

// NewService wires the movement processor and registers it as the effect
// applier of the approval queue.
func NewService(
	tx txRunner,
	repo Repository,
	products inventory.Repository,
	ledger inventory.Ledger,
	queue approvals.Service,
	policy auth.Policy,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("movements repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if queue == nil {
		return nil, fmt.Errorf("approval queue required")
	}
	if policy == nil {
		return nil, fmt.Errorf("authorization policy required")
	}
	svc := &service{
		tx:       tx,
		repo:     repo,
		products: products,
		ledger:   ledger,
		queue:    queue,
		policy:   policy,
		now:      time.Now,
	}
	queue.RegisterApplier(svc)
	return svc, nil
}

func (s *service) CreateReceipt(ctx context.Context, input CreateReceiptInput, actor approvals.Actor) (*models.StockMovement, error) {
	if err := validateReceipt(input); err != nil {
		return nil, err
	}
	if actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now().UTC()
	}

	direct := s.policy.CanActDirectly(actor.Role, enums.PendingOperationKindReceipt)
	status := enums.MovementStatusPendingApproval
	if direct {
		status = enums.MovementStatusCompleted
	}

	movement := &models.StockMovement{
		ID:             uuid.New(),
		Kind:           enums.MovementKindReceipt,
		Status:         status,
		OccurredAt:     occurredAt,
		Notes:          input.Notes,
		CreatedBy:      actor.ID,
		Supplier:       &input.Supplier,
		Agent:          &input.Agent,
		Acquirer:       &input.Acquirer,
		PersonsPresent: input.PersonsPresent,
	}
	for _, line := range input.Items {
		movement.Items = append(movement.Items, models.ReceiptItem{
			ID:        uuid.New(),
			Name:      line.Name,
			Reference: line.Reference,
			Category:  line.Category,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, movement); err != nil {
			return err
		}
		if direct {
			return s.applyReceiptItems(ctx, tx, movement, actor.ID)
		}
		return s.enqueue(ctx, tx, movement, enums.PendingOperationKindReceipt, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, movement.ID)
}

func (s *service) CreateStockOut(ctx context.Context, input CreateStockOutInput, actor approvals.Actor) (*models.StockMovement, error) {
	if err := validateStockOut(input); err != nil {
		return nil, err
	}
	if actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now().UTC()
	}

	direct := s.policy.CanActDirectly(actor.Role, enums.PendingOperationKindStockOut)
	status := enums.MovementStatusPendingApproval
	if direct {
		status = completedStatusFor(input.Kind)
	}

	kind := input.Kind
	movement := &models.StockMovement{
		ID:          uuid.New(),
		Kind:        enums.MovementKindStockOut,
		Status:      status,
		OccurredAt:  occurredAt,
		Notes:       input.Notes,
		CreatedBy:   actor.ID,
		ProductID:   &input.ProductID,
		Quantity:    input.Quantity,
		Beneficiary: input.Beneficiary,
		ExitKind:    &kind,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, movement); err != nil {
			return err
		}
		if direct {
			return s.ledger.Decrease(ctx, tx, input.ProductID, input.Quantity, actor.ID)
		}
		return s.enqueue(ctx, tx, movement, enums.PendingOperationKindStockOut, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, movement.ID)
}

// ValidateStockOut confirms an open provisional stock-out. Stock already left
// at creation, so this is a pure status transition.
func (s *service) ValidateStockOut(ctx context.Context, id uuid.UUID, actor approvals.Actor) (*models.StockMovement, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement id is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		movement, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOpenProvisional(movement); err != nil {
			return err
		}
		return s.transition(ctx, repo, movement, enums.MovementStatusNone, enums.MovementStatusCompleted)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ReturnStockOut cancels an open provisional stock-out and puts the units
// back on the shelf.
func (s *service) ReturnStockOut(ctx context.Context, id uuid.UUID, actor approvals.Actor) (*models.StockMovement, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement id is required")
	}
	if actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		movement, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireOpenProvisional(movement); err != nil {
			return err
		}
		if err := s.transition(ctx, repo, movement, enums.MovementStatusNone, enums.MovementStatusReturned); err != nil {
			return err
		}
		return s.ledger.Reverse(ctx, tx, *movement.ProductID, movement.Quantity, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.StockMovement, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.StockMovement, error) {
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid kind filter %q", filter.Kind))
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status filter %q", filter.Status))
	}
	return s.repo.List(ctx, filter)
}

// enqueue parks a movement behind a pending operation and links the two.
func (s *service) enqueue(ctx context.Context, tx *gorm.DB, movement *models.StockMovement, kind enums.PendingOperationKind, submitter uuid.UUID) error {
	payload, err := encodePayload(movement.ID)
	if err != nil {
		return err
	}
	op, err := s.queue.Submit(ctx, tx, approvals.SubmitInput{
		Kind:        kind,
		Payload:     payload,
		SubmittedBy: submitter,
	})
	if err != nil {
		return err
	}
	return s.repo.WithTx(tx).SetPendingOperation(ctx, movement.ID, op.ID)
}

func (s *service) transition(ctx context.Context, repo Repository, movement *models.StockMovement, from, to enums.MovementStatus) error {
	rows, err := repo.UpdateStatus(ctx, movement.ID, from, to)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("movement is not %s", from)).
			WithDetails(map[string]any{"movement_id": movement.ID, "expected": from, "target": to})
	}
	return nil
}

// completedStatusFor maps a stock-out kind to its post-creation status.
// Provisional exits stay open until validated or returned.
func completedStatusFor(kind enums.StockOutKind) enums.MovementStatus {
	if kind == enums.StockOutKindProvisional {
		return enums.MovementStatusNone
	}
	return enums.MovementStatusCompleted
}

func requireOpenProvisional(movement *models.StockMovement) error {
	if movement.Kind != enums.MovementKindStockOut || movement.ExitKind == nil || *movement.ExitKind != enums.StockOutKindProvisional {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition, "movement is not a provisional stock-out")
	}
	if movement.Status != enums.MovementStatusNone {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("provisional stock-out already %s", movement.Status)).
			WithDetails(map[string]any{"movement_id": movement.ID, "status": movement.Status})
	}
	if movement.ProductID == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "stock-out movement missing product")
	}
	return nil
}

func validateReceipt(input CreateReceiptInput) error {
	if input.Supplier == "" || input.Agent == "" || input.Acquirer == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier, agent and acquirer are required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "a receipt requires at least one line item")
	}
	for i, line := range input.Items {
		if line.Name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: name is required", i+1))
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: unit price cannot be negative", i+1))
		}
	}
	return nil
}

func validateStockOut(input CreateStockOutInput) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock-out kind %q", input.Kind))
	}
	if input.Kind == enums.StockOutKindAssignment && (input.Beneficiary == nil || *input.Beneficiary == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignment stock-outs require a beneficiary")
	}
	return nil
}
