package movements

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/internal/inventory"
	"github.com/adelferjani/stockparc-backend/pkg/db"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

// ApplyEffect executes a queued movement after approval. It runs inside the
// resolution transaction, so an insufficient-stock failure rolls the approval
// back and the operation stays pending.
func (s *service) ApplyEffect(ctx context.Context, tx *gorm.DB, op *models.PendingOperation) error {
	movement, err := s.queuedMovement(ctx, tx, op)
	if err != nil {
		return err
	}

	switch op.Kind {
	case enums.PendingOperationKindReceipt:
		if err := s.applyReceiptItems(ctx, tx, movement, movement.CreatedBy); err != nil {
			return err
		}
		return s.transition(ctx, s.repo.WithTx(tx), movement, enums.MovementStatusPendingApproval, enums.MovementStatusCompleted)
	case enums.PendingOperationKindStockOut:
		if movement.ProductID == nil || movement.ExitKind == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "queued stock-out movement is incomplete")
		}
		if err := s.ledger.Decrease(ctx, tx, *movement.ProductID, movement.Quantity, movement.CreatedBy); err != nil {
			return err
		}
		return s.transition(ctx, s.repo.WithTx(tx), movement, enums.MovementStatusPendingApproval, completedStatusFor(*movement.ExitKind))
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown operation kind %q", op.Kind))
	}
}

// DiscardEffect marks the parked movement rejected. No stock was touched at
// submission, so there is nothing to undo.
func (s *service) DiscardEffect(ctx context.Context, tx *gorm.DB, op *models.PendingOperation) error {
	movement, err := s.queuedMovement(ctx, tx, op)
	if err != nil {
		return err
	}
	return s.transition(ctx, s.repo.WithTx(tx), movement, enums.MovementStatusPendingApproval, enums.MovementStatusRejected)
}

func (s *service) queuedMovement(ctx context.Context, tx *gorm.DB, op *models.PendingOperation) (*models.StockMovement, error) {
	payload, err := decodePayload(op.Payload)
	if err != nil {
		return nil, err
	}
	movement, err := s.repo.WithTx(tx).FindByID(ctx, payload.MovementID)
	if err != nil {
		return nil, err
	}
	if movement.Status != enums.MovementStatusPendingApproval {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("queued movement is %s, expected pending approval", movement.Status))
	}
	return movement, nil
}

// applyReceiptItems resolves each line to a product and credits the stock.
// Lines matching no known reference or name create the product on the spot.
func (s *service) applyReceiptItems(ctx context.Context, tx *gorm.DB, movement *models.StockMovement, actor uuid.UUID) error {
	products := s.products.WithTx(tx)
	repo := s.repo.WithTx(tx)

	for i := range movement.Items {
		item := &movement.Items[i]
		product, err := s.resolveProduct(ctx, products, item)
		if err != nil {
			return err
		}
		if err := s.ledger.Increase(ctx, tx, product.ID, item.Quantity, actor); err != nil {
			return err
		}
		if item.ID != uuid.Nil {
			if err := repo.SetItemProduct(ctx, item.ID, product.ID); err != nil {
				return err
			}
		}
		item.ProductID = &product.ID
	}
	return nil
}

// resolveProduct matches a receipt line to the catalog: by reference first,
// then by name, creating the product when both miss.
func (s *service) resolveProduct(ctx context.Context, products inventory.Repository, item *models.ReceiptItem) (*models.Product, error) {
	if item.Reference != nil && *item.Reference != "" {
		product, err := products.FindByReference(ctx, *item.Reference)
		if err == nil {
			return product, nil
		}
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up product by reference")
		}
	}

	product, err := products.FindByName(ctx, item.Name)
	if err == nil {
		return product, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up product by name")
	}

	created := &models.Product{
		ID:        uuid.New(),
		Reference: referenceFor(item),
		Name:      item.Name,
		Category:  item.Category,
	}
	if err := products.Create(ctx, created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create product from receipt line")
	}
	return created, nil
}

// referenceFor yields the catalog reference for a new product. Reference-less
// lines get a generated one so the uniqueness constraint holds.
func referenceFor(item *models.ReceiptItem) string {
	if item.Reference != nil && *item.Reference != "" {
		return *item.Reference
	}
	return "SP-" + strings.ToUpper(uuid.NewString()[:8])
}
