package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

// Ledger applies atomic quantity changes to a single product inside the
// caller's transaction. Each operation is one guarded UPDATE, so concurrent
// writers on the same product serialize on the row and the non-negativity
// invariant holds without any global lock.
type Ledger interface {
	Increase(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, actor uuid.UUID) error
	Decrease(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, actor uuid.UUID) error
	Reverse(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, actor uuid.UUID) error
}

type ledger struct{}

// NewLedger returns the stock ledger.
func NewLedger() Ledger {
	return ledger{}
}

func (ledger) Increase(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, actor uuid.UUID) error {
	return add(ctx, tx, productID, qty, actor, enums.LedgerReasonReceipt)
}

// Reverse undoes a prior Decrease. The quantity effect matches Increase; the
// audit entry carries the reversal reason so reintegrated stock is
// distinguishable from received stock.
func (ledger) Reverse(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, actor uuid.UUID) error {
	return add(ctx, tx, productID, qty, actor, enums.LedgerReasonReversal)
}

func (ledger) Decrease(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, actor uuid.UUID) error {
	if err := checkArgs(tx, productID, qty); err != nil {
		return err
	}

	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrease product quantity")
	}
	if res.RowsAffected == 0 {
		// Either the product is missing or the guard rejected the decrease.
		var product models.Product
		err := tx.WithContext(ctx).Select("id", "quantity").First(&product, "id = ?", productID).Error
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds on-hand stock").
			WithDetails(map[string]any{"requested": qty, "on_hand": product.Quantity})
	}

	return appendEntry(ctx, tx, productID, -qty, enums.LedgerReasonStockOut, actor)
}

func add(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, actor uuid.UUID, reason enums.LedgerReason) error {
	if err := checkArgs(tx, productID, qty); err != nil {
		return err
	}

	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increase product quantity")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	return appendEntry(ctx, tx, productID, qty, reason, actor)
}

func appendEntry(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, reason enums.LedgerReason, actor uuid.UUID) error {
	entry := models.StockLedgerEntry{
		ID:        uuid.New(),
		ProductID: productID,
		Delta:     delta,
		Reason:    reason,
		ActorID:   actor,
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return nil
}

func checkArgs(tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "ledger requires a transaction")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
