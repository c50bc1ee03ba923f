package movements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/pkg/db"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.StockMovement) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StockMovement, error)
	List(ctx context.Context, filter ListFilter) ([]models.StockMovement, error)
	// UpdateStatus transitions a movement between two statuses. It returns the
	// number of rows updated, zero meaning the movement was not in `from`.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.MovementStatus) (int64, error)
	SetPendingOperation(ctx context.Context, movementID, operationID uuid.UUID) error
	SetItemProduct(ctx context.Context, itemID, productID uuid.UUID) error
}

// ListFilter narrows the movement listing. Zero values mean "any".
type ListFilter struct {
	Kind   enums.MovementKind
	Status enums.MovementStatus
	Limit  int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a movement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, movement *models.StockMovement) error {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create stock movement")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StockMovement, error) {
	var movement models.StockMovement
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&movement, "id = ?", id).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock movement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load stock movement")
	}
	return &movement, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.StockMovement, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovement{}).Preload("Items")
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var movements []models.StockMovement
	if err := query.Order("occurred_at DESC").Find(&movements).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list stock movements")
	}
	return movements, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.MovementStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "failed to update movement status")
	}
	return result.RowsAffected, nil
}

func (r *repository) SetPendingOperation(ctx context.Context, movementID, operationID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("id = ?", movementID).
		Update("pending_operation_id", operationID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to link pending operation")
	}
	return nil
}

func (r *repository) SetItemProduct(ctx context.Context, itemID, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.ReceiptItem{}).
		Where("id = ?", itemID).
		Update("product_id", productID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to link receipt item product")
	}
	return nil
}
