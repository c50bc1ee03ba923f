package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/pkg/db/models"
)

// Repository manages product records. Quantity columns are written only by
// the Ledger, never through this repository.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByReference(ctx context.Context, reference string) (*models.Product, error)
	FindByName(ctx context.Context, name string) (*models.Product, error)
	ListLedgerEntries(ctx context.Context, productID uuid.UUID) ([]models.StockLedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByReference(ctx context.Context, reference string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListLedgerEntries(ctx context.Context, productID uuid.UUID) ([]models.StockLedgerEntry, error) {
	var entries []models.StockLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
