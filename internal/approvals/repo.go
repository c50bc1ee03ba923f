package approvals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/pkg/db"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, op *models.PendingOperation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PendingOperation, error)
	List(ctx context.Context, filter ListFilter) ([]models.PendingOperation, error)
	// Resolve flips a pending operation to a terminal status. It returns the
	// number of rows updated so callers can detect a lost race.
	Resolve(ctx context.Context, id uuid.UUID, status enums.PendingOperationStatus, resolver uuid.UUID, at time.Time) (int64, error)
}

// ListFilter narrows the queue listing. Zero values mean "any".
type ListFilter struct {
	Status enums.PendingOperationStatus
	Kind   enums.PendingOperationKind
	Limit  int
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, op *models.PendingOperation) error {
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to enqueue pending operation")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PendingOperation, error) {
	var op models.PendingOperation
	if err := r.db.WithContext(ctx).First(&op, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pending operation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load pending operation")
	}
	return &op, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.PendingOperation, error) {
	query := r.db.WithContext(ctx).Model(&models.PendingOperation{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var ops []models.PendingOperation
	if err := query.Order("created_at ASC").Find(&ops).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list pending operations")
	}
	return ops, nil
}

func (r *repository) Resolve(ctx context.Context, id uuid.UUID, status enums.PendingOperationStatus, resolver uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PendingOperation{}).
		Where("id = ? AND status = ?", id, enums.PendingOperationStatusPending).
		Updates(map[string]any{
			"status":      status,
			"resolved_by": resolver,
			"resolved_at": at,
		})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "failed to resolve pending operation")
	}
	return result.RowsAffected, nil
}
