package vehicles

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
	Create(ctx context.Context, vehicle *models.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, filter ListFilter) ([]models.Vehicle, error)
	// UpdateStatus transitions a vehicle out of one of the `from` statuses.
	// Zero rows updated means the vehicle was in none of them.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.VehicleStatus, to enums.VehicleStatus) (int64, error)
	CreateAssignment(ctx context.Context, assignment *models.VehicleAssignment) error
	FindOpenAssignment(ctx context.Context, vehicleID uuid.UUID) (*models.VehicleAssignment, error)
	ReleaseAssignment(ctx context.Context, id uuid.UUID, at time.Time, by, reason string) error
	ListAssignments(ctx context.Context, vehicleID uuid.UUID) ([]models.VehicleAssignment, error)
	CreateReform(ctx context.Context, reform *models.VehicleReform) error
}

// ListFilter narrows the fleet listing. Zero values mean "any".
type ListFilter struct {
	Status enums.VehicleStatus
	Limit  int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a vehicle repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "chassis or plate number already registered")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create vehicle")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Preload("Assignments", func(q *gorm.DB) *gorm.DB {
			return q.Order("assigned_at ASC")
		}).
		Preload("Reform").
		First(&vehicle, "id = ?", id).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load vehicle")
	}
	return &vehicle, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Vehicle, error) {
	query := r.db.WithContext(ctx).Model(&models.Vehicle{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var vehicles []models.Vehicle
	if err := query.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list vehicles")
	}
	return vehicles, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.VehicleStatus, to enums.VehicleStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "failed to update vehicle status")
	}
	return result.RowsAffected, nil
}

func (r *repository) CreateAssignment(ctx context.Context, assignment *models.VehicleAssignment) error {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create assignment")
	}
	return nil
}

func (r *repository) FindOpenAssignment(ctx context.Context, vehicleID uuid.UUID) (*models.VehicleAssignment, error) {
	var assignment models.VehicleAssignment
	err := r.db.WithContext(ctx).
		First(&assignment, "vehicle_id = ? AND released_at IS NULL", vehicleID).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open assignment for vehicle")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load open assignment")
	}
	return &assignment, nil
}

func (r *repository) ReleaseAssignment(ctx context.Context, id uuid.UUID, at time.Time, by, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&models.VehicleAssignment{}).
		Where("id = ? AND released_at IS NULL", id).
		Updates(map[string]any{
			"released_at":    at,
			"released_by":    by,
			"release_reason": reason,
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "failed to release assignment")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition, "assignment already released")
	}
	return nil
}

func (r *repository) ListAssignments(ctx context.Context, vehicleID uuid.UUID) ([]models.VehicleAssignment, error) {
	var assignments []models.VehicleAssignment
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("assigned_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list assignments")
	}
	return assignments, nil
}

func (r *repository) CreateReform(ctx context.Context, reform *models.VehicleReform) error {
	if err := r.db.WithContext(ctx).Create(reform).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInvalidTransition, err, "vehicle already reformed")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create reform record")
	}
	return nil
}
