package approvals

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/pkg/auth"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

// txRunner abstracts the transactional boundary so tests can supply their
// own database.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EffectApplier reacts to the terminal resolution of a queued operation
// inside the resolution transaction. A returned error rolls the decision back
// and leaves the operation pending.
type EffectApplier interface {
	// ApplyEffect executes the stored mutation after an approval.
	ApplyEffect(ctx context.Context, tx *gorm.DB, op *models.PendingOperation) error
	// DiscardEffect marks the stored mutation as refused after a rejection.
	DiscardEffect(ctx context.Context, tx *gorm.DB, op *models.PendingOperation) error
}

// Service manages the approval queue. Resolution is terminal: once an
// operation is approved or rejected it can never be resolved again.
type Service interface {
	RegisterApplier(applier EffectApplier)
	Submit(ctx context.Context, tx *gorm.DB, input SubmitInput) (*models.PendingOperation, error)
	Approve(ctx context.Context, id uuid.UUID, resolver Actor) (*models.PendingOperation, error)
	Reject(ctx context.Context, id uuid.UUID, resolver Actor) (*models.PendingOperation, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PendingOperation, error)
	List(ctx context.Context, filter ListFilter) ([]models.PendingOperation, error)
}

// Actor identifies the authenticated caller of a queue operation.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// SubmitInput shapes a mutation for deferred execution.
type SubmitInput struct {
	Kind        enums.PendingOperationKind
	Payload     json.RawMessage
	SubmittedBy uuid.UUID
}

type service struct {
	tx      txRunner
	repo    Repository
	policy  auth.Policy
	applier EffectApplier
	now     func() time.Time
}

// NewService wires the approval queue. The applier is registered after
// construction because the movement service both submits to and is invoked by
// the queue.
func NewService(tx txRunner, repo Repository, policy auth.Policy) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("approvals repository required")
	}
	if policy == nil {
		return nil, fmt.Errorf("authorization policy required")
	}
	return &service{tx: tx, repo: repo, policy: policy, now: time.Now}, nil
}

// RegisterApplier binds the component that executes approved operations.
func (s *service) RegisterApplier(applier EffectApplier) {
	s.applier = applier
}

func (s *service) Submit(ctx context.Context, tx *gorm.DB, input SubmitInput) (*models.PendingOperation, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "submit requires a transaction")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid operation kind %q", input.Kind))
	}
	if len(input.Payload) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operation payload is required")
	}
	if input.SubmittedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submitter is required")
	}

	op := &models.PendingOperation{
		ID:          uuid.New(),
		Kind:        input.Kind,
		Payload:     input.Payload,
		SubmittedBy: input.SubmittedBy,
		Status:      enums.PendingOperationStatusPending,
	}
	if err := s.repo.WithTx(tx).Create(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID, resolver Actor) (*models.PendingOperation, error) {
	return s.resolve(ctx, id, resolver, enums.PendingOperationStatusApproved)
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, resolver Actor) (*models.PendingOperation, error) {
	return s.resolve(ctx, id, resolver, enums.PendingOperationStatusRejected)
}

func (s *service) resolve(ctx context.Context, id uuid.UUID, resolver Actor, status enums.PendingOperationStatus) (*models.PendingOperation, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operation id is required")
	}
	if resolver.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resolver is required")
	}
	if !s.policy.CanResolve(resolver.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot resolve pending operations")
	}
	if s.applier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "no effect applier registered")
	}

	var resolved *models.PendingOperation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		op, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		rows, err := repo.Resolve(ctx, id, status, resolver.ID, s.now().UTC())
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved,
				fmt.Sprintf("operation already %s", op.Status))
		}

		if status == enums.PendingOperationStatusApproved {
			if err := s.applier.ApplyEffect(ctx, tx, op); err != nil {
				return err
			}
		} else {
			if err := s.applier.DiscardEffect(ctx, tx, op); err != nil {
				return err
			}
		}

		resolved, err = repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PendingOperation, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operation id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.PendingOperation, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status filter %q", filter.Status))
	}
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid kind filter %q", filter.Kind))
	}
	return s.repo.List(ctx, filter)
}
