package vehicles

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the vehicle lifecycle. Pending and Assigned alternate
// through assign/unassign; Reformed is terminal.
type Service interface {
	Receive(ctx context.Context, input ReceiveInput) (*models.Vehicle, error)
	Assign(ctx context.Context, vehicleID uuid.UUID, input AssignInput) (*models.Vehicle, error)
	Unassign(ctx context.Context, vehicleID uuid.UUID, input UnassignInput) (*models.Vehicle, error)
	Reform(ctx context.Context, vehicleID uuid.UUID, input ReformInput) (*models.Vehicle, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, filter ListFilter) ([]models.Vehicle, error)
	ListAssignments(ctx context.Context, vehicleID uuid.UUID) ([]models.VehicleAssignment, error)
}

// ReceiveInput registers a vehicle entering the fleet.
type ReceiveInput struct {
	Type                string    `json:"type" validate:"required"`
	Designation         string    `json:"designation" validate:"required"`
	ChassisNumber       string    `json:"chassis_number" validate:"required"`
	PlateNumber         string    `json:"plate_number" validate:"required"`
	AcquisitionDate     time.Time `json:"acquisition_date" validate:"required"`
	Acquirer            *string   `json:"acquirer,omitempty"`
	ReceptionCommission *string   `json:"reception_commission,omitempty"`
	Observations        *string   `json:"observations,omitempty"`
}

// AssignInput places a vehicle with a recipient.
type AssignInput struct {
	Region    string  `json:"region" validate:"required"`
	Recipient string  `json:"recipient" validate:"required"`
	Structure *string `json:"structure,omitempty"`
	District  *string `json:"district,omitempty"`
}

// UnassignInput releases the current assignment. Agent and reason are
// mandatory for the timeline.
type UnassignInput struct {
	Agent  string `json:"agent" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// ReformInput retires a vehicle for good.
type ReformInput struct {
	Reason      string  `json:"reason" validate:"required"`
	Agent       string  `json:"agent" validate:"required"`
	Destination string  `json:"destination" validate:"required"`
	Notes       *string `json:"notes,omitempty"`
}

type service struct {
	tx   txRunner
	repo Repository
	now  func() time.Time
}

// NewService wires the vehicle lifecycle manager.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	return &service{tx: tx, repo: repo, now: time.Now}, nil
}

func (s *service) Receive(ctx context.Context, input ReceiveInput) (*models.Vehicle, error) {
	if input.Type == "" || input.Designation == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type and designation are required")
	}
	if input.ChassisNumber == "" || input.PlateNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "chassis and plate numbers are required")
	}
	if input.AcquisitionDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acquisition date is required")
	}

	vehicle := &models.Vehicle{
		ID:                  uuid.New(),
		Type:                input.Type,
		Designation:         input.Designation,
		ChassisNumber:       input.ChassisNumber,
		PlateNumber:         input.PlateNumber,
		AcquisitionDate:     input.AcquisitionDate,
		Acquirer:            input.Acquirer,
		ReceptionCommission: input.ReceptionCommission,
		Observations:        input.Observations,
		Status:              enums.VehicleStatusPending,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *service) Assign(ctx context.Context, vehicleID uuid.UUID, input AssignInput) (*models.Vehicle, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	if input.Region == "" || input.Recipient == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region and recipient are required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.transition(ctx, repo, vehicleID,
			[]enums.VehicleStatus{enums.VehicleStatusPending}, enums.VehicleStatusAssigned); err != nil {
			return err
		}
		return repo.CreateAssignment(ctx, &models.VehicleAssignment{
			ID:         uuid.New(),
			VehicleID:  vehicleID,
			Region:     input.Region,
			Recipient:  input.Recipient,
			Structure:  input.Structure,
			District:   input.District,
			AssignedAt: s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, vehicleID)
}

func (s *service) Unassign(ctx context.Context, vehicleID uuid.UUID, input UnassignInput) (*models.Vehicle, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	if input.Agent == "" || input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent and reason are required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.transition(ctx, repo, vehicleID,
			[]enums.VehicleStatus{enums.VehicleStatusAssigned}, enums.VehicleStatusPending); err != nil {
			return err
		}
		open, err := repo.FindOpenAssignment(ctx, vehicleID)
		if err != nil {
			return err
		}
		return repo.ReleaseAssignment(ctx, open.ID, s.now().UTC(), input.Agent, input.Reason)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, vehicleID)
}

func (s *service) Reform(ctx context.Context, vehicleID uuid.UUID, input ReformInput) (*models.Vehicle, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	if input.Reason == "" || input.Agent == "" || input.Destination == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason, agent and destination are required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.transition(ctx, repo, vehicleID,
			[]enums.VehicleStatus{enums.VehicleStatusPending, enums.VehicleStatusAssigned},
			enums.VehicleStatusReformed); err != nil {
			return err
		}

		// Reform closes any open assignment so the timeline has no dangling
		// entry for a retired vehicle.
		open, err := repo.FindOpenAssignment(ctx, vehicleID)
		if err == nil {
			if relErr := repo.ReleaseAssignment(ctx, open.ID, s.now().UTC(), input.Agent, "reform"); relErr != nil {
				return relErr
			}
		} else if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return err
		}

		return repo.CreateReform(ctx, &models.VehicleReform{
			ID:          uuid.New(),
			VehicleID:   vehicleID,
			Reason:      input.Reason,
			Agent:       input.Agent,
			Destination: input.Destination,
			Notes:       input.Notes,
			ReformedAt:  s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, vehicleID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Vehicle, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status filter %q", filter.Status))
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ListAssignments(ctx context.Context, vehicleID uuid.UUID) ([]models.VehicleAssignment, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	if _, err := s.repo.FindByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	return s.repo.ListAssignments(ctx, vehicleID)
}

func (s *service) transition(ctx context.Context, repo Repository, id uuid.UUID, from []enums.VehicleStatus, to enums.VehicleStatus) error {
	rows, err := repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return err
	}
	if rows == 0 {
		vehicle, loadErr := repo.FindByID(ctx, id)
		if loadErr != nil {
			return loadErr
		}
		return pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("vehicle is %s, cannot move to %s", vehicle.Status, to)).
			WithDetails(map[string]any{"vehicle_id": id, "status": vehicle.Status, "target": to})
	}
	return nil
}
