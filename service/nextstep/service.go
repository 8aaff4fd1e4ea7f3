package nextstep

import (
	"context"
	"database/sql"
	"time"

	"github.com/harvestcrm/journal/model"
	"github.com/harvestcrm/journal/pkg/apperror"
	"github.com/harvestcrm/journal/pkg/auth"
	"github.com/harvestcrm/journal/repository"
	"github.com/harvestcrm/journal/service/guard"
)

// IService ...
type IService interface {
	Create(ctx context.Context, actor auth.Actor, input CreateInput) (model.NextStep, error)
	Get(ctx context.Context, actor auth.Actor, stepID int64) (model.NextStep, error)
	List(ctx context.Context, actor auth.Actor, membershipID int64, completed sql.NullBool) ([]model.NextStep, error)
	Update(ctx context.Context, actor auth.Actor, stepID int64, input UpdateInput) (model.NextStep, error)
	Delete(ctx context.Context, actor auth.Actor, stepID int64) error
}

// CreateInput ...
type CreateInput struct {
	MembershipID int64
	Title        string
	Notes        string
	DueDate      sql.NullTime
}

// UpdateInput ...
type UpdateInput struct {
	Title     string
	Notes     string
	DueDate   sql.NullTime
	Completed bool
}

// Service is the per-membership checklist. Plain CRUD; hard deletes are
// fine here, a todo list is not a ledger.
type Service struct {
	provider     repository.Provider
	nextStepRepo repository.NextStep
	guard        *guard.Guard

	now func() time.Time
}

// NewService ...
func NewService(
	provider repository.Provider,
	journalRepo repository.Journal,
	membershipRepo repository.Membership,
	nextStepRepo repository.NextStep,
) *Service {
	return &Service{
		provider:     provider,
		nextStepRepo: nextStepRepo,
		guard:        guard.New(journalRepo, membershipRepo),
		now:          time.Now,
	}
}

// Create ...
func (s *Service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (model.NextStep, error) {
	if input.Title == "" {
		return model.NextStep{}, apperror.New(apperror.CodeValidation, "title is required")
	}

	var step model.NextStep
	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		membership, err := s.guard.MembershipForWrite(ctx, actor, input.MembershipID)
		if err != nil {
			return err
		}
		if !membership.IsActive {
			return apperror.New(apperror.CodeNotFound, "membership not found")
		}

		ordinal, err := s.nextStepRepo.NextOrdinal(ctx, input.MembershipID)
		if err != nil {
			return err
		}

		step = model.NextStep{
			MembershipID: input.MembershipID,
			Title:        input.Title,
			Notes:        input.Notes,
			DueDate:      input.DueDate,
			Ordinal:      ordinal,
		}
		id, err := s.nextStepRepo.Insert(ctx, step)
		if err != nil {
			return err
		}
		step.ID = id
		return nil
	})
	if err != nil {
		return model.NextStep{}, err
	}
	return step, nil
}

func (s *Service) getGuarded(ctx context.Context, actor auth.Actor, stepID int64, forWrite bool) (model.NextStep, error) {
	step, ok, err := s.nextStepRepo.Get(ctx, stepID)
	if err != nil {
		return model.NextStep{}, err
	}
	if !ok {
		return model.NextStep{}, apperror.New(apperror.CodeNotFound, "next step not found")
	}
	if forWrite {
		_, err = s.guard.MembershipForWrite(ctx, actor, step.MembershipID)
	} else {
		_, err = s.guard.MembershipForRead(ctx, actor, step.MembershipID)
	}
	if err != nil {
		return model.NextStep{}, err
	}
	return step, nil
}

// Get ...
func (s *Service) Get(ctx context.Context, actor auth.Actor, stepID int64) (model.NextStep, error) {
	ctx = s.provider.Readonly(ctx)
	return s.getGuarded(ctx, actor, stepID, false)
}

// List ...
func (s *Service) List(
	ctx context.Context, actor auth.Actor, membershipID int64, completed sql.NullBool,
) ([]model.NextStep, error) {
	ctx = s.provider.Readonly(ctx)

	_, err := s.guard.MembershipForRead(ctx, actor, membershipID)
	if err != nil {
		return nil, err
	}
	return s.nextStepRepo.ListByMembership(ctx, membershipID, completed)
}

// Update edits the step and keeps the completion timestamp symmetric
// with the flag: completing stamps it, un-completing clears it.
func (s *Service) Update(
	ctx context.Context, actor auth.Actor, stepID int64, input UpdateInput,
) (model.NextStep, error) {
	if input.Title == "" {
		return model.NextStep{}, apperror.New(apperror.CodeValidation, "title is required")
	}

	var step model.NextStep
	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		var err error
		step, err = s.getGuarded(ctx, actor, stepID, true)
		if err != nil {
			return err
		}

		if input.Completed && !step.Completed {
			step.CompletedAt = sql.NullTime{Valid: true, Time: s.now()}
		} else if !input.Completed {
			step.CompletedAt = sql.NullTime{}
		}
		step.Completed = input.Completed
		step.Title = input.Title
		step.Notes = input.Notes
		step.DueDate = input.DueDate

		return s.nextStepRepo.Update(ctx, step)
	})
	if err != nil {
		return model.NextStep{}, err
	}
	return step, nil
}

// Delete ...
func (s *Service) Delete(ctx context.Context, actor auth.Actor, stepID int64) error {
	return s.provider.Transact(ctx, func(ctx context.Context) error {
		_, err := s.getGuarded(ctx, actor, stepID, true)
		if err != nil {
			return err
		}
		return s.nextStepRepo.Delete(ctx, stepID)
	})
}
