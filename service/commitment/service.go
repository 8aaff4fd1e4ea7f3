package commitment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvestcrm/journal/model"
	"github.com/harvestcrm/journal/pkg/apperror"
	"github.com/harvestcrm/journal/pkg/auth"
	"github.com/harvestcrm/journal/pkg/otellib"
	"github.com/harvestcrm/journal/repository"
	"github.com/harvestcrm/journal/service/guard"
)

const (
	defaultHistoryPageSize = 25
	maxHistoryPageSize     = 100
)

// IService ...
type IService interface {
	Get(ctx context.Context, actor auth.Actor, membershipID int64) (model.Commitment, bool, error)
	Upsert(ctx context.Context, actor auth.Actor, input UpsertInput) (UpsertResult, error)
	History(ctx context.Context, actor auth.Actor, input HistoryInput) (HistoryResult, error)
}

// UpsertInput ...
type UpsertInput struct {
	MembershipID int64
	Status       model.CommitmentStatus
	Amount       decimal.Decimal
	Cadence      model.Cadence
	Notes        string
	Reason       sql.NullString
}

// UpsertResult ...
type UpsertResult struct {
	Commitment model.Commitment

	// Created is true when no prior commitment existed; no history row
	// is written in that case since there is nothing to snapshot.
	Created bool
}

// HistoryInput ...
type HistoryInput struct {
	MembershipID int64
	Page         int64
	PageSize     int64
}

// HistoryResult ...
type HistoryResult struct {
	Entries []model.CommitmentHistory
	Total   int64
}

// Service tracks the live commitment per membership plus its audit
// trail. The one write path enforces snapshot-before-overwrite; nothing
// else may touch the history table.
type Service struct {
	provider       repository.Provider
	commitmentRepo repository.Commitment
	guard          *guard.Guard

	now func() time.Time
}

// NewService ...
func NewService(
	provider repository.Provider,
	journalRepo repository.Journal,
	membershipRepo repository.Membership,
	commitmentRepo repository.Commitment,
) *Service {
	return &Service{
		provider:       provider,
		commitmentRepo: commitmentRepo,
		guard:          guard.New(journalRepo, membershipRepo),
		now:            time.Now,
	}
}

func validateInput(input UpsertInput) error {
	if !input.Status.Valid() {
		return apperror.New(apperror.CodeValidation, "invalid commitment status")
	}
	if !input.Cadence.Valid() {
		return apperror.New(apperror.CodeValidation, "invalid cadence")
	}
	if input.Amount.Sign() < 0 {
		return apperror.New(apperror.CodeValidation, "amount must not be negative")
	}
	if input.Status == model.CommitmentCommitted && input.Amount.Sign() <= 0 {
		return apperror.New(apperror.CodeValidation, "a committed pledge requires a positive amount")
	}
	return nil
}

// Get ...
func (s *Service) Get(ctx context.Context, actor auth.Actor, membershipID int64) (model.Commitment, bool, error) {
	ctx = s.provider.Readonly(ctx)

	_, err := s.guard.MembershipForRead(ctx, actor, membershipID)
	if err != nil {
		return model.Commitment{}, false, err
	}
	return s.commitmentRepo.GetByMembership(ctx, membershipID)
}

// Upsert writes the commitment state for a membership. When a current
// row exists its pre-update values are snapshotted into history first,
// inside the same transaction, so current never shows a value history
// did not capture. Identical values are a no-op: history records one
// row per actual change.
func (s *Service) Upsert(ctx context.Context, actor auth.Actor, input UpsertInput) (UpsertResult, error) {
	err := validateInput(input)
	if err != nil {
		return UpsertResult{}, err
	}

	var result UpsertResult

	err = s.provider.Transact(ctx, func(ctx context.Context) error {
		membership, err := s.guard.MembershipForWrite(ctx, actor, input.MembershipID)
		if err != nil {
			return err
		}
		if !membership.IsActive {
			return apperror.New(apperror.CodeNotFound, "membership not found")
		}

		now := s.now()

		current, ok, err := s.commitmentRepo.GetByMembershipForUpdate(ctx, input.MembershipID)
		if err != nil {
			return err
		}

		if !ok {
			commitment := model.Commitment{
				MembershipID: input.MembershipID,
				Status:       input.Status,
				Amount:       input.Amount,
				Cadence:      input.Cadence,
				Notes:        input.Notes,
				DecidedAt:    now,
			}
			id, err := s.commitmentRepo.Insert(ctx, commitment)
			if err != nil {
				if errors.Is(err, repository.ErrDuplicateKey) {
					return apperror.Wrap(apperror.CodeConflict,
						"commitment was created concurrently, retry", err)
				}
				return err
			}
			commitment.ID = id
			result = UpsertResult{Commitment: commitment, Created: true}
			return nil
		}

		if current.Equal(input.Status, input.Amount, input.Cadence, input.Notes) {
			result = UpsertResult{Commitment: current}
			return nil
		}

		// snapshot the pre-update values before overwriting
		_, err = s.commitmentRepo.InsertHistory(ctx, model.CommitmentHistory{
			CommitmentID: current.ID,
			Status:       current.Status,
			Amount:       current.Amount,
			Cadence:      current.Cadence,
			Notes:        current.Notes,
			DecidedAt:    current.DecidedAt,
			ChangedBy:    actor.ID,
			Reason:       input.Reason,
		})
		if err != nil {
			return err
		}

		current.Status = input.Status
		current.Amount = input.Amount
		current.Cadence = input.Cadence
		current.Notes = input.Notes
		current.DecidedAt = now

		err = s.commitmentRepo.Update(ctx, current)
		if err != nil {
			return err
		}
		result = UpsertResult{Commitment: current}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrLockConflict) {
			return UpsertResult{}, apperror.Wrap(apperror.CodeConflict,
				"commitment was updated concurrently, retry", err)
		}
		return UpsertResult{}, err
	}

	otellib.Extract(ctx).Info("commitment updated",
		zap.Int64("membership_id", input.MembershipID),
		zap.String("status", string(result.Commitment.Status)),
		zap.Bool("created", result.Created),
	)
	return result, nil
}

// History returns one page of the audit trail, newest first. Page size
// is bounded: a multi-year donor relationship can accumulate a lot of
// revisions.
func (s *Service) History(ctx context.Context, actor auth.Actor, input HistoryInput) (HistoryResult, error) {
	ctx = s.provider.Readonly(ctx)

	_, err := s.guard.MembershipForRead(ctx, actor, input.MembershipID)
	if err != nil {
		return HistoryResult{}, err
	}

	current, ok, err := s.commitmentRepo.GetByMembership(ctx, input.MembershipID)
	if err != nil {
		return HistoryResult{}, err
	}
	if !ok {
		return HistoryResult{}, nil
	}

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = defaultHistoryPageSize
	}
	if pageSize > maxHistoryPageSize {
		pageSize = maxHistoryPageSize
	}
	page := input.Page
	if page <= 0 {
		page = 1
	}

	entries, err := s.commitmentRepo.ListHistory(ctx, current.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return HistoryResult{}, err
	}
	total, err := s.commitmentRepo.CountHistory(ctx, current.ID)
	if err != nil {
		return HistoryResult{}, err
	}
	return HistoryResult{Entries: entries, Total: total}, nil
}
