package journal

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
	defaultPageSize = 50
	maxPageSize     = 200
)

// IService ...
type IService interface {
	CreateJournal(ctx context.Context, actor auth.Actor, input CreateJournalInput) (model.Journal, error)
	GetJournal(ctx context.Context, actor auth.Actor, journalID int64) (model.Journal, error)
	ListJournals(ctx context.Context, actor auth.Actor, input ListJournalsInput) ([]model.Journal, error)
	UpdateJournal(ctx context.Context, actor auth.Actor, journalID int64, input UpdateJournalInput) (model.Journal, error)
	ArchiveJournal(ctx context.Context, actor auth.Actor, journalID int64) error
	UnarchiveJournal(ctx context.Context, actor auth.Actor, journalID int64) error

	AddMembership(ctx context.Context, actor auth.Actor, input AddMembershipInput) (model.Membership, error)
	RemoveMembership(ctx context.Context, actor auth.Actor, membershipID int64) error
	ListMemberships(ctx context.Context, actor auth.Actor, input ListMembershipsInput) ([]model.MembershipRow, error)
}

// CreateJournalInput ...
type CreateJournalInput struct {
	Name       string
	GoalAmount decimal.NullDecimal
	Deadline   sql.NullTime
}

// UpdateJournalInput ...
type UpdateJournalInput struct {
	Name       string
	GoalAmount decimal.NullDecimal
	Deadline   sql.NullTime
}

// ListJournalsInput ...
type ListJournalsInput struct {
	IncludeArchived bool
	Search          string
	Page            int64
	PageSize        int64
}

// AddMembershipInput ...
type AddMembershipInput struct {
	JournalID int64
	ContactID int64
	Note      sql.NullString
}

// ListMembershipsInput ...
type ListMembershipsInput struct {
	JournalID       sql.NullInt64
	Search          string
	ContactStatus   string
	IncludeArchived bool
	Page            int64
	PageSize        int64
}

// Service manages journals and the membership ledger.
type Service struct {
	provider       repository.Provider
	journalRepo    repository.Journal
	contactRepo    repository.Contact
	membershipRepo repository.Membership
	eventRepo      repository.StageEvent
	guard          *guard.Guard

	now func() time.Time
}

// NewService ...
func NewService(
	provider repository.Provider,
	journalRepo repository.Journal,
	contactRepo repository.Contact,
	membershipRepo repository.Membership,
	eventRepo repository.StageEvent,
) *Service {
	return &Service{
		provider:       provider,
		journalRepo:    journalRepo,
		contactRepo:    contactRepo,
		membershipRepo: membershipRepo,
		eventRepo:      eventRepo,
		guard:          guard.New(journalRepo, membershipRepo),
		now:            time.Now,
	}
}

func pageToLimitOffset(page, pageSize int64) (int64, int64) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

func ownerScope(actor auth.Actor) sql.NullInt64 {
	if actor.IsAdmin() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Valid: true, Int64: actor.ID}
}

// CreateJournal ...
func (s *Service) CreateJournal(
	ctx context.Context, actor auth.Actor, input CreateJournalInput,
) (model.Journal, error) {
	if input.Name == "" {
		return model.Journal{}, apperror.New(apperror.CodeValidation, "journal name is required")
	}
	if input.GoalAmount.Valid && input.GoalAmount.Decimal.Sign() <= 0 {
		return model.Journal{}, apperror.New(apperror.CodeValidation, "goal amount must be positive")
	}

	journal := model.Journal{
		OwnerID:    actor.ID,
		Name:       input.Name,
		GoalAmount: input.GoalAmount,
		Deadline:   input.Deadline,
	}

	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		id, err := s.journalRepo.Insert(ctx, journal)
		if err != nil {
			return err
		}
		journal.ID = id
		return nil
	})
	if err != nil {
		return model.Journal{}, err
	}

	otellib.Extract(ctx).Info("journal created",
		zap.Int64("journal_id", journal.ID),
		zap.Int64("owner_id", actor.ID),
	)
	return journal, nil
}

// GetJournal ...
func (s *Service) GetJournal(ctx context.Context, actor auth.Actor, journalID int64) (model.Journal, error) {
	ctx = s.provider.Readonly(ctx)
	return s.guard.JournalForRead(ctx, actor, journalID)
}

// ListJournals ...
func (s *Service) ListJournals(
	ctx context.Context, actor auth.Actor, input ListJournalsInput,
) ([]model.Journal, error) {
	ctx = s.provider.Readonly(ctx)
	limit, offset := pageToLimitOffset(input.Page, input.PageSize)
	return s.journalRepo.List(ctx, repository.ListJournalsInput{
		OwnerID:         ownerScope(actor),
		IncludeArchived: input.IncludeArchived,
		Search:          input.Search,
		Limit:           limit,
		Offset:          offset,
	})
}

// UpdateJournal ...
func (s *Service) UpdateJournal(
	ctx context.Context, actor auth.Actor, journalID int64, input UpdateJournalInput,
) (model.Journal, error) {
	if input.Name == "" {
		return model.Journal{}, apperror.New(apperror.CodeValidation, "journal name is required")
	}
	if input.GoalAmount.Valid && input.GoalAmount.Decimal.Sign() <= 0 {
		return model.Journal{}, apperror.New(apperror.CodeValidation, "goal amount must be positive")
	}

	var journal model.Journal
	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		var err error
		journal, err = s.guard.JournalForWrite(ctx, actor, journalID)
		if err != nil {
			return err
		}

		journal.Name = input.Name
		journal.GoalAmount = input.GoalAmount
		journal.Deadline = input.Deadline
		return s.journalRepo.Update(ctx, journal)
	})
	if err != nil {
		return model.Journal{}, err
	}
	return journal, nil
}

// ArchiveJournal soft-hides the journal; nothing is deleted.
func (s *Service) ArchiveJournal(ctx context.Context, actor auth.Actor, journalID int64) error {
	return s.provider.Transact(ctx, func(ctx context.Context) error {
		_, err := s.guard.JournalForWrite(ctx, actor, journalID)
		if err != nil {
			return err
		}
		return s.journalRepo.SetArchived(ctx, journalID, true, s.now())
	})
}

// UnarchiveJournal ...
func (s *Service) UnarchiveJournal(ctx context.Context, actor auth.Actor, journalID int64) error {
	return s.provider.Transact(ctx, func(ctx context.Context) error {
		_, err := s.guard.JournalForWrite(ctx, actor, journalID)
		if err != nil {
			return err
		}
		return s.journalRepo.SetArchived(ctx, journalID, false, s.now())
	})
}

// AddMembership links a contact into a journal. The actor must own both
// sides. An inactive pair is resurrected in place so its event history
// stays attached; a live pair is a duplicate.
func (s *Service) AddMembership(
	ctx context.Context, actor auth.Actor, input AddMembershipInput,
) (model.Membership, error) {
	var membership model.Membership

	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		_, err := s.guard.JournalForWrite(ctx, actor, input.JournalID)
		if err != nil {
			return err
		}

		contact, ok, err := s.contactRepo.Get(ctx, input.ContactID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.New(apperror.CodeNotFound, "contact not found")
		}
		if !actor.CanAccess(contact.OwnerID) {
			return apperror.New(apperror.CodeOwnership,
				"you do not have permission to use this contact")
		}

		now := s.now()

		existing, ok, err := s.membershipRepo.FindPair(ctx, input.JournalID, input.ContactID)
		if err != nil {
			return err
		}
		if ok {
			if existing.IsActive {
				return apperror.New(apperror.CodeDuplicateMembership,
					"contact is already in this journal")
			}
			err = s.membershipRepo.Reactivate(ctx, existing.ID, actor.ID, now)
			if err != nil {
				return err
			}
			existing.AddedBy = actor.ID
			existing.AddedAt = now
			existing.IsActive = true
			existing.Note = sql.NullString{}
			membership = existing
			return nil
		}

		membership = model.Membership{
			JournalID: input.JournalID,
			ContactID: input.ContactID,
			AddedBy:   actor.ID,
			AddedAt:   now,
			IsActive:  true,
			Note:      input.Note,
		}
		id, err := s.membershipRepo.Insert(ctx, membership)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return apperror.Wrap(apperror.CodeDuplicateMembership,
					"contact is already in this journal", err)
			}
			return err
		}
		membership.ID = id

		return s.eventRepo.InsertProjection(ctx, model.StageProjection{
			MembershipID:   id,
			CurrentStage:   model.StageContact,
			EnteredAt:      now,
			LastActivityAt: now,
			EventCount:     0,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrLockConflict) {
			return model.Membership{}, apperror.Wrap(apperror.CodeConflict,
				"membership was modified concurrently, retry", err)
		}
		return model.Membership{}, err
	}
	return membership, nil
}

// RemoveMembership soft-deactivates the row; stage events, commitment
// history and next steps all stay in place.
func (s *Service) RemoveMembership(ctx context.Context, actor auth.Actor, membershipID int64) error {
	return s.provider.Transact(ctx, func(ctx context.Context) error {
		membership, err := s.guard.MembershipForWrite(ctx, actor, membershipID)
		if err != nil {
			return err
		}
		if !membership.IsActive {
			return apperror.New(apperror.CodeNotFound, "membership not found")
		}
		return s.membershipRepo.Deactivate(ctx, membershipID)
	})
}

// ListMemberships ...
func (s *Service) ListMemberships(
	ctx context.Context, actor auth.Actor, input ListMembershipsInput,
) ([]model.MembershipRow, error) {
	ctx = s.provider.Readonly(ctx)
	limit, offset := pageToLimitOffset(input.Page, input.PageSize)
	return s.membershipRepo.List(ctx, repository.ListMembershipsInput{
		OwnerID:         ownerScope(actor),
		JournalID:       input.JournalID,
		Search:          input.Search,
		ContactStatus:   input.ContactStatus,
		IncludeArchived: input.IncludeArchived,
		Limit:           limit,
		Offset:          offset,
	})
}
