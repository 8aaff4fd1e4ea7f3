package guard

import (
	"context"

	"github.com/harvestcrm/journal/model"
	"github.com/harvestcrm/journal/pkg/apperror"
	"github.com/harvestcrm/journal/pkg/auth"
	"github.com/harvestcrm/journal/repository"
)

// Guard resolves a resource and applies the single ownership predicate
// every component shares. Reads by non-owners come back not-found so
// existence never leaks; writes against a visible-but-unowned resource
// come back as ownership failures.
type Guard struct {
	journalRepo    repository.Journal
	membershipRepo repository.Membership
}

// New ...
func New(journalRepo repository.Journal, membershipRepo repository.Membership) *Guard {
	return &Guard{
		journalRepo:    journalRepo,
		membershipRepo: membershipRepo,
	}
}

// JournalForRead ...
func (g *Guard) JournalForRead(ctx context.Context, actor auth.Actor, journalID int64) (model.Journal, error) {
	journal, ok, err := g.journalRepo.Get(ctx, journalID)
	if err != nil {
		return model.Journal{}, err
	}
	if !ok || !actor.CanAccess(journal.OwnerID) {
		return model.Journal{}, apperror.New(apperror.CodeNotFound, "journal not found")
	}
	return journal, nil
}

// JournalForWrite ...
func (g *Guard) JournalForWrite(ctx context.Context, actor auth.Actor, journalID int64) (model.Journal, error) {
	journal, ok, err := g.journalRepo.Get(ctx, journalID)
	if err != nil {
		return model.Journal{}, err
	}
	if !ok {
		return model.Journal{}, apperror.New(apperror.CodeNotFound, "journal not found")
	}
	if !actor.CanAccess(journal.OwnerID) {
		return model.Journal{}, apperror.New(apperror.CodeOwnership,
			"you do not have permission to modify this journal")
	}
	return journal, nil
}

// MembershipForRead ...
func (g *Guard) MembershipForRead(ctx context.Context, actor auth.Actor, membershipID int64) (model.Membership, error) {
	membership, ok, err := g.membershipRepo.Get(ctx, membershipID)
	if err != nil {
		return model.Membership{}, err
	}
	if !ok {
		return model.Membership{}, apperror.New(apperror.CodeNotFound, "membership not found")
	}
	journal, ok, err := g.journalRepo.Get(ctx, membership.JournalID)
	if err != nil {
		return model.Membership{}, err
	}
	if !ok || !actor.CanAccess(journal.OwnerID) {
		return model.Membership{}, apperror.New(apperror.CodeNotFound, "membership not found")
	}
	return membership, nil
}

// MembershipForWrite ...
func (g *Guard) MembershipForWrite(ctx context.Context, actor auth.Actor, membershipID int64) (model.Membership, error) {
	membership, ok, err := g.membershipRepo.Get(ctx, membershipID)
	if err != nil {
		return model.Membership{}, err
	}
	if !ok {
		return model.Membership{}, apperror.New(apperror.CodeNotFound, "membership not found")
	}
	journal, ok, err := g.journalRepo.Get(ctx, membership.JournalID)
	if err != nil {
		return model.Membership{}, err
	}
	if !ok {
		return model.Membership{}, apperror.New(apperror.CodeNotFound, "membership not found")
	}
	if !actor.CanAccess(journal.OwnerID) {
		return model.Membership{}, apperror.New(apperror.CodeOwnership,
			"you do not have permission to modify this membership")
	}
	return membership, nil
}
