package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harvestcrm/journal/model"
)

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCommitment(t *testing.T) {
	r := newRepoTest()
	r.seedJournal(5, 7, "Spring Campaign")
	r.seedContact(31, 7, "Lan")
	membershipID := r.seedActiveMembership(t, 5, 31)

	repo := NewCommitment()
	decidedAt := newTime("2024-03-05T09:00:00Z")

	//---------------------------------------
	// Absent
	//---------------------------------------
	readCtx := r.provider.Readonly(newContext())
	_, ok, err := repo.GetByMembership(readCtx, membershipID)
	assert.Equal(t, nil, err)
	assert.Equal(t, false, ok)

	//---------------------------------------
	// Insert
	//---------------------------------------
	var commitmentID int64
	r.transact(t, func(ctx context.Context) error {
		var err error
		commitmentID, err = repo.Insert(ctx, model.Commitment{
			MembershipID: membershipID,
			Status:       model.CommitmentConsidering,
			Amount:       amount("100"),
			Cadence:      model.CadenceMonthly,
			Notes:        "spring ask",
			DecidedAt:    decidedAt,
		})
		return err
	})

	current, ok, err := repo.GetByMembership(readCtx, membershipID)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ok)
	assert.Equal(t, commitmentID, current.ID)
	assert.Equal(t, model.CommitmentConsidering, current.Status)
	assert.Equal(t, true, current.Amount.Equal(amount("100")))
	assert.Equal(t, decidedAt, current.DecidedAt)

	//---------------------------------------
	// One commitment per membership
	//---------------------------------------
	err = r.provider.Transact(newContext(), func(ctx context.Context) error {
		_, err := repo.Insert(ctx, model.Commitment{
			MembershipID: membershipID,
			Status:       model.CommitmentUndecided,
			Amount:       amount("0"),
			Cadence:      model.CadenceOther,
			DecidedAt:    decidedAt,
		})
		return err
	})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	//---------------------------------------
	// Snapshot then overwrite
	//---------------------------------------
	newDecidedAt := newTime("2024-04-01T09:00:00Z")
	r.transact(t, func(ctx context.Context) error {
		locked, ok, err := repo.GetByMembershipForUpdate(ctx, membershipID)
		assert.Equal(t, nil, err)
		assert.Equal(t, true, ok)

		_, err = repo.InsertHistory(ctx, model.CommitmentHistory{
			CommitmentID: locked.ID,
			Status:       locked.Status,
			Amount:       locked.Amount,
			Cadence:      locked.Cadence,
			Notes:        locked.Notes,
			DecidedAt:    locked.DecidedAt,
			ChangedBy:    7,
			Reason:       sql.NullString{Valid: true, String: "donor confirmed"},
		})
		if err != nil {
			return err
		}

		locked.Status = model.CommitmentCommitted
		locked.Amount = amount("150")
		locked.DecidedAt = newDecidedAt
		return repo.Update(ctx, locked)
	})

	current, _, err = repo.GetByMembership(readCtx, membershipID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.CommitmentCommitted, current.Status)
	assert.Equal(t, true, current.Amount.Equal(amount("150")))
	assert.Equal(t, newDecidedAt, current.DecidedAt)

	//---------------------------------------
	// History holds the pre-change values
	//---------------------------------------
	entries, err := repo.ListHistory(readCtx, commitmentID, 10, 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, model.CommitmentConsidering, entries[0].Status)
	assert.Equal(t, true, entries[0].Amount.Equal(amount("100")))
	assert.Equal(t, "spring ask", entries[0].Notes)
	assert.Equal(t, int64(7), entries[0].ChangedBy)
	assert.Equal(t, sql.NullString{Valid: true, String: "donor confirmed"}, entries[0].Reason)

	total, err := repo.CountHistory(readCtx, commitmentID)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), total)
}

func TestNextStepRepo(t *testing.T) {
	r := newRepoTest()
	r.seedJournal(5, 7, "Spring Campaign")
	r.seedContact(31, 7, "Lan")
	membershipID := r.seedActiveMembership(t, 5, 31)

	repo := NewNextStep()

	//---------------------------------------
	// Ordinals append at the end
	//---------------------------------------
	r.transact(t, func(ctx context.Context) error {
		ordinal, err := repo.NextOrdinal(ctx, membershipID)
		assert.Equal(t, nil, err)
		assert.Equal(t, int64(1), ordinal)

		_, err = repo.Insert(ctx, model.NextStep{
			MembershipID: membershipID,
			Title:        "send proposal",
			Ordinal:      ordinal,
		})
		return err
	})

	var secondID int64
	r.transact(t, func(ctx context.Context) error {
		ordinal, err := repo.NextOrdinal(ctx, membershipID)
		assert.Equal(t, nil, err)
		assert.Equal(t, int64(2), ordinal)

		secondID, err = repo.Insert(ctx, model.NextStep{
			MembershipID: membershipID,
			Title:        "schedule follow-up",
			Ordinal:      ordinal,
			DueDate:      sql.NullTime{Valid: true, Time: newTime("2024-04-15T00:00:00Z")},
		})
		return err
	})

	//---------------------------------------
	// List and filter by completion
	//---------------------------------------
	readCtx := r.provider.Readonly(newContext())
	steps, err := repo.ListByMembership(readCtx, membershipID, sql.NullBool{})
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(steps))
	assert.Equal(t, "send proposal", steps[0].Title)

	r.transact(t, func(ctx context.Context) error {
		step, ok, err := repo.Get(ctx, secondID)
		assert.Equal(t, nil, err)
		assert.Equal(t, true, ok)

		step.Completed = true
		step.CompletedAt = sql.NullTime{Valid: true, Time: newTime("2024-04-10T09:00:00Z")}
		return repo.Update(ctx, step)
	})

	steps, err = repo.ListByMembership(readCtx, membershipID,
		sql.NullBool{Valid: true, Bool: false})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(steps))
	assert.Equal(t, "send proposal", steps[0].Title)

	//---------------------------------------
	// Delete is hard
	//---------------------------------------
	r.transact(t, func(ctx context.Context) error {
		return repo.Delete(ctx, secondID)
	})

	steps, err = repo.ListByMembership(readCtx, membershipID, sql.NullBool{})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(steps))
}
