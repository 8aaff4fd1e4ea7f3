package commitment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harvestcrm/journal/model"
	"github.com/harvestcrm/journal/pkg/apperror"
	"github.com/harvestcrm/journal/pkg/auth"
	"github.com/harvestcrm/journal/repository"
)

func newContext() context.Context {
	return context.Background()
}

func newTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var staff = auth.Actor{ID: 7, Role: auth.RoleStaff}

type serviceTest struct {
	journalRepo    *repository.JournalMock
	membershipRepo *repository.MembershipMock
	commitmentRepo *repository.CommitmentMock

	service *Service

	insertedHistory []model.CommitmentHistory
	updated         []model.Commitment
}

func newServiceTest() *serviceTest {
	s := &serviceTest{
		journalRepo:    &repository.JournalMock{},
		membershipRepo: &repository.MembershipMock{},
		commitmentRepo: &repository.CommitmentMock{},
	}
	s.service = NewService(
		&repository.ProviderMock{},
		s.journalRepo, s.membershipRepo, s.commitmentRepo,
	)
	s.service.now = func() time.Time {
		return newTime("2024-03-10T09:00:00Z")
	}

	s.journalRepo.GetFunc = func(ctx context.Context, journalID int64) (model.Journal, bool, error) {
		return model.Journal{ID: journalID, OwnerID: staff.ID}, true, nil
	}
	s.membershipRepo.GetFunc = func(ctx context.Context, membershipID int64) (model.Membership, bool, error) {
		return model.Membership{ID: membershipID, JournalID: 5, IsActive: true}, true, nil
	}
	s.commitmentRepo.InsertHistoryFunc = func(ctx context.Context, history model.CommitmentHistory) (int64, error) {
		s.insertedHistory = append(s.insertedHistory, history)
		return int64(len(s.insertedHistory)), nil
	}
	s.commitmentRepo.UpdateFunc = func(ctx context.Context, commitment model.Commitment) error {
		s.updated = append(s.updated, commitment)
		return nil
	}
	return s
}

func (s *serviceTest) stubCurrent(current model.Commitment, found bool) {
	s.commitmentRepo.GetByMembershipForUpdateFunc = func(
		ctx context.Context, membershipID int64,
	) (model.Commitment, bool, error) {
		return current, found, nil
	}
}

func TestUpsert_Validation(t *testing.T) {
	s := newServiceTest()

	table := []struct {
		name  string
		input UpsertInput
	}{
		{
			name: "bad status",
			input: UpsertInput{
				MembershipID: 88, Status: "done", Cadence: model.CadenceMonthly,
			},
		},
		{
			name: "bad cadence",
			input: UpsertInput{
				MembershipID: 88, Status: model.CommitmentConsidering, Cadence: "weekly",
			},
		},
		{
			name: "negative amount",
			input: UpsertInput{
				MembershipID: 88, Status: model.CommitmentConsidering,
				Cadence: model.CadenceMonthly, Amount: amount("-5"),
			},
		},
		{
			name: "committed without amount",
			input: UpsertInput{
				MembershipID: 88, Status: model.CommitmentCommitted,
				Cadence: model.CadenceMonthly, Amount: amount("0"),
			},
		},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			_, err := s.service.Upsert(newContext(), staff, e.input)
			assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
		})
	}
}

func TestUpsert_CreateWritesNoHistory(t *testing.T) {
	s := newServiceTest()
	s.stubCurrent(model.Commitment{}, false)
	s.commitmentRepo.InsertFunc = func(ctx context.Context, commitment model.Commitment) (int64, error) {
		return 41, nil
	}

	result, err := s.service.Upsert(newContext(), staff, UpsertInput{
		MembershipID: 88,
		Status:       model.CommitmentConsidering,
		Amount:       amount("100"),
		Cadence:      model.CadenceMonthly,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, true, result.Created)
	assert.Equal(t, int64(41), result.Commitment.ID)
	assert.Equal(t, 0, len(s.insertedHistory))
}

func TestUpsert_NoOpOnIdenticalValues(t *testing.T) {
	s := newServiceTest()
	s.stubCurrent(model.Commitment{
		ID:           41,
		MembershipID: 88,
		Status:       model.CommitmentConsidering,
		Amount:       amount("100.00"),
		Cadence:      model.CadenceMonthly,
		Notes:        "spring ask",
	}, true)

	result, err := s.service.Upsert(newContext(), staff, UpsertInput{
		MembershipID: 88,
		Status:       model.CommitmentConsidering,
		Amount:       amount("100"),
		Cadence:      model.CadenceMonthly,
		Notes:        "spring ask",
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, false, result.Created)
	assert.Equal(t, 0, len(s.insertedHistory))
	assert.Equal(t, 0, len(s.updated))
}

func TestUpsert_SnapshotThenOverwrite(t *testing.T) {
	s := newServiceTest()
	decided := newTime("2024-01-05T10:00:00Z")
	s.stubCurrent(model.Commitment{
		ID:           41,
		MembershipID: 88,
		Status:       model.CommitmentConsidering,
		Amount:       amount("100"),
		Cadence:      model.CadenceMonthly,
		Notes:        "spring ask",
		DecidedAt:    decided,
	}, true)

	result, err := s.service.Upsert(newContext(), staff, UpsertInput{
		MembershipID: 88,
		Status:       model.CommitmentCommitted,
		Amount:       amount("150"),
		Cadence:      model.CadenceMonthly,
		Notes:        "confirmed by phone",
		Reason:       sql.NullString{Valid: true, String: "donor called back"},
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, false, result.Created)

	// history holds the pre-change values, not the new ones
	assert.Equal(t, 1, len(s.insertedHistory))
	snapshot := s.insertedHistory[0]
	assert.Equal(t, int64(41), snapshot.CommitmentID)
	assert.Equal(t, model.CommitmentConsidering, snapshot.Status)
	assert.Equal(t, true, snapshot.Amount.Equal(amount("100")))
	assert.Equal(t, "spring ask", snapshot.Notes)
	assert.Equal(t, decided, snapshot.DecidedAt)
	assert.Equal(t, staff.ID, snapshot.ChangedBy)
	assert.Equal(t, sql.NullString{Valid: true, String: "donor called back"}, snapshot.Reason)

	assert.Equal(t, 1, len(s.updated))
	assert.Equal(t, model.CommitmentCommitted, s.updated[0].Status)
	assert.Equal(t, true, s.updated[0].Amount.Equal(amount("150")))
	assert.Equal(t, newTime("2024-03-10T09:00:00Z"), s.updated[0].DecidedAt)
}

func TestUpsert_ConcurrentCreate(t *testing.T) {
	s := newServiceTest()
	s.stubCurrent(model.Commitment{}, false)
	s.commitmentRepo.InsertFunc = func(ctx context.Context, commitment model.Commitment) (int64, error) {
		return 0, repository.ErrDuplicateKey
	}

	_, err := s.service.Upsert(newContext(), staff, UpsertInput{
		MembershipID: 88,
		Status:       model.CommitmentConsidering,
		Amount:       amount("100"),
		Cadence:      model.CadenceMonthly,
	})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
}

func TestUpsert_LockConflict(t *testing.T) {
	s := newServiceTest()
	s.commitmentRepo.GetByMembershipForUpdateFunc = func(
		ctx context.Context, membershipID int64,
	) (model.Commitment, bool, error) {
		return model.Commitment{}, false, repository.ErrLockConflict
	}

	_, err := s.service.Upsert(newContext(), staff, UpsertInput{
		MembershipID: 88,
		Status:       model.CommitmentConsidering,
		Amount:       amount("100"),
		Cadence:      model.CadenceMonthly,
	})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
}

func TestUpsert_InactiveMembership(t *testing.T) {
	s := newServiceTest()
	s.membershipRepo.GetFunc = func(ctx context.Context, membershipID int64) (model.Membership, bool, error) {
		return model.Membership{ID: membershipID, JournalID: 5, IsActive: false}, true, nil
	}

	_, err := s.service.Upsert(newContext(), staff, UpsertInput{
		MembershipID: 88,
		Status:       model.CommitmentConsidering,
		Amount:       amount("100"),
		Cadence:      model.CadenceMonthly,
	})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestHistory_NoCommitment(t *testing.T) {
	s := newServiceTest()
	s.commitmentRepo.GetByMembershipFunc = func(
		ctx context.Context, membershipID int64,
	) (model.Commitment, bool, error) {
		return model.Commitment{}, false, nil
	}

	result, err := s.service.History(newContext(), staff, HistoryInput{MembershipID: 88})
	assert.Equal(t, nil, err)
	assert.Equal(t, HistoryResult{}, result)
}

func TestHistory_Paging(t *testing.T) {
	s := newServiceTest()
	s.commitmentRepo.GetByMembershipFunc = func(
		ctx context.Context, membershipID int64,
	) (model.Commitment, bool, error) {
		return model.Commitment{ID: 41, MembershipID: membershipID}, true, nil
	}

	var gotLimit, gotOffset int64
	s.commitmentRepo.ListHistoryFunc = func(
		ctx context.Context, commitmentID int64, limit, offset int64,
	) ([]model.CommitmentHistory, error) {
		gotLimit = limit
		gotOffset = offset
		return []model.CommitmentHistory{{ID: 1, CommitmentID: commitmentID}}, nil
	}
	s.commitmentRepo.CountHistoryFunc = func(ctx context.Context, commitmentID int64) (int64, error) {
		return 60, nil
	}

	result, err := s.service.History(newContext(), staff, HistoryInput{
		MembershipID: 88,
		Page:         2,
		PageSize:     500,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(100), gotLimit)
	assert.Equal(t, int64(100), gotOffset)
	assert.Equal(t, int64(60), result.Total)
	assert.Equal(t, 1, len(result.Entries))
}
