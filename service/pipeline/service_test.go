package pipeline

import (
	"context"
	"database/sql"
	"testing"
	"time"

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

var staff = auth.Actor{ID: 7, Role: auth.RoleStaff}

type serviceTest struct {
	journalRepo    *repository.JournalMock
	membershipRepo *repository.MembershipMock
	eventRepo      *repository.StageEventMock

	service *Service

	insertedEvent     model.StageEvent
	updatedProjection model.StageProjection
}

func newServiceTest(currentStage model.Stage) *serviceTest {
	s := &serviceTest{
		journalRepo:    &repository.JournalMock{},
		membershipRepo: &repository.MembershipMock{},
		eventRepo:      &repository.StageEventMock{},
	}
	s.service = NewService(
		&repository.ProviderMock{},
		s.journalRepo, s.membershipRepo, s.eventRepo,
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

	start := newTime("2024-03-01T09:00:00Z")
	s.eventRepo.GetProjectionForUpdateFunc = func(ctx context.Context, membershipID int64) (model.StageProjection, bool, error) {
		return model.StageProjection{
			MembershipID:   membershipID,
			CurrentStage:   currentStage,
			EnteredAt:      start,
			LastActivityAt: start,
			EventCount:     2,
		}, true, nil
	}
	s.eventRepo.InsertFunc = func(ctx context.Context, event model.StageEvent) (int64, error) {
		s.insertedEvent = event
		return 301, nil
	}
	s.eventRepo.UpdateProjectionFunc = func(ctx context.Context, projection model.StageProjection) error {
		s.updatedProjection = projection
		return nil
	}
	return s
}

func TestAppendStageEvent_Sequential(t *testing.T) {
	s := newServiceTest(model.StageContact)

	result, err := s.service.AppendStageEvent(newContext(), staff, AppendInput{
		MembershipID: 88,
		Stage:        model.StageMeet,
		Kind:         model.EventMeetingCompleted,
		Notes:        "coffee at the office",
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(301), result.Event.ID)
	assert.Equal(t, model.TransitionSequential, result.Transition.Kind)
	assert.Equal(t, false, result.Transition.Warning())
	assert.Nil(t, result.SkippedStages)

	assert.Equal(t, model.TransitionSequential, s.insertedEvent.Transition)
	assert.Equal(t, staff.ID, s.insertedEvent.ActorID)

	assert.Equal(t, model.StageMeet, s.updatedProjection.CurrentStage)
	assert.Equal(t, int64(3), s.updatedProjection.EventCount)
	assert.Equal(t, newTime("2024-03-10T09:00:00Z"), s.updatedProjection.EnteredAt)
}

func TestAppendStageEvent_SameStage(t *testing.T) {
	s := newServiceTest(model.StageMeet)

	result, err := s.service.AppendStageEvent(newContext(), staff, AppendInput{
		MembershipID: 88,
		Stage:        model.StageMeet,
		Kind:         model.EventNoteAdded,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, model.TransitionSequential, result.Transition.Kind)

	// same stage: entered_at keeps the original value
	assert.Equal(t, newTime("2024-03-01T09:00:00Z"), s.updatedProjection.EnteredAt)
	assert.Equal(t, newTime("2024-03-10T09:00:00Z"), s.updatedProjection.LastActivityAt)
}

func TestAppendStageEvent_Skipped(t *testing.T) {
	s := newServiceTest(model.StageContact)

	result, err := s.service.AppendStageEvent(newContext(), staff, AppendInput{
		MembershipID: 88,
		Stage:        model.StageThank,
		Kind:         model.EventThankYouSent,
		Metadata:     model.Metadata{"channel": "email"},
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, model.TransitionSkipped, result.Transition.Kind)
	assert.Equal(t, true, result.Transition.Warning())
	assert.Equal(t, []string{"meet", "close", "decision"}, result.SkippedStages)

	// bypassed stages are recorded on the event itself
	assert.Equal(t, "email", s.insertedEvent.Metadata["channel"])
	assert.Equal(t, []string{"meet", "close", "decision"},
		s.insertedEvent.Metadata["skipped_stages"])

	assert.Equal(t, true, s.updatedProjection.Skipped)
	assert.Equal(t, false, s.updatedProjection.Revisited)
}

func TestAppendStageEvent_Revisited(t *testing.T) {
	s := newServiceTest(model.StageDecision)

	result, err := s.service.AppendStageEvent(newContext(), staff, AppendInput{
		MembershipID: 88,
		Stage:        model.StageMeet,
		Kind:         model.EventMeetingCompleted,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, model.TransitionRevisited, result.Transition.Kind)
	assert.Nil(t, result.SkippedStages)

	assert.Equal(t, model.StageMeet, s.updatedProjection.CurrentStage)
	assert.Equal(t, true, s.updatedProjection.Revisited)
}

func TestAppendStageEvent_Validation(t *testing.T) {
	s := newServiceTest(model.StageContact)

	_, err := s.service.AppendStageEvent(newContext(), staff, AppendInput{
		MembershipID: 88,
		Stage:        model.Stage(9),
		Kind:         model.EventNoteAdded,
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	_, err = s.service.AppendStageEvent(newContext(), staff, AppendInput{
		MembershipID: 88,
		Stage:        model.StageMeet,
		Kind:         model.EventKind("bogus"),
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestAppendStageEvent_InactiveMembership(t *testing.T) {
	s := newServiceTest(model.StageContact)
	s.membershipRepo.GetFunc = func(ctx context.Context, membershipID int64) (model.Membership, bool, error) {
		return model.Membership{ID: membershipID, JournalID: 5, IsActive: false}, true, nil
	}

	_, err := s.service.AppendStageEvent(newContext(), staff, AppendInput{
		MembershipID: 88,
		Stage:        model.StageMeet,
		Kind:         model.EventNoteAdded,
	})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestAppendStageEvent_LockConflict(t *testing.T) {
	s := newServiceTest(model.StageContact)
	s.eventRepo.GetProjectionForUpdateFunc = func(ctx context.Context, membershipID int64) (model.StageProjection, bool, error) {
		return model.StageProjection{}, false, repository.ErrLockConflict
	}

	_, err := s.service.AppendStageEvent(newContext(), staff, AppendInput{
		MembershipID: 88,
		Stage:        model.StageMeet,
		Kind:         model.EventMeetingCompleted,
	})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
}

func TestAppendStageEvent_MissingProjection(t *testing.T) {
	s := newServiceTest(model.StageContact)
	s.eventRepo.GetProjectionForUpdateFunc = func(ctx context.Context, membershipID int64) (model.StageProjection, bool, error) {
		return model.StageProjection{}, false, nil
	}

	var created model.StageProjection
	s.eventRepo.InsertProjectionFunc = func(ctx context.Context, projection model.StageProjection) error {
		created = projection
		return nil
	}

	result, err := s.service.AppendStageEvent(newContext(), staff, AppendInput{
		MembershipID: 88,
		Stage:        model.StageMeet,
		Kind:         model.EventMeetingCompleted,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, model.StageContact, created.CurrentStage)
	assert.Equal(t, model.TransitionSequential, result.Transition.Kind)
	assert.Equal(t, model.StageMeet, s.updatedProjection.CurrentStage)
	assert.Equal(t, int64(1), s.updatedProjection.EventCount)
}

func TestTimeline_Paging(t *testing.T) {
	s := newServiceTest(model.StageContact)

	var gotNewestFirst bool
	var gotLimit, gotOffset int64
	s.eventRepo.ListByMembershipFunc = func(
		ctx context.Context, membershipID int64, newestFirst bool, limit, offset int64,
	) ([]model.StageEvent, error) {
		gotNewestFirst = newestFirst
		gotLimit = limit
		gotOffset = offset
		return nil, nil
	}

	_, err := s.service.Timeline(newContext(), staff, TimelineInput{MembershipID: 88})
	assert.Equal(t, nil, err)
	assert.Equal(t, false, gotNewestFirst)
	assert.Equal(t, int64(50), gotLimit)
	assert.Equal(t, int64(0), gotOffset)

	_, err = s.service.Timeline(newContext(), staff, TimelineInput{
		MembershipID: 88,
		NewestFirst:  true,
		Page:         4,
		PageSize:     10,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, true, gotNewestFirst)
	assert.Equal(t, int64(10), gotLimit)
	assert.Equal(t, int64(30), gotOffset)
}

func TestCurrentStages_OwnerScope(t *testing.T) {
	s := newServiceTest(model.StageContact)

	var gotIDs []int64
	var gotOwner sql.NullInt64
	s.eventRepo.GetProjectionsFunc = func(
		ctx context.Context, membershipIDs []int64, ownerID sql.NullInt64,
	) ([]model.StageProjection, error) {
		gotIDs = membershipIDs
		gotOwner = ownerID
		return nil, nil
	}

	_, err := s.service.CurrentStages(newContext(), staff, []int64{1, 2, 3})
	assert.Equal(t, nil, err)
	assert.Equal(t, []int64{1, 2, 3}, gotIDs)
	assert.Equal(t, sql.NullInt64{Valid: true, Int64: staff.ID}, gotOwner)

	_, err = s.service.CurrentStages(newContext(), auth.Actor{ID: 1, Role: auth.RoleAdmin}, []int64{4})
	assert.Equal(t, nil, err)
	assert.Equal(t, sql.NullInt64{}, gotOwner)
}
