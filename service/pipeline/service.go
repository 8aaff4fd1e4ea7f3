package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/harvestcrm/journal/model"
	"github.com/harvestcrm/journal/pkg/apperror"
	"github.com/harvestcrm/journal/pkg/auth"
	"github.com/harvestcrm/journal/pkg/otellib"
	"github.com/harvestcrm/journal/repository"
	"github.com/harvestcrm/journal/service/guard"
)

const (
	defaultTimelinePageSize = 50
	maxTimelinePageSize     = 200
)

// IService ...
type IService interface {
	AppendStageEvent(ctx context.Context, actor auth.Actor, input AppendInput) (AppendResult, error)
	Timeline(ctx context.Context, actor auth.Actor, input TimelineInput) ([]model.StageEvent, error)
	CurrentStages(ctx context.Context, actor auth.Actor, membershipIDs []int64) ([]model.StageProjection, error)
}

// AppendInput ...
type AppendInput struct {
	MembershipID int64
	Stage        model.Stage
	Kind         model.EventKind
	Notes        string
	Metadata     model.Metadata
}

// AppendResult carries the stored event plus the transition
// classification. A skipped or revisited transition is a warning for
// the caller's UI, never a failure.
type AppendResult struct {
	Event         model.StageEvent
	Transition    model.Transition
	SkippedStages []string
}

// TimelineInput ...
type TimelineInput struct {
	MembershipID int64
	NewestFirst  bool
	Page         int64
	PageSize     int64
}

// Service owns the stage event log and its current-stage projection.
type Service struct {
	provider  repository.Provider
	eventRepo repository.StageEvent
	guard     *guard.Guard

	now func() time.Time
}

// NewService ...
func NewService(
	provider repository.Provider,
	journalRepo repository.Journal,
	membershipRepo repository.Membership,
	eventRepo repository.StageEvent,
) *Service {
	return &Service{
		provider:  provider,
		eventRepo: eventRepo,
		guard:     guard.New(journalRepo, membershipRepo),
		now:       time.Now,
	}
}

// AppendStageEvent records a pipeline interaction and updates the
// projection in the same transaction. Out-of-order targets are
// classified, never rejected: staff must be able to record what
// actually happened even when it breaks the expected sequence.
func (s *Service) AppendStageEvent(
	ctx context.Context, actor auth.Actor, input AppendInput,
) (AppendResult, error) {
	if !input.Stage.Valid() {
		return AppendResult{}, apperror.New(apperror.CodeValidation, "invalid stage")
	}
	if !input.Kind.Valid() {
		return AppendResult{}, apperror.New(apperror.CodeValidation, "invalid event kind")
	}

	var result AppendResult

	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		membership, err := s.guard.MembershipForWrite(ctx, actor, input.MembershipID)
		if err != nil {
			return err
		}
		if !membership.IsActive {
			return apperror.New(apperror.CodeNotFound, "membership not found")
		}

		now := s.now()

		projection, ok, err := s.eventRepo.GetProjectionForUpdate(ctx, input.MembershipID)
		if err != nil {
			return err
		}
		if !ok {
			// memberships created before the projection table existed
			projection = model.StageProjection{
				MembershipID:   input.MembershipID,
				CurrentStage:   model.StageContact,
				EnteredAt:      now,
				LastActivityAt: now,
			}
			err = s.eventRepo.InsertProjection(ctx, projection)
			if err != nil {
				return err
			}
		}

		transition := model.ClassifyTransition(projection.CurrentStage, input.Stage)

		metadata := model.Metadata{}
		for key, value := range input.Metadata {
			metadata[key] = value
		}
		var skippedNames []string
		if len(transition.Skipped) > 0 {
			for _, stage := range transition.Skipped {
				skippedNames = append(skippedNames, stage.String())
			}
			metadata["skipped_stages"] = skippedNames
		}

		event := model.StageEvent{
			MembershipID: input.MembershipID,
			Stage:        input.Stage,
			Kind:         input.Kind,
			Transition:   transition.Kind,
			ActorID:      actor.ID,
			Notes:        input.Notes,
			Metadata:     metadata,
			CreatedAt:    now,
		}
		eventID, err := s.eventRepo.Insert(ctx, event)
		if err != nil {
			return err
		}
		event.ID = eventID

		projection.Apply(input.Stage, transition, now)
		err = s.eventRepo.UpdateProjection(ctx, projection)
		if err != nil {
			return err
		}

		result = AppendResult{
			Event:         event,
			Transition:    transition,
			SkippedStages: skippedNames,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrLockConflict) {
			return AppendResult{}, apperror.Wrap(apperror.CodeConflict,
				"stage event was recorded concurrently, retry", err)
		}
		return AppendResult{}, err
	}

	if result.Transition.Warning() {
		otellib.Extract(ctx).Info("out-of-order stage event",
			zap.Int64("membership_id", input.MembershipID),
			zap.String("stage", input.Stage.String()),
			zap.String("transition", result.Transition.Kind.String()),
		)
	}
	return result, nil
}

// Timeline returns one page of the membership's event log.
func (s *Service) Timeline(
	ctx context.Context, actor auth.Actor, input TimelineInput,
) ([]model.StageEvent, error) {
	ctx = s.provider.Readonly(ctx)

	_, err := s.guard.MembershipForRead(ctx, actor, input.MembershipID)
	if err != nil {
		return nil, err
	}

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = defaultTimelinePageSize
	}
	if pageSize > maxTimelinePageSize {
		pageSize = maxTimelinePageSize
	}
	page := input.Page
	if page <= 0 {
		page = 1
	}

	return s.eventRepo.ListByMembership(ctx,
		input.MembershipID, input.NewestFirst, pageSize, (page-1)*pageSize)
}

// CurrentStages bulk-reads projections for the given memberships in a
// single query, scoped to the actor's journals. Never replays events;
// memberships the actor cannot see are simply absent from the result.
func (s *Service) CurrentStages(
	ctx context.Context, actor auth.Actor, membershipIDs []int64,
) ([]model.StageProjection, error) {
	ctx = s.provider.Readonly(ctx)

	ownerID := sql.NullInt64{}
	if !actor.IsAdmin() {
		ownerID = sql.NullInt64{Valid: true, Int64: actor.ID}
	}
	return s.eventRepo.GetProjections(ctx, membershipIDs, ownerID)
}
