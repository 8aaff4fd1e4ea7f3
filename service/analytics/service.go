package analytics

import (
	"context"
	"database/sql"

	"github.com/harvestcrm/journal/model"
	"github.com/harvestcrm/journal/pkg/apperror"
	"github.com/harvestcrm/journal/pkg/auth"
	"github.com/harvestcrm/journal/repository"
)

const queueLimit = 20

// IService ...
type IService interface {
	CommitmentTrend(ctx context.Context, actor auth.Actor) ([]model.TrendPoint, error)
	StageActivity(ctx context.Context, actor auth.Actor) ([]model.StageActivitySeries, error)
	PipelineBreakdown(ctx context.Context, actor auth.Actor, journalID sql.NullInt64) ([]model.BreakdownItem, error)
	NextStepQueue(ctx context.Context, actor auth.Actor) ([]model.QueueItem, error)
	AdminSummary(ctx context.Context, actor auth.Actor) (model.AdminSummary, error)
}

// Service folds stage events and commitments into reporting views. Read
// only; it never mutates anything.
type Service struct {
	provider      repository.Provider
	analyticsRepo repository.Analytics
}

// NewService ...
func NewService(provider repository.Provider, analyticsRepo repository.Analytics) *Service {
	return &Service{
		provider:      provider,
		analyticsRepo: analyticsRepo,
	}
}

func ownerScope(actor auth.Actor) sql.NullInt64 {
	if actor.IsAdmin() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Valid: true, Int64: actor.ID}
}

// CommitmentTrend ...
func (s *Service) CommitmentTrend(ctx context.Context, actor auth.Actor) ([]model.TrendPoint, error) {
	ctx = s.provider.Readonly(ctx)
	return s.analyticsRepo.CommitmentTrend(ctx, ownerScope(actor))
}

// StageActivity pivots the grouped (month, stage) counts into one
// series per month with all six stages present, so charts never have to
// special-case missing keys.
func (s *Service) StageActivity(ctx context.Context, actor auth.Actor) ([]model.StageActivitySeries, error) {
	ctx = s.provider.Readonly(ctx)

	points, err := s.analyticsRepo.StageActivity(ctx, ownerScope(actor))
	if err != nil {
		return nil, err
	}

	var result []model.StageActivitySeries
	index := map[string]int{}
	for _, point := range points {
		pos, ok := index[point.Month]
		if !ok {
			counts := make(map[model.Stage]int64, 6)
			for _, stage := range model.AllStages() {
				counts[stage] = 0
			}
			result = append(result, model.StageActivitySeries{
				Month:  point.Month,
				Counts: counts,
			})
			pos = len(result) - 1
			index[point.Month] = pos
		}
		result[pos].Counts[point.Stage] = point.Count
	}
	return result, nil
}

// PipelineBreakdown counts active memberships per current stage from
// the projection table; this cheap grouped read is the reason the
// projection exists.
func (s *Service) PipelineBreakdown(
	ctx context.Context, actor auth.Actor, journalID sql.NullInt64,
) ([]model.BreakdownItem, error) {
	ctx = s.provider.Readonly(ctx)
	return s.analyticsRepo.PipelineBreakdown(ctx, ownerScope(actor), journalID)
}

// NextStepQueue ...
func (s *Service) NextStepQueue(ctx context.Context, actor auth.Actor) ([]model.QueueItem, error) {
	ctx = s.provider.Readonly(ctx)
	return s.analyticsRepo.NextStepQueue(ctx, ownerScope(actor), queueLimit)
}

// AdminSummary is the cross-owner rollup, gated on the elevated role.
func (s *Service) AdminSummary(ctx context.Context, actor auth.Actor) (model.AdminSummary, error) {
	if !actor.IsAdmin() {
		return model.AdminSummary{}, apperror.New(apperror.CodeOwnership, "admin access required")
	}
	ctx = s.provider.Readonly(ctx)

	totalJournals, err := s.analyticsRepo.CountActiveJournals(ctx)
	if err != nil {
		return model.AdminSummary{}, err
	}
	totalCommitments, err := s.analyticsRepo.CountCommitments(ctx)
	if err != nil {
		return model.AdminSummary{}, err
	}
	byOwner, err := s.analyticsRepo.JournalsByOwner(ctx)
	if err != nil {
		return model.AdminSummary{}, err
	}

	return model.AdminSummary{
		TotalJournals:    totalJournals,
		TotalCommitments: totalCommitments,
		JournalsByOwner:  byOwner,
	}, nil
}
