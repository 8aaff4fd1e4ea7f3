package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/harvestcrm/journal/model"
)

// StageEvent covers the append-only event log and its projection. The
// projection row is only ever written from inside the same transaction
// as an event insert.
type StageEvent interface {
	Insert(ctx context.Context, event model.StageEvent) (int64, error)
	ListByMembership(ctx context.Context, membershipID int64, newestFirst bool, limit, offset int64) ([]model.StageEvent, error)

	InsertProjection(ctx context.Context, projection model.StageProjection) error
	GetProjectionForUpdate(ctx context.Context, membershipID int64) (model.StageProjection, bool, error)
	UpdateProjection(ctx context.Context, projection model.StageProjection) error
	GetProjections(ctx context.Context, membershipIDs []int64, ownerID sql.NullInt64) ([]model.StageProjection, error)
}

type stageEventImpl struct {
}

// NewStageEvent ...
func NewStageEvent() StageEvent {
	return &stageEventImpl{}
}

// Insert ...
func (s *stageEventImpl) Insert(ctx context.Context, event model.StageEvent) (int64, error) {
	query := `
INSERT INTO journal_stage_event (
	journal_contact_id, stage, event_kind, transition,
	actor_id, notes, metadata, created_at
) VALUES (
	:journal_contact_id, :stage, :event_kind, :transition,
	:actor_id, :notes, :metadata, :created_at
)
`
	result, err := GetTx(ctx).NamedExecContext(ctx, query, event)
	if err != nil {
		return 0, translateError(err)
	}
	return result.LastInsertId()
}

// ListByMembership ...
func (s *stageEventImpl) ListByMembership(
	ctx context.Context, membershipID int64, newestFirst bool, limit, offset int64,
) ([]model.StageEvent, error) {
	query := `
SELECT id, journal_contact_id, stage, event_kind, transition,
	actor_id, notes, metadata, created_at
FROM journal_stage_event
WHERE journal_contact_id = ?
ORDER BY
	CASE WHEN ? THEN created_at END DESC,
	CASE WHEN ? THEN id END DESC,
	created_at ASC, id ASC
LIMIT ? OFFSET ?
`
	var result []model.StageEvent
	err := GetReadonly(ctx).SelectContext(ctx, &result, query,
		membershipID, newestFirst, newestFirst, limit, offset)
	return result, err
}

// InsertProjection creates the initial projection row when a contact
// joins a journal: stage "contact", zero events.
func (s *stageEventImpl) InsertProjection(ctx context.Context, projection model.StageProjection) error {
	query := `
INSERT INTO journal_stage_projection (
	journal_contact_id, current_stage, entered_at, last_activity_at,
	event_count, skipped, revisited
) VALUES (
	:journal_contact_id, :current_stage, :entered_at, :last_activity_at,
	:event_count, :skipped, :revisited
)
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, projection)
	return translateError(err)
}

// GetProjectionForUpdate locks the projection row so concurrent appends
// to the same membership serialize, preventing a lost update where an
// earlier event's stage overwrites a later one's.
func (s *stageEventImpl) GetProjectionForUpdate(
	ctx context.Context, membershipID int64,
) (model.StageProjection, bool, error) {
	query := `
SELECT journal_contact_id, current_stage, entered_at, last_activity_at,
	event_count, skipped, revisited, updated_at
FROM journal_stage_projection
WHERE journal_contact_id = ?
FOR UPDATE
`
	var result model.StageProjection
	err := GetTx(ctx).GetContext(ctx, &result, query, membershipID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StageProjection{}, false, nil
	}
	if err != nil {
		return model.StageProjection{}, false, translateError(err)
	}
	return result, true, nil
}

// UpdateProjection ...
func (s *stageEventImpl) UpdateProjection(ctx context.Context, projection model.StageProjection) error {
	query := `
UPDATE journal_stage_projection
SET current_stage = :current_stage,
	entered_at = :entered_at,
	last_activity_at = :last_activity_at,
	event_count = :event_count,
	skipped = :skipped,
	revisited = :revisited
WHERE journal_contact_id = :journal_contact_id
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, projection)
	return translateError(err)
}

// GetProjections is the bulk read path for "current stage of N
// memberships": one query, no per-membership loop. Ownership scoping
// happens in the same query so callers never filter row by row.
func (s *stageEventImpl) GetProjections(
	ctx context.Context, membershipIDs []int64, ownerID sql.NullInt64,
) ([]model.StageProjection, error) {
	if len(membershipIDs) == 0 {
		return nil, nil
	}

	query := `
SELECT p.journal_contact_id, p.current_stage, p.entered_at, p.last_activity_at,
	p.event_count, p.skipped, p.revisited, p.updated_at
FROM journal_stage_projection p
JOIN journal_contact jc ON jc.id = p.journal_contact_id
JOIN journal j ON j.id = jc.journal_id
WHERE p.journal_contact_id IN (?)
	AND (? IS NULL OR j.owner_id = ?)
`
	query, args, err := sqlx.In(query, membershipIDs, ownerID, ownerID)
	if err != nil {
		return nil, err
	}

	var result []model.StageProjection
	err = GetReadonly(ctx).SelectContext(ctx, &result, query, args...)
	return result, err
}
