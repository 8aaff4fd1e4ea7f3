package repository

import (
	"context"
	"database/sql"

	"github.com/harvestcrm/journal/model"
)

// Analytics holds the read-only grouped queries behind the reporting
// endpoints. Every method is a single bulk query; folding per-row in
// the application would be an N+1 at scale.
type Analytics interface {
	CommitmentTrend(ctx context.Context, ownerID sql.NullInt64) ([]model.TrendPoint, error)
	StageActivity(ctx context.Context, ownerID sql.NullInt64) ([]model.StageActivityPoint, error)
	PipelineBreakdown(ctx context.Context, ownerID, journalID sql.NullInt64) ([]model.BreakdownItem, error)
	NextStepQueue(ctx context.Context, ownerID sql.NullInt64, limit int64) ([]model.QueueItem, error)

	CountActiveJournals(ctx context.Context) (int64, error)
	CountCommitments(ctx context.Context) (int64, error)
	JournalsByOwner(ctx context.Context) ([]model.OwnerJournalCount, error)
}

type analyticsImpl struct {
}

// NewAnalytics ...
func NewAnalytics() Analytics {
	return &analyticsImpl{}
}

// CommitmentTrend counts commitment writes (creations plus every
// audited change) per month.
func (a *analyticsImpl) CommitmentTrend(ctx context.Context, ownerID sql.NullInt64) ([]model.TrendPoint, error) {
	query := `
SELECT month, COUNT(*) AS count
FROM (
	SELECT DATE_FORMAT(cm.created_at, '%Y-%m') AS month, jc.journal_id
	FROM journal_commitment cm
	JOIN journal_contact jc ON jc.id = cm.journal_contact_id
	UNION ALL
	SELECT DATE_FORMAT(h.created_at, '%Y-%m') AS month, jc.journal_id
	FROM journal_commitment_history h
	JOIN journal_commitment cm ON cm.id = h.commitment_id
	JOIN journal_contact jc ON jc.id = cm.journal_contact_id
) changes
JOIN journal j ON j.id = changes.journal_id
WHERE (? IS NULL OR j.owner_id = ?)
GROUP BY month
ORDER BY month ASC
`
	var result []model.TrendPoint
	err := GetReadonly(ctx).SelectContext(ctx, &result, query, ownerID, ownerID)
	return result, err
}

// StageActivity counts stage events per (month, stage).
func (a *analyticsImpl) StageActivity(ctx context.Context, ownerID sql.NullInt64) ([]model.StageActivityPoint, error) {
	query := `
SELECT DATE_FORMAT(e.created_at, '%Y-%m') AS month, e.stage, COUNT(*) AS count
FROM journal_stage_event e
JOIN journal_contact jc ON jc.id = e.journal_contact_id
JOIN journal j ON j.id = jc.journal_id
WHERE (? IS NULL OR j.owner_id = ?)
GROUP BY month, e.stage
ORDER BY month ASC, e.stage ASC
`
	var result []model.StageActivityPoint
	err := GetReadonly(ctx).SelectContext(ctx, &result, query, ownerID, ownerID)
	return result, err
}

// PipelineBreakdown counts active memberships per current stage,
// straight off the projection table.
func (a *analyticsImpl) PipelineBreakdown(
	ctx context.Context, ownerID, journalID sql.NullInt64,
) ([]model.BreakdownItem, error) {
	query := `
SELECT p.current_stage, COUNT(*) AS count
FROM journal_stage_projection p
JOIN journal_contact jc ON jc.id = p.journal_contact_id
JOIN journal j ON j.id = jc.journal_id
WHERE jc.is_active = TRUE
	AND j.is_archived = FALSE
	AND (? IS NULL OR j.owner_id = ?)
	AND (? IS NULL OR jc.journal_id = ?)
GROUP BY p.current_stage
ORDER BY p.current_stage ASC
`
	var result []model.BreakdownItem
	err := GetReadonly(ctx).SelectContext(ctx, &result, query,
		ownerID, ownerID, journalID, journalID)
	return result, err
}

// NextStepQueue returns incomplete next steps across the actor's
// journals, due first, undated last.
func (a *analyticsImpl) NextStepQueue(
	ctx context.Context, ownerID sql.NullInt64, limit int64,
) ([]model.QueueItem, error) {
	query := `
SELECT ns.id, ns.journal_contact_id, ns.title, ns.due_date,
	TRIM(CONCAT(c.first_name, ' ', c.last_name)) AS contact_name,
	j.name AS journal_name
FROM journal_next_step ns
JOIN journal_contact jc ON jc.id = ns.journal_contact_id
JOIN contact c ON c.id = jc.contact_id
JOIN journal j ON j.id = jc.journal_id
WHERE ns.completed = FALSE
	AND jc.is_active = TRUE
	AND j.is_archived = FALSE
	AND (? IS NULL OR j.owner_id = ?)
ORDER BY ns.due_date IS NULL, ns.due_date ASC, ns.created_at ASC
LIMIT ?
`
	var result []model.QueueItem
	err := GetReadonly(ctx).SelectContext(ctx, &result, query, ownerID, ownerID, limit)
	return result, err
}

// CountActiveJournals ...
func (a *analyticsImpl) CountActiveJournals(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM journal WHERE is_archived = FALSE`
	var count int64
	err := GetReadonly(ctx).GetContext(ctx, &count, query)
	return count, err
}

// CountCommitments ...
func (a *analyticsImpl) CountCommitments(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM journal_commitment`
	var count int64
	err := GetReadonly(ctx).GetContext(ctx, &count, query)
	return count, err
}

// JournalsByOwner ...
func (a *analyticsImpl) JournalsByOwner(ctx context.Context) ([]model.OwnerJournalCount, error) {
	query := `
SELECT owner_id, COUNT(*) AS count
FROM journal
WHERE is_archived = FALSE
GROUP BY owner_id
ORDER BY count DESC
`
	var result []model.OwnerJournalCount
	err := GetReadonly(ctx).SelectContext(ctx, &result, query)
	return result, err
}
