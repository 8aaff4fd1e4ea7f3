package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/harvestcrm/journal/model"
)

// ListJournalsInput ...
type ListJournalsInput struct {
	// OwnerID scopes the list; invalid means no owner filter (admin).
	OwnerID sql.NullInt64

	IncludeArchived bool
	Search          string
	Limit           int64
	Offset          int64
}

// Journal ...
type Journal interface {
	Insert(ctx context.Context, journal model.Journal) (int64, error)
	Get(ctx context.Context, journalID int64) (model.Journal, bool, error)
	List(ctx context.Context, input ListJournalsInput) ([]model.Journal, error)
	Update(ctx context.Context, journal model.Journal) error
	SetArchived(ctx context.Context, journalID int64, archived bool, now time.Time) error
}

type journalImpl struct {
}

// NewJournal ...
func NewJournal() Journal {
	return &journalImpl{}
}

// Insert ...
func (j *journalImpl) Insert(ctx context.Context, journal model.Journal) (int64, error) {
	query := `
INSERT INTO journal (owner_id, name, goal_amount, deadline)
VALUES (:owner_id, :name, :goal_amount, :deadline)
`
	result, err := GetTx(ctx).NamedExecContext(ctx, query, journal)
	if err != nil {
		return 0, translateError(err)
	}
	return result.LastInsertId()
}

// Get ...
func (j *journalImpl) Get(ctx context.Context, journalID int64) (model.Journal, bool, error) {
	query := `
SELECT id, owner_id, name, goal_amount, deadline,
	is_archived, archived_at, created_at, updated_at
FROM journal
WHERE id = ?
`
	var result model.Journal
	err := GetReadonly(ctx).GetContext(ctx, &result, query, journalID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Journal{}, false, nil
	}
	if err != nil {
		return model.Journal{}, false, err
	}
	return result, true, nil
}

// List ...
func (j *journalImpl) List(ctx context.Context, input ListJournalsInput) ([]model.Journal, error) {
	query := `
SELECT id, owner_id, name, goal_amount, deadline,
	is_archived, archived_at, created_at, updated_at
FROM journal
WHERE (? IS NULL OR owner_id = ?)
	AND (? OR is_archived = FALSE)
	AND (? = '' OR name LIKE CONCAT('%', ?, '%'))
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`
	var result []model.Journal
	err := GetReadonly(ctx).SelectContext(ctx, &result, query,
		input.OwnerID, input.OwnerID,
		input.IncludeArchived,
		input.Search, input.Search,
		input.Limit, input.Offset,
	)
	return result, err
}

// Update ...
func (j *journalImpl) Update(ctx context.Context, journal model.Journal) error {
	query := `
UPDATE journal
SET name = :name, goal_amount = :goal_amount, deadline = :deadline
WHERE id = :id
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, journal)
	return translateError(err)
}

// SetArchived ...
func (j *journalImpl) SetArchived(ctx context.Context, journalID int64, archived bool, now time.Time) error {
	query := `
UPDATE journal
SET is_archived = ?,
	archived_at = IF(?, ?, NULL)
WHERE id = ?
`
	_, err := GetTx(ctx).ExecContext(ctx, query, archived, archived, now, journalID)
	return translateError(err)
}
