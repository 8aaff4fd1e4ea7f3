package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/harvestcrm/journal/model"
)

// NextStep ...
type NextStep interface {
	Insert(ctx context.Context, step model.NextStep) (int64, error)
	Get(ctx context.Context, stepID int64) (model.NextStep, bool, error)
	ListByMembership(ctx context.Context, membershipID int64, completed sql.NullBool) ([]model.NextStep, error)
	Update(ctx context.Context, step model.NextStep) error
	Delete(ctx context.Context, stepID int64) error
	NextOrdinal(ctx context.Context, membershipID int64) (int64, error)
}

type nextStepImpl struct {
}

// NewNextStep ...
func NewNextStep() NextStep {
	return &nextStepImpl{}
}

// Insert ...
func (n *nextStepImpl) Insert(ctx context.Context, step model.NextStep) (int64, error) {
	query := `
INSERT INTO journal_next_step (
	journal_contact_id, title, notes, due_date, ordinal,
	completed, completed_at
) VALUES (
	:journal_contact_id, :title, :notes, :due_date, :ordinal,
	:completed, :completed_at
)
`
	result, err := GetTx(ctx).NamedExecContext(ctx, query, step)
	if err != nil {
		return 0, translateError(err)
	}
	return result.LastInsertId()
}

// Get ...
func (n *nextStepImpl) Get(ctx context.Context, stepID int64) (model.NextStep, bool, error) {
	query := `
SELECT id, journal_contact_id, title, notes, due_date, ordinal,
	completed, completed_at, created_at, updated_at
FROM journal_next_step
WHERE id = ?
`
	var result model.NextStep
	err := GetReadonly(ctx).GetContext(ctx, &result, query, stepID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NextStep{}, false, nil
	}
	if err != nil {
		return model.NextStep{}, false, err
	}
	return result, true, nil
}

// ListByMembership ...
func (n *nextStepImpl) ListByMembership(
	ctx context.Context, membershipID int64, completed sql.NullBool,
) ([]model.NextStep, error) {
	query := `
SELECT id, journal_contact_id, title, notes, due_date, ordinal,
	completed, completed_at, created_at, updated_at
FROM journal_next_step
WHERE journal_contact_id = ?
	AND (? IS NULL OR completed = ?)
ORDER BY ordinal ASC, id ASC
`
	var result []model.NextStep
	err := GetReadonly(ctx).SelectContext(ctx, &result, query,
		membershipID, completed, completed)
	return result, err
}

// Update ...
func (n *nextStepImpl) Update(ctx context.Context, step model.NextStep) error {
	query := `
UPDATE journal_next_step
SET title = :title,
	notes = :notes,
	due_date = :due_date,
	ordinal = :ordinal,
	completed = :completed,
	completed_at = :completed_at
WHERE id = :id
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, step)
	return translateError(err)
}

// Delete is a hard delete: checklist items carry no audit requirement.
func (n *nextStepImpl) Delete(ctx context.Context, stepID int64) error {
	query := `DELETE FROM journal_next_step WHERE id = ?`
	_, err := GetTx(ctx).ExecContext(ctx, query, stepID)
	return translateError(err)
}

// NextOrdinal ...
func (n *nextStepImpl) NextOrdinal(ctx context.Context, membershipID int64) (int64, error) {
	query := `
SELECT COALESCE(MAX(ordinal), 0) + 1
FROM journal_next_step
WHERE journal_contact_id = ?
`
	var ordinal int64
	err := GetTx(ctx).GetContext(ctx, &ordinal, query, membershipID)
	return ordinal, err
}
