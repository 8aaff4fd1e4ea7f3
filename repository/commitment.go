package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/harvestcrm/journal/model"
)

// Commitment covers the mutable current row and its append-only
// history. History rows are only inserted, never updated or deleted;
// there is deliberately no update method for them.
type Commitment interface {
	GetByMembership(ctx context.Context, membershipID int64) (model.Commitment, bool, error)
	GetByMembershipForUpdate(ctx context.Context, membershipID int64) (model.Commitment, bool, error)
	Insert(ctx context.Context, commitment model.Commitment) (int64, error)
	Update(ctx context.Context, commitment model.Commitment) error

	InsertHistory(ctx context.Context, history model.CommitmentHistory) (int64, error)
	ListHistory(ctx context.Context, commitmentID int64, limit, offset int64) ([]model.CommitmentHistory, error)
	CountHistory(ctx context.Context, commitmentID int64) (int64, error)
}

type commitmentImpl struct {
}

// NewCommitment ...
func NewCommitment() Commitment {
	return &commitmentImpl{}
}

const commitmentColumns = `
id, journal_contact_id, status, amount, cadence, notes,
decided_at, created_at, updated_at
`

// GetByMembership ...
func (c *commitmentImpl) GetByMembership(ctx context.Context, membershipID int64) (model.Commitment, bool, error) {
	query := `
SELECT ` + commitmentColumns + `
FROM journal_commitment
WHERE journal_contact_id = ?
`
	var result model.Commitment
	err := GetReadonly(ctx).GetContext(ctx, &result, query, membershipID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Commitment{}, false, nil
	}
	if err != nil {
		return model.Commitment{}, false, err
	}
	return result, true, nil
}

// GetByMembershipForUpdate locks the current row so snapshot-then-
// overwrite cannot interleave with another writer on the same
// membership.
func (c *commitmentImpl) GetByMembershipForUpdate(
	ctx context.Context, membershipID int64,
) (model.Commitment, bool, error) {
	query := `
SELECT ` + commitmentColumns + `
FROM journal_commitment
WHERE journal_contact_id = ?
FOR UPDATE
`
	var result model.Commitment
	err := GetTx(ctx).GetContext(ctx, &result, query, membershipID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Commitment{}, false, nil
	}
	if err != nil {
		return model.Commitment{}, false, translateError(err)
	}
	return result, true, nil
}

// Insert ...
func (c *commitmentImpl) Insert(ctx context.Context, commitment model.Commitment) (int64, error) {
	query := `
INSERT INTO journal_commitment (
	journal_contact_id, status, amount, cadence, notes, decided_at
) VALUES (
	:journal_contact_id, :status, :amount, :cadence, :notes, :decided_at
)
`
	result, err := GetTx(ctx).NamedExecContext(ctx, query, commitment)
	if err != nil {
		return 0, translateError(err)
	}
	return result.LastInsertId()
}

// Update ...
func (c *commitmentImpl) Update(ctx context.Context, commitment model.Commitment) error {
	query := `
UPDATE journal_commitment
SET status = :status,
	amount = :amount,
	cadence = :cadence,
	notes = :notes,
	decided_at = :decided_at
WHERE id = :id
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, commitment)
	return translateError(err)
}

// InsertHistory ...
func (c *commitmentImpl) InsertHistory(ctx context.Context, history model.CommitmentHistory) (int64, error) {
	query := `
INSERT INTO journal_commitment_history (
	commitment_id, status, amount, cadence, notes,
	decided_at, changed_by, reason
) VALUES (
	:commitment_id, :status, :amount, :cadence, :notes,
	:decided_at, :changed_by, :reason
)
`
	result, err := GetTx(ctx).NamedExecContext(ctx, query, history)
	if err != nil {
		return 0, translateError(err)
	}
	return result.LastInsertId()
}

// ListHistory returns one page, newest first.
func (c *commitmentImpl) ListHistory(
	ctx context.Context, commitmentID int64, limit, offset int64,
) ([]model.CommitmentHistory, error) {
	query := `
SELECT id, commitment_id, status, amount, cadence, notes,
	decided_at, changed_by, reason, created_at
FROM journal_commitment_history
WHERE commitment_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`
	var result []model.CommitmentHistory
	err := GetReadonly(ctx).SelectContext(ctx, &result, query, commitmentID, limit, offset)
	return result, err
}

// CountHistory ...
func (c *commitmentImpl) CountHistory(ctx context.Context, commitmentID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM journal_commitment_history WHERE commitment_id = ?`
	var count int64
	err := GetReadonly(ctx).GetContext(ctx, &count, query, commitmentID)
	return count, err
}
