package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/harvestcrm/journal/model"
)

// ListMembershipsInput ...
type ListMembershipsInput struct {
	// OwnerID scopes the list; invalid means no owner filter (admin).
	OwnerID sql.NullInt64

	JournalID       sql.NullInt64
	Search          string
	ContactStatus   string
	IncludeArchived bool
	Limit           int64
	Offset          int64
}

// Membership ...
type Membership interface {
	Insert(ctx context.Context, membership model.Membership) (int64, error)
	Get(ctx context.Context, membershipID int64) (model.Membership, bool, error)
	FindPair(ctx context.Context, journalID, contactID int64) (model.Membership, bool, error)
	Reactivate(ctx context.Context, membershipID, addedBy int64, now time.Time) error
	Deactivate(ctx context.Context, membershipID int64) error
	List(ctx context.Context, input ListMembershipsInput) ([]model.MembershipRow, error)
}

type membershipImpl struct {
}

// NewMembership ...
func NewMembership() Membership {
	return &membershipImpl{}
}

// Insert ...
func (m *membershipImpl) Insert(ctx context.Context, membership model.Membership) (int64, error) {
	query := `
INSERT INTO journal_contact (journal_id, contact_id, added_by, added_at, is_active, note)
VALUES (:journal_id, :contact_id, :added_by, :added_at, :is_active, :note)
`
	result, err := GetTx(ctx).NamedExecContext(ctx, query, membership)
	if err != nil {
		return 0, translateError(err)
	}
	return result.LastInsertId()
}

// Get ...
func (m *membershipImpl) Get(ctx context.Context, membershipID int64) (model.Membership, bool, error) {
	query := `
SELECT id, journal_id, contact_id, added_by, added_at, is_active, note,
	created_at, updated_at
FROM journal_contact
WHERE id = ?
`
	var result model.Membership
	err := GetReadonly(ctx).GetContext(ctx, &result, query, membershipID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Membership{}, false, nil
	}
	if err != nil {
		return model.Membership{}, false, err
	}
	return result, true, nil
}

// FindPair locks the (journal, contact) row inside a transaction so the
// resurrect-vs-duplicate decision cannot race with another writer.
func (m *membershipImpl) FindPair(ctx context.Context, journalID, contactID int64) (model.Membership, bool, error) {
	query := `
SELECT id, journal_id, contact_id, added_by, added_at, is_active, note,
	created_at, updated_at
FROM journal_contact
WHERE journal_id = ? AND contact_id = ?
FOR UPDATE
`
	var result model.Membership
	err := GetTx(ctx).GetContext(ctx, &result, query, journalID, contactID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Membership{}, false, nil
	}
	if err != nil {
		return model.Membership{}, false, translateError(err)
	}
	return result, true, nil
}

// Reactivate ...
func (m *membershipImpl) Reactivate(ctx context.Context, membershipID, addedBy int64, now time.Time) error {
	query := `
UPDATE journal_contact
SET is_active = TRUE, added_by = ?, added_at = ?, note = NULL
WHERE id = ?
`
	_, err := GetTx(ctx).ExecContext(ctx, query, addedBy, now, membershipID)
	return translateError(err)
}

// Deactivate ...
func (m *membershipImpl) Deactivate(ctx context.Context, membershipID int64) error {
	query := `
UPDATE journal_contact
SET is_active = FALSE
WHERE id = ?
`
	_, err := GetTx(ctx).ExecContext(ctx, query, membershipID)
	return translateError(err)
}

// List returns one page of memberships joined with contact identity,
// the current-stage projection and a commitment summary. A single query
// serves the whole pipeline grid; current stage is never recomputed
// from events here.
func (m *membershipImpl) List(ctx context.Context, input ListMembershipsInput) ([]model.MembershipRow, error) {
	query := `
SELECT jc.id, jc.journal_id, jc.contact_id, jc.added_by, jc.added_at,
	jc.is_active, jc.note, jc.created_at, jc.updated_at,
	j.name AS journal_name,
	TRIM(CONCAT(c.first_name, ' ', c.last_name)) AS contact_name,
	c.email AS contact_email,
	c.status AS contact_status,
	p.current_stage,
	p.entered_at,
	p.last_activity_at,
	p.event_count,
	cm.id AS commitment_id,
	cm.status AS commitment_status,
	cm.amount AS commitment_amount
FROM journal_contact jc
JOIN journal j ON j.id = jc.journal_id
JOIN contact c ON c.id = jc.contact_id
JOIN journal_stage_projection p ON p.journal_contact_id = jc.id
LEFT JOIN journal_commitment cm ON cm.journal_contact_id = jc.id
WHERE jc.is_active = TRUE
	AND (? IS NULL OR j.owner_id = ?)
	AND (? IS NULL OR jc.journal_id = ?)
	AND (? OR j.is_archived = FALSE)
	AND (? = '' OR c.first_name LIKE CONCAT('%', ?, '%')
		OR c.last_name LIKE CONCAT('%', ?, '%')
		OR c.email LIKE CONCAT('%', ?, '%'))
	AND (? = '' OR c.status = ?)
ORDER BY jc.created_at DESC, jc.id DESC
LIMIT ? OFFSET ?
`
	var result []model.MembershipRow
	err := GetReadonly(ctx).SelectContext(ctx, &result, query,
		input.OwnerID, input.OwnerID,
		input.JournalID, input.JournalID,
		input.IncludeArchived,
		input.Search, input.Search, input.Search, input.Search,
		input.ContactStatus, input.ContactStatus,
		input.Limit, input.Offset,
	)
	return result, err
}
