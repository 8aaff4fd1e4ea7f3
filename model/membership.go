package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Membership links one contact into one journal. Unique per
// (journal, contact) pair; removal soft-deactivates the row so stage
// events, commitment history and next steps stay attached.
type Membership struct {
	ID        int64 `db:"id"`
	JournalID int64 `db:"journal_id"`
	ContactID int64 `db:"contact_id"`

	AddedBy  int64          `db:"added_by"`
	AddedAt  time.Time      `db:"added_at"`
	IsActive bool           `db:"is_active"`
	Note     sql.NullString `db:"note"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// MembershipRow is the joined read model returned by membership lists:
// the membership plus contact identity, the current-stage projection and
// a commitment summary, fetched in a single query per page.
type MembershipRow struct {
	Membership

	JournalName   string        `db:"journal_name"`
	ContactName   string        `db:"contact_name"`
	ContactEmail  string        `db:"contact_email"`
	ContactStatus ContactStatus `db:"contact_status"`

	CurrentStage   Stage        `db:"current_stage"`
	EnteredAt      sql.NullTime `db:"entered_at"`
	LastActivityAt sql.NullTime `db:"last_activity_at"`
	EventCount     int64        `db:"event_count"`

	CommitmentID     sql.NullInt64       `db:"commitment_id"`
	CommitmentStatus sql.NullString      `db:"commitment_status"`
	CommitmentAmount decimal.NullDecimal `db:"commitment_amount"`
}
