package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// CommitmentStatus ...
type CommitmentStatus string

const (
	// CommitmentUndecided ...
	CommitmentUndecided CommitmentStatus = "undecided"

	// CommitmentConsidering ...
	CommitmentConsidering CommitmentStatus = "considering"

	// CommitmentCommitted ...
	CommitmentCommitted CommitmentStatus = "committed"

	// CommitmentDeclined ...
	CommitmentDeclined CommitmentStatus = "declined"

	// CommitmentPendingReview ...
	CommitmentPendingReview CommitmentStatus = "pending_review"
)

var commitmentStatuses = map[CommitmentStatus]struct{}{
	CommitmentUndecided: {}, CommitmentConsidering: {},
	CommitmentCommitted: {}, CommitmentDeclined: {},
	CommitmentPendingReview: {},
}

// Valid ...
func (s CommitmentStatus) Valid() bool {
	_, ok := commitmentStatuses[s]
	return ok
}

// Cadence ...
type Cadence string

const (
	// CadenceOneTime ...
	CadenceOneTime Cadence = "one_time"

	// CadenceMonthly ...
	CadenceMonthly Cadence = "monthly"

	// CadenceQuarterly ...
	CadenceQuarterly Cadence = "quarterly"

	// CadenceAnnual ...
	CadenceAnnual Cadence = "annual"

	// CadenceOther ...
	CadenceOther Cadence = "other"
)

var cadences = map[Cadence]struct{}{
	CadenceOneTime: {}, CadenceMonthly: {}, CadenceQuarterly: {},
	CadenceAnnual: {}, CadenceOther: {},
}

// Valid ...
func (c Cadence) Valid() bool {
	_, ok := cadences[c]
	return ok
}

// Commitment is the live, mutable pledge state for one membership. At
// most one row exists per membership; every overwrite is preceded by a
// CommitmentHistory snapshot of the prior values.
type Commitment struct {
	ID           int64 `db:"id"`
	MembershipID int64 `db:"journal_contact_id"`

	Status  CommitmentStatus `db:"status"`
	Amount  decimal.Decimal  `db:"amount"`
	Cadence Cadence          `db:"cadence"`
	Notes   string           `db:"notes"`

	DecidedAt time.Time `db:"decided_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// MonthlyEquivalent normalizes the committed amount to a per-month
// value for support tracking. One-time and irregular gifts count zero.
func (c Commitment) MonthlyEquivalent() decimal.Decimal {
	switch c.Cadence {
	case CadenceMonthly:
		return c.Amount.Round(2)
	case CadenceQuarterly:
		return c.Amount.Div(decimal.NewFromInt(3)).Round(2)
	case CadenceAnnual:
		return c.Amount.Div(decimal.NewFromInt(12)).Round(2)
	default:
		return decimal.Zero
	}
}

// Equal reports whether the mutable fields match, used to skip no-op
// writes so history records one row per actual change.
func (c Commitment) Equal(status CommitmentStatus, amount decimal.Decimal, cadence Cadence, notes string) bool {
	return c.Status == status &&
		c.Amount.Equal(amount) &&
		c.Cadence == cadence &&
		c.Notes == notes
}

// CommitmentHistory is an append-only snapshot of a commitment's values
// taken immediately before an overwrite. Never mutated once written.
type CommitmentHistory struct {
	ID           int64 `db:"id"`
	CommitmentID int64 `db:"commitment_id"`

	Status  CommitmentStatus `db:"status"`
	Amount  decimal.Decimal  `db:"amount"`
	Cadence Cadence          `db:"cadence"`
	Notes   string           `db:"notes"`

	DecidedAt time.Time      `db:"decided_at"`
	ChangedBy int64          `db:"changed_by"`
	Reason    sql.NullString `db:"reason"`

	CreatedAt time.Time `db:"created_at"`
}
