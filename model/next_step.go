package model

import (
	"database/sql"
	"time"
)

// NextStep is one checklist item scoped to a membership. Plain CRUD, no
// audit trail.
type NextStep struct {
	ID           int64 `db:"id"`
	MembershipID int64 `db:"journal_contact_id"`

	Title   string       `db:"title"`
	Notes   string       `db:"notes"`
	DueDate sql.NullTime `db:"due_date"`
	Ordinal int64        `db:"ordinal"`

	Completed   bool         `db:"completed"`
	CompletedAt sql.NullTime `db:"completed_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// QueueItem is one row of the cross-journal next-step queue, joined with
// contact and journal names for display.
type QueueItem struct {
	ID           int64        `db:"id"`
	MembershipID int64        `db:"journal_contact_id"`
	Title        string       `db:"title"`
	DueDate      sql.NullTime `db:"due_date"`
	ContactName  string       `db:"contact_name"`
	JournalName  string       `db:"journal_name"`
}
