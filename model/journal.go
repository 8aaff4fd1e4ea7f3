package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Journal is a fundraising campaign owned by exactly one user. Journals
// are archived, never hard-deleted.
type Journal struct {
	ID      int64  `db:"id"`
	OwnerID int64  `db:"owner_id"`
	Name    string `db:"name"`

	GoalAmount decimal.NullDecimal `db:"goal_amount"`
	Deadline   sql.NullTime        `db:"deadline"`

	IsArchived bool         `db:"is_archived"`
	ArchivedAt sql.NullTime `db:"archived_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
