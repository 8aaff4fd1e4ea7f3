package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/harvestcrm/journal/model"
)

// Contact reads the externally-synced contact directory. This service
// never writes contact rows.
type Contact interface {
	Get(ctx context.Context, contactID int64) (model.Contact, bool, error)
}

type contactImpl struct {
}

// NewContact ...
func NewContact() Contact {
	return &contactImpl{}
}

// Get ...
func (c *contactImpl) Get(ctx context.Context, contactID int64) (model.Contact, bool, error) {
	query := `
SELECT id, owner_id, first_name, last_name, email, status, created_at, updated_at
FROM contact
WHERE id = ?
`
	var result model.Contact
	err := GetReadonly(ctx).GetContext(ctx, &result, query, contactID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contact{}, false, nil
	}
	if err != nil {
		return model.Contact{}, false, err
	}
	return result, true, nil
}
