package model

import "time"

// ContactStatus ...
type ContactStatus string

const (
	// ContactStatusProspect ...
	ContactStatusProspect ContactStatus = "prospect"

	// ContactStatusAsked ...
	ContactStatusAsked ContactStatus = "asked"

	// ContactStatusDonor ...
	ContactStatusDonor ContactStatus = "donor"

	// ContactStatusLapsed ...
	ContactStatusLapsed ContactStatus = "lapsed"

	// ContactStatusDeclined ...
	ContactStatusDeclined ContactStatus = "declined"
)

// Contact is the externally-synced read model of a person in the contact
// directory. This service never creates or edits contacts; it only reads
// them for ownership checks and membership search.
type Contact struct {
	ID        int64         `db:"id"`
	OwnerID   int64         `db:"owner_id"`
	FirstName string        `db:"first_name"`
	LastName  string        `db:"last_name"`
	Email     string        `db:"email"`
	Status    ContactStatus `db:"status"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FullName ...
func (c Contact) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
