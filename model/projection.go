package model

import "time"

// StageProjection is the denormalized current-stage row kept in lockstep
// with the event log: every event insert updates this row inside the
// same transaction. Reads of "what stage is X in" always come from here,
// never from replaying events.
type StageProjection struct {
	MembershipID int64 `db:"journal_contact_id"`

	CurrentStage   Stage     `db:"current_stage"`
	EnteredAt      time.Time `db:"entered_at"`
	LastActivityAt time.Time `db:"last_activity_at"`
	EventCount     int64     `db:"event_count"`

	// Skipped and Revisited describe how the most recent transition
	// arrived, not the whole history.
	Skipped   bool `db:"skipped"`
	Revisited bool `db:"revisited"`

	UpdatedAt time.Time `db:"updated_at"`
}

// Apply folds one classified event into the projection.
func (p *StageProjection) Apply(target Stage, tr Transition, at time.Time) {
	if target != p.CurrentStage {
		p.CurrentStage = target
		p.EnteredAt = at
		p.Skipped = tr.Kind == TransitionSkipped
		p.Revisited = tr.Kind == TransitionRevisited
	}
	p.LastActivityAt = at
	p.EventCount++
}
