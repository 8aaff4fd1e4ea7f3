package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// EventKind ...
type EventKind string

const (
	// EventCallLogged ...
	EventCallLogged EventKind = "call_logged"

	// EventEmailSent ...
	EventEmailSent EventKind = "email_sent"

	// EventTextSent ...
	EventTextSent EventKind = "text_sent"

	// EventLetterSent ...
	EventLetterSent EventKind = "letter_sent"

	// EventMeetingScheduled ...
	EventMeetingScheduled EventKind = "meeting_scheduled"

	// EventMeetingCompleted ...
	EventMeetingCompleted EventKind = "meeting_completed"

	// EventAskMade ...
	EventAskMade EventKind = "ask_made"

	// EventFollowUpScheduled ...
	EventFollowUpScheduled EventKind = "follow_up_scheduled"

	// EventFollowUpCompleted ...
	EventFollowUpCompleted EventKind = "follow_up_completed"

	// EventDecisionReceived ...
	EventDecisionReceived EventKind = "decision_received"

	// EventThankYouSent ...
	EventThankYouSent EventKind = "thank_you_sent"

	// EventNextStepCreated ...
	EventNextStepCreated EventKind = "next_step_created"

	// EventNoteAdded ...
	EventNoteAdded EventKind = "note_added"

	// EventStageMoved ...
	EventStageMoved EventKind = "stage_moved"

	// EventOther ...
	EventOther EventKind = "other"
)

var eventKinds = map[EventKind]struct{}{
	EventCallLogged: {}, EventEmailSent: {}, EventTextSent: {},
	EventLetterSent: {}, EventMeetingScheduled: {}, EventMeetingCompleted: {},
	EventAskMade: {}, EventFollowUpScheduled: {}, EventFollowUpCompleted: {},
	EventDecisionReceived: {}, EventThankYouSent: {}, EventNextStepCreated: {},
	EventNoteAdded: {}, EventStageMoved: {}, EventOther: {},
}

// Valid ...
func (k EventKind) Valid() bool {
	_, ok := eventKinds[k]
	return ok
}

// Metadata is the free-form key-value payload stored with a stage event,
// persisted as a JSON column.
type Metadata map[string]any

// Value implements driver.Valuer.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("model: unsupported metadata source type")
	}
	if len(data) == 0 {
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// StageEvent is one immutable row of the pipeline audit log. Rows are
// only ever inserted.
type StageEvent struct {
	ID           int64 `db:"id"`
	MembershipID int64 `db:"journal_contact_id"`

	Stage      Stage          `db:"stage"`
	Kind       EventKind      `db:"event_kind"`
	Transition TransitionKind `db:"transition"`

	ActorID  int64    `db:"actor_id"`
	Notes    string   `db:"notes"`
	Metadata Metadata `db:"metadata"`

	CreatedAt time.Time `db:"created_at"`
}
