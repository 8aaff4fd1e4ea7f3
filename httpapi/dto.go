package httpapi

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvestcrm/journal/model"
	"github.com/harvestcrm/journal/pkg/apperror"
	"github.com/harvestcrm/journal/pkg/otellib"
)

const dateLayout = "2006-01-02"

func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status >= 500 {
		otellib.Extract(c.Request.Context()).Error("request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    string(apperror.CodeOf(err)),
			"message": apperror.MessageOf(err),
		},
	})
}

func validationError(c *gin.Context, message string) {
	respondError(c, apperror.New(apperror.CodeValidation, message))
}

func parseDate(value string) (sql.NullTime, bool) {
	if value == "" {
		return sql.NullTime{}, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return sql.NullTime{}, false
	}
	return sql.NullTime{Valid: true, Time: t}, true
}

func parseAmount(value string) (decimal.Decimal, bool) {
	if value == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func nullTimeString(t sql.NullTime, layout string) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(layout)
	return &s
}

func nullDecimalString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

func journalResponse(j model.Journal) gin.H {
	return gin.H{
		"id":          j.ID,
		"owner_id":    j.OwnerID,
		"name":        j.Name,
		"goal_amount": nullDecimalString(j.GoalAmount),
		"deadline":    nullTimeString(j.Deadline, dateLayout),
		"is_archived": j.IsArchived,
		"archived_at": nullTimeString(j.ArchivedAt, time.RFC3339),
		"created_at":  j.CreatedAt.Format(time.RFC3339),
		"updated_at":  j.UpdatedAt.Format(time.RFC3339),
	}
}

func membershipResponse(m model.Membership) gin.H {
	var note *string
	if m.Note.Valid {
		note = &m.Note.String
	}
	return gin.H{
		"id":         m.ID,
		"journal_id": m.JournalID,
		"contact_id": m.ContactID,
		"added_by":   m.AddedBy,
		"added_at":   m.AddedAt.Format(time.RFC3339),
		"is_active":  m.IsActive,
		"note":       note,
	}
}

func membershipRowResponse(row model.MembershipRow) gin.H {
	resp := membershipResponse(row.Membership)
	resp["journal_name"] = row.JournalName
	resp["contact_name"] = row.ContactName
	resp["contact_email"] = row.ContactEmail
	resp["contact_status"] = string(row.ContactStatus)
	resp["projection"] = gin.H{
		"current_stage":    row.CurrentStage.String(),
		"entered_at":       nullTimeString(row.EnteredAt, time.RFC3339),
		"last_activity_at": nullTimeString(row.LastActivityAt, time.RFC3339),
		"event_count":      row.EventCount,
	}
	if row.CommitmentID.Valid {
		resp["commitment"] = gin.H{
			"id":     row.CommitmentID.Int64,
			"status": row.CommitmentStatus.String,
			"amount": nullDecimalString(row.CommitmentAmount),
		}
	} else {
		resp["commitment"] = nil
	}
	return resp
}

func stageEventResponse(e model.StageEvent) gin.H {
	return gin.H{
		"id":                 e.ID,
		"journal_contact_id": e.MembershipID,
		"stage":              e.Stage.String(),
		"event_kind":         string(e.Kind),
		"transition":         e.Transition.String(),
		"actor_id":           e.ActorID,
		"notes":              e.Notes,
		"metadata":           e.Metadata,
		"created_at":         e.CreatedAt.Format(time.RFC3339),
	}
}

func projectionResponse(p model.StageProjection) gin.H {
	return gin.H{
		"journal_contact_id": p.MembershipID,
		"current_stage":      p.CurrentStage.String(),
		"entered_at":         p.EnteredAt.Format(time.RFC3339),
		"last_activity_at":   p.LastActivityAt.Format(time.RFC3339),
		"event_count":        p.EventCount,
		"skipped":            p.Skipped,
		"revisited":          p.Revisited,
	}
}

func commitmentResponse(cm model.Commitment) gin.H {
	return gin.H{
		"id":                 cm.ID,
		"journal_contact_id": cm.MembershipID,
		"status":             string(cm.Status),
		"amount":             cm.Amount.StringFixed(2),
		"cadence":            string(cm.Cadence),
		"notes":              cm.Notes,
		"monthly_equivalent": cm.MonthlyEquivalent().StringFixed(2),
		"decided_at":         cm.DecidedAt.Format(time.RFC3339),
	}
}

func historyResponse(h model.CommitmentHistory) gin.H {
	var reason *string
	if h.Reason.Valid {
		reason = &h.Reason.String
	}
	return gin.H{
		"id":            h.ID,
		"commitment_id": h.CommitmentID,
		"status":        string(h.Status),
		"amount":        h.Amount.StringFixed(2),
		"cadence":       string(h.Cadence),
		"notes":         h.Notes,
		"decided_at":    h.DecidedAt.Format(time.RFC3339),
		"changed_by":    h.ChangedBy,
		"reason":        reason,
		"created_at":    h.CreatedAt.Format(time.RFC3339),
	}
}

func nextStepResponse(step model.NextStep) gin.H {
	return gin.H{
		"id":                 step.ID,
		"journal_contact_id": step.MembershipID,
		"title":              step.Title,
		"notes":              step.Notes,
		"due_date":           nullTimeString(step.DueDate, dateLayout),
		"ordinal":            step.Ordinal,
		"completed":          step.Completed,
		"completed_at":       nullTimeString(step.CompletedAt, time.RFC3339),
	}
}

func queueItemResponse(item model.QueueItem) gin.H {
	return gin.H{
		"id":                 item.ID,
		"journal_contact_id": item.MembershipID,
		"title":              item.Title,
		"due_date":           nullTimeString(item.DueDate, dateLayout),
		"contact_name":       item.ContactName,
		"journal_name":       item.JournalName,
	}
}
