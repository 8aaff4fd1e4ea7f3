package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/harvestcrm/journal/service/journal"
)

type journalRequest struct {
	Name       string `json:"name"`
	GoalAmount string `json:"goal_amount"`
	Deadline   string `json:"deadline"`
}

type addMembershipRequest struct {
	JournalID int64  `json:"journal_id"`
	ContactID int64  `json:"contact_id"`
	Note      string `json:"note"`
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		validationError(c, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt64(c *gin.Context, name string) int64 {
	value, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return value
}

func queryBool(c *gin.Context, name string) bool {
	return strings.EqualFold(c.Query(name), "true")
}

func parseGoal(c *gin.Context, raw string) (decimal.NullDecimal, bool) {
	if raw == "" {
		return decimal.NullDecimal{}, true
	}
	amount, ok := parseAmount(raw)
	if !ok {
		validationError(c, "invalid goal_amount")
		return decimal.NullDecimal{}, false
	}
	return decimal.NullDecimal{Valid: true, Decimal: amount}, true
}

func (s *Server) handleListJournals(c *gin.Context) {
	journals, err := s.journalService.ListJournals(c.Request.Context(), actorFrom(c),
		journal.ListJournalsInput{
			IncludeArchived: queryBool(c, "include_archived"),
			Search:          c.Query("q"),
			Page:            queryInt64(c, "page"),
			PageSize:        queryInt64(c, "page_size"),
		})
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(journals))
	for _, j := range journals {
		items = append(items, journalResponse(j))
	}
	c.JSON(http.StatusOK, gin.H{"journals": items})
}

func (s *Server) handleCreateJournal(c *gin.Context) {
	var req journalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request body")
		return
	}
	goal, ok := parseGoal(c, req.GoalAmount)
	if !ok {
		return
	}
	deadline, ok := parseDate(req.Deadline)
	if !ok {
		validationError(c, "invalid deadline, expected YYYY-MM-DD")
		return
	}

	created, err := s.journalService.CreateJournal(c.Request.Context(), actorFrom(c),
		journal.CreateJournalInput{
			Name:       req.Name,
			GoalAmount: goal,
			Deadline:   deadline,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, journalResponse(created))
}

func (s *Server) handleGetJournal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	j, err := s.journalService.GetJournal(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, journalResponse(j))
}

func (s *Server) handleUpdateJournal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req journalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request body")
		return
	}
	goal, ok := parseGoal(c, req.GoalAmount)
	if !ok {
		return
	}
	deadline, ok := parseDate(req.Deadline)
	if !ok {
		validationError(c, "invalid deadline, expected YYYY-MM-DD")
		return
	}

	updated, err := s.journalService.UpdateJournal(c.Request.Context(), actorFrom(c), id,
		journal.UpdateJournalInput{
			Name:       req.Name,
			GoalAmount: goal,
			Deadline:   deadline,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, journalResponse(updated))
}

func (s *Server) handleArchiveJournal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := s.journalService.ArchiveJournal(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUnarchiveJournal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := s.journalService.UnarchiveJournal(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListMemberships(c *gin.Context) {
	input := journal.ListMembershipsInput{
		Search:          c.Query("q"),
		ContactStatus:   c.Query("status"),
		IncludeArchived: queryBool(c, "include_archived"),
		Page:            queryInt64(c, "page"),
		PageSize:        queryInt64(c, "page_size"),
	}
	if journalID := queryInt64(c, "journal_id"); journalID > 0 {
		input.JournalID = sql.NullInt64{Valid: true, Int64: journalID}
	}

	rows, err := s.journalService.ListMemberships(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		items = append(items, membershipRowResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"memberships": items})
}

func (s *Server) handleAddMembership(c *gin.Context) {
	var req addMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request body")
		return
	}
	if req.JournalID <= 0 || req.ContactID <= 0 {
		validationError(c, "journal_id and contact_id are required")
		return
	}

	note := sql.NullString{}
	if req.Note != "" {
		note = sql.NullString{Valid: true, String: req.Note}
	}

	membership, err := s.journalService.AddMembership(c.Request.Context(), actorFrom(c),
		journal.AddMembershipInput{
			JournalID: req.JournalID,
			ContactID: req.ContactID,
			Note:      note,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, membershipResponse(membership))
}

func (s *Server) handleRemoveMembership(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := s.journalService.RemoveMembership(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCurrentStages(c *gin.Context) {
	raw := c.Query("ids")
	if raw == "" {
		validationError(c, "ids is required")
		return
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			validationError(c, "invalid ids")
			return
		}
		ids = append(ids, id)
	}

	projections, err := s.pipelineService.CurrentStages(c.Request.Context(), actorFrom(c), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(projections))
	for _, p := range projections {
		items = append(items, projectionResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"projections": items})
}
