package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestcrm/journal/service/nextstep"
)

type createNextStepRequest struct {
	MembershipID int64  `json:"journal_contact_id"`
	Title        string `json:"title"`
	Notes        string `json:"notes"`
	DueDate      string `json:"due_date"`
}

type updateNextStepRequest struct {
	Title     string `json:"title"`
	Notes     string `json:"notes"`
	DueDate   string `json:"due_date"`
	Completed bool   `json:"completed"`
}

func (s *Server) handleListNextSteps(c *gin.Context) {
	membershipID := queryInt64(c, "journal_contact_id")
	if membershipID <= 0 {
		validationError(c, "journal_contact_id is required")
		return
	}

	completed := sql.NullBool{}
	if raw := c.Query("completed"); raw != "" {
		completed = sql.NullBool{Valid: true, Bool: raw == "true"}
	}

	steps, err := s.nextStepService.List(c.Request.Context(), actorFrom(c), membershipID, completed)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(steps))
	for _, step := range steps {
		items = append(items, nextStepResponse(step))
	}
	c.JSON(http.StatusOK, gin.H{"next_steps": items})
}

func (s *Server) handleCreateNextStep(c *gin.Context) {
	var req createNextStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request body")
		return
	}
	if req.MembershipID <= 0 {
		validationError(c, "journal_contact_id is required")
		return
	}
	dueDate, ok := parseDate(req.DueDate)
	if !ok {
		validationError(c, "invalid due_date, expected YYYY-MM-DD")
		return
	}

	step, err := s.nextStepService.Create(c.Request.Context(), actorFrom(c),
		nextstep.CreateInput{
			MembershipID: req.MembershipID,
			Title:        req.Title,
			Notes:        req.Notes,
			DueDate:      dueDate,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, nextStepResponse(step))
}

func (s *Server) handleGetNextStep(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	step, err := s.nextStepService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nextStepResponse(step))
}

func (s *Server) handleUpdateNextStep(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateNextStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request body")
		return
	}
	dueDate, ok := parseDate(req.DueDate)
	if !ok {
		validationError(c, "invalid due_date, expected YYYY-MM-DD")
		return
	}

	step, err := s.nextStepService.Update(c.Request.Context(), actorFrom(c), id,
		nextstep.UpdateInput{
			Title:     req.Title,
			Notes:     req.Notes,
			DueDate:   dueDate,
			Completed: req.Completed,
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nextStepResponse(step))
}

func (s *Server) handleDeleteNextStep(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := s.nextStepService.Delete(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
