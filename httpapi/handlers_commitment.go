package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestcrm/journal/model"
	"github.com/harvestcrm/journal/service/commitment"
)

type commitmentRequest struct {
	Status  string `json:"status"`
	Amount  string `json:"amount"`
	Cadence string `json:"cadence"`
	Notes   string `json:"notes"`
	Reason  string `json:"reason"`
}

func (s *Server) handleGetCommitment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	current, found, err := s.commitmentService.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"commitment": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"commitment": commitmentResponse(current)})
}

func (s *Server) handleUpsertCommitment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req commitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request body")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		validationError(c, "invalid amount")
		return
	}

	reason := sql.NullString{}
	if req.Reason != "" {
		reason = sql.NullString{Valid: true, String: req.Reason}
	}

	result, err := s.commitmentService.Upsert(c.Request.Context(), actorFrom(c),
		commitment.UpsertInput{
			MembershipID: id,
			Status:       model.CommitmentStatus(req.Status),
			Amount:       amount,
			Cadence:      model.Cadence(req.Cadence),
			Notes:        req.Notes,
			Reason:       reason,
		})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"commitment": commitmentResponse(result.Commitment),
		"created":    result.Created,
	})
}

func (s *Server) handleCommitmentHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := s.commitmentService.History(c.Request.Context(), actorFrom(c),
		commitment.HistoryInput{
			MembershipID: id,
			Page:         queryInt64(c, "page"),
			PageSize:     queryInt64(c, "page_size"),
		})
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(result.Entries))
	for _, entry := range result.Entries {
		items = append(items, historyResponse(entry))
	}
	c.JSON(http.StatusOK, gin.H{
		"history": items,
		"total":   result.Total,
	})
}
