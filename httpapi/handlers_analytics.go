package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestcrm/journal/model"
)

func (s *Server) handleCommitmentTrend(c *gin.Context) {
	points, err := s.analyticsService.CommitmentTrend(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(points))
	for _, point := range points {
		items = append(items, gin.H{"month": point.Month, "count": point.Count})
	}
	c.JSON(http.StatusOK, gin.H{"trends": items})
}

func (s *Server) handleStageActivity(c *gin.Context) {
	series, err := s.analyticsService.StageActivity(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(series))
	for _, entry := range series {
		item := gin.H{"month": entry.Month}
		for stage, count := range entry.Counts {
			item[stage.String()] = count
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{"activity": items})
}

func (s *Server) handlePipelineBreakdown(c *gin.Context) {
	journalID := sql.NullInt64{}
	if id := queryInt64(c, "journal_id"); id > 0 {
		journalID = sql.NullInt64{Valid: true, Int64: id}
	}

	breakdown, err := s.analyticsService.PipelineBreakdown(c.Request.Context(), actorFrom(c), journalID)
	if err != nil {
		respondError(c, err)
		return
	}

	counts := map[model.Stage]int64{}
	for _, item := range breakdown {
		counts[item.Stage] = item.Count
	}

	items := make([]gin.H, 0, 6)
	for _, stage := range model.AllStages() {
		items = append(items, gin.H{
			"stage": stage.String(),
			"count": counts[stage],
		})
	}
	c.JSON(http.StatusOK, gin.H{"breakdown": items})
}

func (s *Server) handleNextStepQueue(c *gin.Context) {
	queue, err := s.analyticsService.NextStepQueue(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(queue))
	for _, item := range queue {
		items = append(items, queueItemResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"queue": items})
}

func (s *Server) handleAdminSummary(c *gin.Context) {
	summary, err := s.analyticsService.AdminSummary(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	byOwner := make([]gin.H, 0, len(summary.JournalsByOwner))
	for _, entry := range summary.JournalsByOwner {
		byOwner = append(byOwner, gin.H{
			"owner_id": entry.OwnerID,
			"count":    entry.Count,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"total_journals":    summary.TotalJournals,
		"total_commitments": summary.TotalCommitments,
		"journals_by_owner": byOwner,
	})
}
