package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestcrm/journal/model"
	"github.com/harvestcrm/journal/service/pipeline"
)

type stageEventRequest struct {
	MembershipID int64          `json:"journal_contact_id"`
	Stage        string         `json:"stage"`
	EventKind    string         `json:"event_kind"`
	Notes        string         `json:"notes"`
	Metadata     map[string]any `json:"metadata"`
}

func (s *Server) handleAppendStageEvent(c *gin.Context) {
	var req stageEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request body")
		return
	}
	if req.MembershipID <= 0 {
		validationError(c, "journal_contact_id is required")
		return
	}
	stage, ok := model.ParseStage(req.Stage)
	if !ok {
		validationError(c, "invalid stage")
		return
	}
	kind := model.EventKind(req.EventKind)
	if req.EventKind == "" {
		kind = model.EventNoteAdded
	}

	result, err := s.pipelineService.AppendStageEvent(c.Request.Context(), actorFrom(c),
		pipeline.AppendInput{
			MembershipID: req.MembershipID,
			Stage:        stage,
			Kind:         kind,
			Notes:        req.Notes,
			Metadata:     req.Metadata,
		})
	if err != nil {
		respondError(c, err)
		return
	}

	// sequencing anomalies are warnings on a successful write, never errors
	c.JSON(http.StatusCreated, gin.H{
		"event":          stageEventResponse(result.Event),
		"transition":     result.Transition.Kind.String(),
		"warning":        result.Transition.Warning(),
		"skipped_stages": result.SkippedStages,
	})
}

func (s *Server) handleTimeline(c *gin.Context) {
	membershipID := queryInt64(c, "journal_contact_id")
	if membershipID <= 0 {
		validationError(c, "journal_contact_id is required")
		return
	}

	events, err := s.pipelineService.Timeline(c.Request.Context(), actorFrom(c),
		pipeline.TimelineInput{
			MembershipID: membershipID,
			NewestFirst:  c.DefaultQuery("order", "asc") == "desc",
			Page:         queryInt64(c, "page"),
			PageSize:     queryInt64(c, "page_size"),
		})
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(events))
	for _, event := range events {
		items = append(items, stageEventResponse(event))
	}
	c.JSON(http.StatusOK, gin.H{"events": items})
}
