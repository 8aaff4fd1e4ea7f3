package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/harvestcrm/journal/pkg/auth"
	"github.com/harvestcrm/journal/pkg/otellib"
	"github.com/harvestcrm/journal/service/analytics"
	"github.com/harvestcrm/journal/service/commitment"
	"github.com/harvestcrm/journal/service/journal"
	"github.com/harvestcrm/journal/service/nextstep"
	"github.com/harvestcrm/journal/service/pipeline"
)

// Server is the journal pipeline HTTP server.
type Server struct {
	router *gin.Engine

	journalService    journal.IService
	pipelineService   pipeline.IService
	commitmentService commitment.IService
	nextStepService   nextstep.IService
	analyticsService  analytics.IService
}

// Deps bundles the constructor dependencies.
type Deps struct {
	Logger   *zap.Logger
	Tracer   trace.TracerProvider
	Verifier auth.Verifier

	JournalService    journal.IService
	PipelineService   pipeline.IService
	CommitmentService commitment.IService
	NextStepService   nextstep.IService
	AnalyticsService  analytics.IService
}

// NewServer wires routes and middleware.
func NewServer(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		router: router,

		journalService:    deps.JournalService,
		pipelineService:   deps.PipelineService,
		commitmentService: deps.CommitmentService,
		nextStepService:   deps.NextStepService,
		analyticsService:  deps.AnalyticsService,
	}

	router.Use(gin.Recovery())
	router.Use(requestContextMiddleware(deps.Logger, deps.Tracer))
	router.Use(metricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(authMiddleware(deps.Verifier))
	{
		api.GET("/journals", s.handleListJournals)
		api.POST("/journals", s.handleCreateJournal)
		api.GET("/journals/:id", s.handleGetJournal)
		api.PATCH("/journals/:id", s.handleUpdateJournal)
		api.DELETE("/journals/:id", s.handleArchiveJournal)
		api.POST("/journals/:id/unarchive", s.handleUnarchiveJournal)

		api.GET("/journal-contacts", s.handleListMemberships)
		api.POST("/journal-contacts", s.handleAddMembership)
		api.DELETE("/journal-contacts/:id", s.handleRemoveMembership)
		api.GET("/journal-contacts/stages", s.handleCurrentStages)

		api.POST("/stage-events", s.handleAppendStageEvent)
		api.GET("/stage-events", s.handleTimeline)

		api.GET("/journal-contacts/:id/commitment", s.handleGetCommitment)
		api.PUT("/journal-contacts/:id/commitment", s.handleUpsertCommitment)
		api.GET("/journal-contacts/:id/commitment/history", s.handleCommitmentHistory)

		api.GET("/next-steps", s.handleListNextSteps)
		api.POST("/next-steps", s.handleCreateNextStep)
		api.GET("/next-steps/:id", s.handleGetNextStep)
		api.PATCH("/next-steps/:id", s.handleUpdateNextStep)
		api.DELETE("/next-steps/:id", s.handleDeleteNextStep)

		api.GET("/analytics/decision-trends", s.handleCommitmentTrend)
		api.GET("/analytics/stage-activity", s.handleStageActivity)
		api.GET("/analytics/pipeline-breakdown", s.handlePipelineBreakdown)
		api.GET("/analytics/next-steps-queue", s.handleNextStepQueue)
		api.GET("/analytics/admin-summary", s.handleAdminSummary)
	}

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestContextMiddleware(logger *zap.Logger, tracerProvider trace.TracerProvider) gin.HandlerFunc {
	tracer := tracerProvider.Tracer("httpapi")
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		ctx, span := tracer.Start(c.Request.Context(),
			c.Request.Method+" "+c.FullPath())
		defer span.End()

		reqLogger := logger.With(
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		ctx = otellib.ToContext(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func authMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "unauthorized", "message": "missing bearer token"},
			})
			return
		}

		actor, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "unauthorized", "message": "invalid token"},
			})
			return
		}

		c.Request = c.Request.WithContext(auth.ToContext(c.Request.Context(), actor))
		c.Next()
	}
}

func actorFrom(c *gin.Context) auth.Actor {
	actor, _ := auth.FromContext(c.Request.Context())
	return actor
}
