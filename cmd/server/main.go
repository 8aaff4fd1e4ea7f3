package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/harvestcrm/journal/config"
	"github.com/harvestcrm/journal/httpapi"
	"github.com/harvestcrm/journal/pkg/auth"
	"github.com/harvestcrm/journal/pkg/otellib"
	"github.com/harvestcrm/journal/repository"
	"github.com/harvestcrm/journal/service/analytics"
	"github.com/harvestcrm/journal/service/commitment"
	"github.com/harvestcrm/journal/service/journal"
	"github.com/harvestcrm/journal/service/nextstep"
	"github.com/harvestcrm/journal/service/pipeline"
)

func main() {
	rootCmd := cobra.Command{
		Use: "server",
	}
	rootCmd.AddCommand(
		startServerCommand(),
	)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
	}
}

func startServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "start the server",
		Run: func(cmd *cobra.Command, args []string) {
			startServer()
		},
	}
}

func startServer() {
	conf := config.Load()
	logger := config.NewLogger(conf.Log)

	otelEndpoint := ""
	if conf.Otel.Enabled {
		otelEndpoint = conf.Otel.Endpoint
	}
	tracerProvider, shutdownTracer := otellib.InitOtel("journal-api", "local", otelEndpoint)
	defer shutdownTracer()

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	db := conf.MySQL.MustConnect()
	provider := repository.NewProvider(db)

	journalRepo := repository.NewJournal()
	contactRepo := repository.NewContact()
	membershipRepo := repository.NewMembership()
	stageEventRepo := repository.NewStageEvent()
	commitmentRepo := repository.NewCommitment()
	nextStepRepo := repository.NewNextStep()
	analyticsRepo := repository.NewAnalytics()

	server := httpapi.NewServer(httpapi.Deps{
		Logger:   logger,
		Tracer:   tracerProvider,
		Verifier: auth.NewHMACVerifier([]byte(conf.Auth.HMACSecret), conf.Auth.Issuer),

		JournalService: journal.NewService(
			provider, journalRepo, contactRepo, membershipRepo, stageEventRepo),
		PipelineService: pipeline.NewService(
			provider, journalRepo, membershipRepo, stageEventRepo),
		CommitmentService: commitment.NewService(
			provider, journalRepo, membershipRepo, commitmentRepo),
		NextStepService: nextstep.NewService(
			provider, journalRepo, membershipRepo, nextStepRepo),
		AnalyticsService: analytics.NewService(provider, analyticsRepo),
	})

	startHTTPServer(conf, server.Handler())
}

func startHTTPServer(conf config.Config, handler http.Handler) {
	fmt.Println("HTTP:", conf.Server.HTTP.ListenString())

	httpServer := &http.Server{
		Addr:    conf.Server.HTTP.ListenString(),
		Handler: handler,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			panic(err)
		}
		fmt.Println("Shutdown HTTP server successfully")
	}()

	//--------------------------------
	// Graceful Shutdown
	//--------------------------------
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := httpServer.Shutdown(ctx)
	if err != nil {
		panic(err)
	}

	wg.Wait()
}
