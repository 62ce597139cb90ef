package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/config"
	"github.com/nahidfarms/poultrypro/internal/repository"
	"github.com/nahidfarms/poultrypro/internal/repository/localfile"
	"github.com/nahidfarms/poultrypro/internal/repository/mongodb"
	"github.com/nahidfarms/poultrypro/internal/repository/sheets"
	"github.com/nahidfarms/poultrypro/internal/scheduler"
	"github.com/nahidfarms/poultrypro/internal/server/handlers"
	"github.com/nahidfarms/poultrypro/internal/server/router"
	insightssvc "github.com/nahidfarms/poultrypro/internal/service/insights"
	ledgersvc "github.com/nahidfarms/poultrypro/internal/service/ledger"
	reportsvc "github.com/nahidfarms/poultrypro/internal/service/report"
	"github.com/nahidfarms/poultrypro/pkg/clients/gemini"
	"github.com/nahidfarms/poultrypro/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.Debug))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	localRepo, err := localfile.New(cfg.Storage.DataDir, baseLogger.Named("repo.localfile"))
	if err != nil {
		baseLogger.Fatal("failed to init local storage", zap.Error(err))
	}

	var store repository.Store = localRepo
	var mongoRepo *mongodb.MongoDBRepository

	if cfg.Storage.Mode == config.StorageRemote {
		mongoRepo, err = mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = repository.NewFallbackStore(mongoRepo, localRepo, baseLogger.Named("repo.fallback"))
	} else {
		baseLogger.Info("running in local mode, state kept on disk only")
	}

	ledgerSvc := ledgersvc.NewService(store, ledgersvc.Options{StrictAmounts: cfg.Ledger.StrictAmounts}, baseLogger.Named("svc.ledger"))
	if err := ledgerSvc.Hydrate(context.Background()); err != nil {
		baseLogger.Warn("continuing with empty farm state", zap.Error(err))
	}

	// Initialize AI client
	var aiClient gemini.Client
	if cfg.AI.GeminiKey != "" {
		aiClient = gemini.NewClient(cfg.AI.GeminiKey)
		baseLogger.Info("gemini ai client enabled")
	} else {
		baseLogger.Warn("gemini api key missing, ai advisor will serve fallback insights")
	}
	insightsSvc := insightssvc.NewService(aiClient, baseLogger.Named("svc.insights"))

	var sheetsRepo sheets.Repository
	if cfg.Reporting.SpreadsheetID != "" {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Reporting, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets export", zap.Error(err))
		}
	}
	reportSvc := reportsvc.NewService(sheetsRepo, baseLogger.Named("svc.report"))

	farmHandler := handlers.NewFarmHandler(ledgerSvc, insightsSvc, reportSvc, baseLogger.Named("handlers.farm"))
	engine := router.New(farmHandler, baseLogger.Named("router"))

	// Daily snapshots only make sense with the remote backend attached.
	if mongoRepo != nil {
		sched := scheduler.NewScheduler(cfg.Reporting.SnapshotCron, ledgerSvc, mongoRepo, baseLogger.Named("scheduler"))
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
