package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cbaclube/portal/external/appsscript"
	"github.com/cbaclube/portal/external/sheetfeed"
	"github.com/cbaclube/portal/internal/config"
	"github.com/cbaclube/portal/internal/domain/item"
	"github.com/cbaclube/portal/internal/infrastructure/repository/memory"
	"github.com/cbaclube/portal/internal/interfaces/httpapi"
	idgen "github.com/cbaclube/portal/internal/platform/id"
	"github.com/cbaclube/portal/internal/platform/logging"
	"github.com/cbaclube/portal/internal/platform/resilience"
	"github.com/cbaclube/portal/internal/usecase"
)

// App bundles the HTTP server and the background reconciler so main can
// start and stop them together.
type App struct {
	Server     *http.Server
	Reconciler *usecase.Reconciler
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	script := appsscript.NewClient(appsscript.ClientConfig{
		ScriptURL: cfg.ScriptURL,
		Timeout:   cfg.ScriptTimeout,
		Logger:    logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ScriptCircuitEnabled,
			FailureThreshold: cfg.ScriptCircuitFailureCount,
			OpenTimeout:      cfg.ScriptCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ScriptCircuitHalfOpenReq,
		},
	})
	feed := sheetfeed.NewClient(sheetfeed.ClientConfig{
		Timeout:  cfg.FeedTimeout,
		CacheTTL: cfg.FeedCacheTTL,
		Logger:   logger,
	})

	rosterRepo := memory.NewRosterRepository()
	itemRepo := memory.NewItemRepository()
	mutations := usecase.NewMutationController()

	attendanceSvc := usecase.NewAttendanceService(feed, cfg.AttendanceFeedURL, cfg.ComplianceWindowDays)
	financeSvc := usecase.NewFinanceService(feed, cfg.FinanceFeedURL, script)
	rosterSvc := usecase.NewRosterService(rosterRepo, script, mutations, logger, cfg.DrawPool)
	itemSvc := usecase.NewItemService(itemRepo, script, mutations, idgen.NewRandomGenerator(), logger)
	authSvc := usecase.NewAuthService(script)
	adminSvc := usecase.NewAdminService(script, feed, logger)

	refreshers := map[usecase.Section]usecase.Refresher{
		usecase.SectionRoster: rosterSvc.Refresh,
		usecase.SectionEvents: func(ctx context.Context) error {
			return itemSvc.Refresh(ctx, item.KindEvent)
		},
		usecase.SectionGames: func(ctx context.Context) error {
			return itemSvc.Refresh(ctx, item.KindGame)
		},
		usecase.SectionAttendance: func(ctx context.Context) error {
			_, err := attendanceSvc.Overview(ctx)
			return err
		},
		usecase.SectionFinance: func(ctx context.Context) error {
			_, err := financeSvc.Report(ctx, "")
			return err
		},
	}

	reconciler := usecase.NewReconciler(script, feed, refreshers, logger, usecase.ReconcilerConfig{
		Interval:   cfg.PollInterval,
		MaxWorkers: cfg.ReconcileMaxWorker,
		Timeout:    cfg.PollTimeout,
	})

	handler := httpapi.NewHandler(attendanceSvc, financeSvc, rosterSvc, itemSvc, authSvc, adminSvc, reconciler, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{Server: server, Reconciler: reconciler}, nil
}
