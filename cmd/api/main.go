package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/reconcile"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/attendance-engine/internal/service/calendar"
	dashboardService "github.com/cmlabs-hris/attendance-engine/internal/service/dashboard"
	payrollService "github.com/cmlabs-hris/attendance-engine/internal/service/payroll"
	policyService "github.com/cmlabs-hris/attendance-engine/internal/service/policy"
	reconcileService "github.com/cmlabs-hris/attendance-engine/internal/service/reconcile"
	"github.com/cmlabs-hris/attendance-engine/internal/worker"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.SlogLevel(), "attendance-engine", version, cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	loc := cfg.Location()

	ledgerRepo := postgresql.NewLedgerRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	policySvc := policyService.NewPolicyService(policyRepo)
	workingDays := calendarService.NewWorkingDays(holidayRepo)
	attendanceSvc := attendanceService.NewAttendanceService(ledgerRepo, employeeRepo, policySvc, loc, nil)
	dashboardSvc := dashboardService.NewDashboardService(ledgerRepo, employeeRepo, workingDays, loc, nil)
	payrollSvc := payrollService.NewPayrollService(ledgerRepo, employeeRepo, workingDays, payrollService.Settings{
		Mode:      payroll.WorkingDaysMode(cfg.Payroll.WorkingDaysMode),
		FixedDays: cfg.Payroll.FixedWorkingDays,
	}, loc, nil)
	reconcileSvc := reconcileService.NewReconcileService(ledgerRepo, employeeRepo, policySvc, workingDays, reconcileService.Options{
		Location:     loc,
		Grace:        cfg.Reconciler.Grace,
		FetchTimeout: cfg.Reconciler.FetchTimeout,
	})

	// Reconcile-now requests go through Redis when it is configured.
	var dispatcher reconcile.Dispatcher
	var pool *worker.Pool
	if cfg.Redis.URL != "" {
		rdb, err := database.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rdb.Close()

		dispatcher = worker.NewDispatcher(rdb, loc, nil, cfg.Redis.DedupWindow)
		pool = worker.NewPool(rdb, reconcileSvc, cfg.Redis.Workers, cfg.Redis.JobTimeout)
		pool.Start(ctx)
	} else {
		slog.Warn("REDIS_URL not set, reconciliation requests run inline")
		dispatcher = reconcileService.NewSyncDispatcher(reconcileSvc, loc, nil, cfg.Reconciler.RequestTimeout)
	}

	scheduler := cron.NewScheduler()
	jobs := cron.NewAttendanceJobs(reconcileSvc, loc, cfg.Reconciler.LookbackDays, nil)
	jobs.RegisterJobs(scheduler, cfg.Reconciler.SweepInterval, cfg.Reconciler.InvariantInterval)
	scheduler.Start(ctx)

	router := appHTTP.NewRouter(logger, JWTService, appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		Policy:     appHTTP.NewPolicyHandler(policySvc),
		Reconcile:  appHTTP.NewReconcileHandler(reconcileSvc, dispatcher),
	}, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       slog.LevelInfo,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stop()
			scheduler.Stop()
			if pool != nil {
				pool.Wait()
			}
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	scheduler.Stop()
	if pool != nil {
		pool.Wait()
	}
	return nil
}
