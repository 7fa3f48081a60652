package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/custom-accounting/cmd/server/cli"
	"github.com/odyssey-erp/custom-accounting/internal/accounting"
	"github.com/odyssey-erp/custom-accounting/internal/app"
	"github.com/odyssey-erp/custom-accounting/internal/inquiry"
	inquiryhttp "github.com/odyssey-erp/custom-accounting/internal/inquiry/http"
	"github.com/odyssey-erp/custom-accounting/internal/observability"
	"github.com/odyssey-erp/custom-accounting/internal/platform/cache"
	"github.com/odyssey-erp/custom-accounting/internal/platform/db"
	"github.com/odyssey-erp/custom-accounting/internal/platform/resilience"
	"github.com/odyssey-erp/custom-accounting/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobsCommand(ctx, cfg, os.Args[2:]); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if cfg.PGMigrate {
		if err := db.Migrate(cfg.PGDSN); err != nil {
			logger.Error("apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name:                "ledger",
		ConsecutiveFailures: cfg.LedgerBreakerFailures,
		OpenTimeout:         cfg.LedgerBreakerTimeout,
	}, logger)
	ledgerStore := inquiry.NewPostgresStore(dbpool, breaker)
	engine := inquiry.NewEngine(ledgerStore, ledgerStore, ledgerStore,
		inquiry.WithLogger(logger),
		inquiry.WithMetrics(inquiry.NewMetrics(metrics.Registerer())),
		inquiry.WithConcurrency(cfg.InquiryPeriodConcurrency),
	)
	inquiryHandler := inquiryhttp.NewHandler(logger, engine, inquiry.NewBrowser(ledgerStore))

	treeCache := accounting.NewTreeCache(redisClient, cfg.TreeCacheTTL, logger)
	accountingService := accounting.NewService(accounting.NewRepository(dbpool), treeCache, logger)
	accountingHandler := accounting.NewHandler(logger, accountingService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		InquiryHandler:    inquiryHandler,
		AccountingHandler: accountingHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
		Database:          dbpool,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runJobsCommand(ctx context.Context, cfg *app.Config, args []string) error {
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer jobsCLI.Close()

	if len(args) == 0 {
		return fmt.Errorf("usage: server jobs trigger <task> [company] | stats | scheduled")
	}
	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return fmt.Errorf("usage: server jobs trigger <task> [company]")
		}
		company := ""
		if len(args) > 2 {
			company = args[2]
		}
		info, err := jobsCLI.Trigger(ctx, args[1], company)
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	case "scheduled":
		tasks, err := jobsCLI.ListScheduled(ctx, 20)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			fmt.Printf("%s %s next=%s\n", t.ID, t.Type, t.NextProcessAt.Format(time.RFC3339))
		}
	default:
		return fmt.Errorf("unknown jobs command %q", args[0])
	}
	return nil
}
