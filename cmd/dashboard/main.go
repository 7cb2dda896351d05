package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreasstove999/tableorder/internal/arrivals"
	"github.com/andreasstove999/tableorder/internal/clients"
	"github.com/andreasstove999/tableorder/internal/config"
	"github.com/andreasstove999/tableorder/internal/db"
	httpapi "github.com/andreasstove999/tableorder/internal/http"
	"github.com/andreasstove999/tableorder/internal/notify"
	"github.com/andreasstove999/tableorder/internal/poller"
	"github.com/andreasstove999/tableorder/internal/report"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[dashboard] ", log.LstdFlags|log.Lmicroseconds)

	if err := cfg.ValidateDashboard(); err != nil {
		logger.Fatalf("config: %v", err)
	}
	flow, _ := cfg.Flow()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backend client (shared)
	backend := clients.NewClient("backend", cfg.BackendURL, cfg.AuthToken, clients.NewHTTPClient(cfg.UpstreamTimeout))
	orders := clients.NewOrderClient(backend)

	// Notifications: always logged, also published when a broker is configured
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	conn, err := notify.DialRabbit(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("rabbitmq: %v", err)
	}
	if conn != nil {
		defer conn.Close()
		rn, err := notify.NewRabbitNotifier(conn, logger)
		if err != nil {
			logger.Fatalf("rabbitmq notifier: %v", err)
		}
		defer rn.Close()
		notifiers = append(notifiers, rn)
		logger.Printf("publishing notices to exchange %s", notify.EventsExchange)
	}

	pollerOpts := []poller.Option{
		poller.WithLogger(logger),
		poller.WithNotifier(notifiers),
	}
	deps := httpapi.Deps{
		Logger: logger,
		Cfg:    cfg,
		HealthProbes: []clients.HealthProbe{
			{Name: "backend", Client: backend, Path: "/api/orders/", RawQuery: url.Values{"branch": {cfg.BranchID}}.Encode()},
		},
	}

	// Persistence is optional
	if cfg.DatabaseDSN != "" {
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.Fatalf("db migrate: %v", err)
			}
		}

		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("db pool: %v", err)
		}
		defer pool.Close()

		sqlDB, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("db: %v", err)
		}
		defer sqlDB.Close()

		revenue := report.NewService(report.NewPostgresRepository(pool), logger)
		arrivalLog := arrivals.NewRepository(sqlDB)

		pollerOpts = append(pollerOpts, poller.WithRevenueRecorder(revenue), poller.WithArrivalRecorder(arrivalLog))
		deps.Revenue = revenue
		deps.Arrivals = arrivalLog
	} else {
		logger.Printf("DATABASE_DSN not set; revenue history and arrival log disabled")
	}

	p := poller.New(orders, poller.Config{
		BranchID:          cfg.BranchID,
		Interval:          cfg.PollInterval,
		OffsetMinutes:     cfg.TZOffsetMinutes,
		Flow:              flow,
		RevenueWindowDays: cfg.RevenueWindowDays,
	}, pollerOpts...)
	deps.Poller = p

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("poller stopped: %v", err)
		}
	}()

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	<-pollDone
	logger.Printf("shutdown complete")
}
