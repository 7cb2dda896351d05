package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/tableorder/internal/arrivals"
	"github.com/andreasstove999/tableorder/internal/clients"
	"github.com/andreasstove999/tableorder/internal/config"
	"github.com/andreasstove999/tableorder/internal/middleware"
	"github.com/andreasstove999/tableorder/internal/poller"
	"github.com/andreasstove999/tableorder/internal/report"
)

// RevenueHistory serves persisted rollups; nil when persistence is off.
type RevenueHistory interface {
	History(ctx context.Context, branchID string, now time.Time, n, offsetMinutes int) ([]report.DailyRevenue, error)
}

// ArrivalLog serves the arrival log; nil when persistence is off.
type ArrivalLog interface {
	Recent(ctx context.Context, branchID string, limit int) ([]arrivals.Arrival, error)
}

type Deps struct {
	Logger *log.Logger
	Cfg    config.Config

	Poller       *poller.Poller
	HealthProbes []clients.HealthProbe
	Revenue      RevenueHistory
	Arrivals     ArrivalLog

	Now func() time.Time
}

func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.CorrelationID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))

	health := &HealthHandler{Probes: d.HealthProbes}
	r.Get("/health", health.Service)
	r.Get("/health/upstreams", health.Upstreams)

	h := &Handler{
		logger:   d.Logger,
		cfg:      d.Cfg,
		poller:   d.Poller,
		revenue:  d.Revenue,
		arrivals: d.Arrivals,
		now:      d.Now,
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/refresh", h.Refresh)
			r.Get("/{orderId}/receipt", h.Receipt)
			r.Patch("/{orderId}/status", h.ChangeStatus)
			r.Post("/{orderId}/advance", h.AdvanceStatus)
		})
		r.Get("/revenue", h.Revenue)
		r.Get("/revenue/history", h.RevenueHistory)
		r.Get("/arrivals", h.Arrivals)
		r.Get("/poller", h.PollerStats)
	})

	return r
}
