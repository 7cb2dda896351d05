package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/tableorder/internal/config"
	"github.com/andreasstove999/tableorder/internal/middleware"
	"github.com/andreasstove999/tableorder/internal/money"
	"github.com/andreasstove999/tableorder/internal/order"
	"github.com/andreasstove999/tableorder/internal/poller"
	"github.com/andreasstove999/tableorder/internal/receipt"
)

const (
	maxReportDays         = 90
	defaultRefreshTimeout = 10 * time.Second
)

type Handler struct {
	logger   *log.Logger
	cfg      config.Config
	poller   *poller.Poller
	revenue  RevenueHistory
	arrivals ArrivalLog
	now      func() time.Time
}

type ordersResponse struct {
	View   string             `json:"view"`
	Count  int                `json:"count"`
	Orders []order.Normalized `json:"orders"`
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	var orders []order.Normalized
	switch view {
	case "", "all":
		view = "all"
		orders = h.poller.Snapshot()
	case "today":
		orders = h.poller.Today(h.now())
	default:
		middleware.WriteError(w, r, http.StatusBadRequest, "view must be all or today")
		return
	}
	if orders == nil {
		orders = []order.Normalized{}
	}
	writeJSON(w, http.StatusOK, ordersResponse{View: view, Count: len(orders), Orders: orders})
}

// Refresh joins or starts the shared fetch. It runs detached from the
// request so a client hanging up does not fail the poll that shares it.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	timeout := h.cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
	defer cancel()

	orders, err := h.poller.FetchSnapshot(ctx)
	if err != nil {
		h.logger.Printf("refresh failed: %v", err)
		middleware.WriteError(w, r, http.StatusBadGateway, "could not refresh orders")
		return
	}
	writeJSON(w, http.StatusOK, ordersResponse{View: "all", Count: len(orders), Orders: orders})
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	o, ok := h.poller.Order(chi.URLParam(r, "orderId"))
	if !ok {
		middleware.WriteError(w, r, http.StatusNotFound, "order not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := receipt.Render(w, o, h.cfg.TZOffsetMinutes); err != nil {
		h.logger.Printf("render receipt %s: %v", o.ID, err)
	}
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		middleware.WriteError(w, r, http.StatusBadRequest, "body must be {\"status\": \"...\"}")
		return
	}
	status := order.NormalizeStatus(req.Status)
	if !h.poller.Flow().Contains(status) {
		middleware.WriteError(w, r, http.StatusBadRequest, "unknown status "+strconv.Quote(req.Status))
		return
	}

	updated, err := h.poller.ChangeStatus(r.Context(), orderID, status)
	h.writeStatusResult(w, r, orderID, updated, err)
}

func (h *Handler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	updated, err := h.poller.Advance(r.Context(), orderID)
	h.writeStatusResult(w, r, orderID, updated, err)
}

func (h *Handler) writeStatusResult(w http.ResponseWriter, r *http.Request, orderID string, updated order.Normalized, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, updated)
	case errors.Is(err, poller.ErrUnknownOrder):
		middleware.WriteError(w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, poller.ErrTerminalStatus), errors.Is(err, poller.ErrIllegalTransition):
		middleware.WriteError(w, r, http.StatusConflict, err.Error())
	default:
		h.logger.Printf("change status of %s: %v", orderID, err)
		middleware.WriteError(w, r, http.StatusBadGateway, "backend rejected the status change")
	}
}

type revenueResponse struct {
	Days  []order.DaySummary `json:"days"`
	Total decimal.Decimal    `json:"total"`
}

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	days, ok := h.days(w, r)
	if !ok {
		return
	}
	rows := h.poller.LastNDays(h.now(), days)
	amounts := make([]decimal.Decimal, len(rows))
	for i, row := range rows {
		amounts[i] = row.Revenue
	}
	writeJSON(w, http.StatusOK, revenueResponse{Days: rows, Total: money.Sum(amounts...)})
}

func (h *Handler) RevenueHistory(w http.ResponseWriter, r *http.Request) {
	if h.revenue == nil {
		middleware.WriteError(w, r, http.StatusServiceUnavailable, "revenue history is not enabled")
		return
	}
	days, ok := h.days(w, r)
	if !ok {
		return
	}
	rows, err := h.revenue.History(r.Context(), h.cfg.BranchID, h.now(), days, h.cfg.TZOffsetMinutes)
	if err != nil {
		h.logger.Printf("revenue history: %v", err)
		middleware.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": rows})
}

func (h *Handler) Arrivals(w http.ResponseWriter, r *http.Request) {
	if h.arrivals == nil {
		middleware.WriteError(w, r, http.StatusServiceUnavailable, "arrival log is not enabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			middleware.WriteError(w, r, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}
	list, err := h.arrivals.Recent(r.Context(), h.cfg.BranchID, limit)
	if err != nil {
		h.logger.Printf("arrivals: %v", err)
		middleware.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"arrivals": list})
}

func (h *Handler) PollerStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.poller.Stats())
}

func (h *Handler) days(w http.ResponseWriter, r *http.Request) (int, bool) {
	days := h.cfg.RevenueWindowDays
	if days <= 0 {
		days = 7
	}
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxReportDays {
			middleware.WriteError(w, r, http.StatusBadRequest, "days must be between 1 and 90")
			return 0, false
		}
		days = n
	}
	return days, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
