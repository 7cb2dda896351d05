package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/tableorder/internal/arrivals"
	"github.com/andreasstove999/tableorder/internal/clients"
	"github.com/andreasstove999/tableorder/internal/config"
	"github.com/andreasstove999/tableorder/internal/order"
	"github.com/andreasstove999/tableorder/internal/poller"
	"github.com/andreasstove999/tableorder/internal/report"
)

const ordersJSON = `[
	{"id":1,"table":1,"table_number":"4","status":"pending","total_price":"99.99","created_at":"2024-01-15T10:00:00Z",
	 "items":[{"menu":1,"name":"Momo","quantity":3,"unit":"plate","price":"33.33","total":"99.99"}]},
	{"id":2,"table":2,"table_number":"7","status":"served","total_price":"40.00","created_at":"2024-01-14T10:00:00Z","items":[]},
	{"id":3,"table":2,"table_number":"7","status":"cancelled","total_price":"15.00","created_at":"2024-01-15T09:00:00Z","items":[]}
]`

// now is 2024-01-15 16:45 in the business offset
var now = time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)

type stubBackend struct {
	mu          sync.Mutex
	patchStatus int
	patches     []string
}

func newStubBackend(t *testing.T) (*httptest.Server, *stubBackend) {
	t.Helper()
	sb := &stubBackend{patchStatus: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sb.mu.Lock()
		defer sb.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/orders/":
			_, _ = w.Write([]byte(ordersJSON))
		case r.Method == http.MethodPatch:
			b, _ := io.ReadAll(r.Body)
			sb.patches = append(sb.patches, r.URL.Path+" "+string(b))
			w.WriteHeader(sb.patchStatus)
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, sb
}

func (sb *stubBackend) setPatchStatus(code int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.patchStatus = code
}

func (sb *stubBackend) patched() []string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return append([]string(nil), sb.patches...)
}

type fakeHistory struct{ days int }

func (f *fakeHistory) History(_ context.Context, branchID string, _ time.Time, n, _ int) ([]report.DailyRevenue, error) {
	f.days = n
	return []report.DailyRevenue{{BranchID: branchID, BusinessDate: "2024-01-15", Orders: 2}}, nil
}

type fakeArrivalLog struct{}

func (fakeArrivalLog) Recent(_ context.Context, branchID string, limit int) ([]arrivals.Arrival, error) {
	return []arrivals.Arrival{{OrderID: "1", BranchID: branchID}}, nil
}

func newTestRouter(t *testing.T, deps func(*Deps)) (http.Handler, *stubBackend) {
	t.Helper()
	srv, sb := newStubBackend(t)

	base := clients.NewClient("backend", srv.URL, "secret", &http.Client{Timeout: 5 * time.Second})
	cfg := config.Config{
		BranchID:          "b1",
		TZOffsetMinutes:   order.NepalOffsetMinutes,
		RevenueWindowDays: 7,
		CORSAllowOrigins:  []string{"*"},
	}
	p := poller.New(clients.NewOrderClient(base), poller.Config{
		BranchID:      cfg.BranchID,
		OffsetMinutes: cfg.TZOffsetMinutes,
		Flow:          order.KitchenFlow,
	}, poller.WithClock(func() time.Time { return now }))
	_, err := p.FetchSnapshot(context.Background())
	require.NoError(t, err)

	d := Deps{
		Logger:       log.New(io.Discard, "", 0),
		Cfg:          cfg,
		Poller:       p,
		HealthProbes: []clients.HealthProbe{{Name: "backend", Client: base, Path: "/api/orders/", RawQuery: "branch=b1"}},
		Now:          func() time.Time { return now },
	}
	if deps != nil {
		deps(&d)
	}
	return NewRouter(d), sb
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthRoute(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "dashboard", body["service"])
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-Id"))
}

func TestHealthUpstreams(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := do(t, router, http.MethodGet, "/health/upstreams", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ok":true`)
}

func TestListOrders(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := do(t, router, http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var all ordersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, "1", all.Orders[0].ID, "newest first")

	rr = do(t, router, http.MethodGet, "/api/orders?view=today", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var today ordersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &today))
	assert.Equal(t, 2, today.Count)

	rr = do(t, router, http.MethodGet, "/api/orders?view=week", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReceipt(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := do(t, router, http.MethodGet, "/api/orders/1/receipt", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rr.Body.String(), "Total: Rs. 99.99")

	rr = do(t, router, http.MethodGet, "/api/orders/999/receipt", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestChangeStatus(t *testing.T) {
	t.Run("success writes through", func(t *testing.T) {
		router, sb := newTestRouter(t, nil)

		rr := do(t, router, http.MethodPatch, "/api/orders/1/status", `{"status":"Preparing"}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, []string{`/api/orders/1/ {"status":"preparing"}`}, sb.patched())

		var got order.Normalized
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, order.StatusPreparing, got.Status)
	})

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"bad body", "/api/orders/1/status", `nope`, http.StatusBadRequest},
		{"unknown status", "/api/orders/1/status", `{"status":"flying"}`, http.StatusBadRequest},
		{"status outside flow", "/api/orders/1/status", `{"status":"paid"}`, http.StatusBadRequest},
		{"terminal", "/api/orders/2/status", `{"status":"cancelled"}`, http.StatusConflict},
		{"cancelled is terminal", "/api/orders/3/status", `{"status":"pending"}`, http.StatusConflict},
		{"unknown order", "/api/orders/999/status", `{"status":"ready"}`, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, sb := newTestRouter(t, nil)
			rr := do(t, router, http.MethodPatch, tc.path, tc.body)
			assert.Equal(t, tc.code, rr.Code, rr.Body.String())
			assert.Empty(t, sb.patched())

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotNil(t, resp["error"])
		})
	}

	t.Run("backend failure", func(t *testing.T) {
		router, sb := newTestRouter(t, nil)
		sb.setPatchStatus(http.StatusInternalServerError)

		rr := do(t, router, http.MethodPatch, "/api/orders/1/status", `{"status":"ready"}`)
		assert.Equal(t, http.StatusBadGateway, rr.Code)

		rr = do(t, router, http.MethodGet, "/api/orders", "")
		assert.Contains(t, rr.Body.String(), `"status":"Pending"`)
	})
}

func TestRevenue(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := do(t, router, http.MethodGet, "/api/revenue?days=2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp revenueResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "2024-01-14", resp.Days[0].Date)
	assert.Equal(t, "40", resp.Days[0].Revenue.String())
	assert.Equal(t, "99.99", resp.Days[1].Revenue.String(), "cancelled order excluded")
	assert.Equal(t, "139.99", resp.Total.String())

	rr = do(t, router, http.MethodGet, "/api/revenue", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Days, 7)

	for _, bad := range []string{"0", "-1", "abc", "365"} {
		rr = do(t, router, http.MethodGet, "/api/revenue?days="+bad, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

func TestPersistenceRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, http.MethodGet, "/api/revenue/history", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, http.MethodGet, "/api/arrivals", "").Code)

	hist := &fakeHistory{}
	router, _ = newTestRouter(t, func(d *Deps) {
		d.Revenue = hist
		d.Arrivals = fakeArrivalLog{}
	})

	rr := do(t, router, http.MethodGet, "/api/revenue/history?days=3", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, hist.days)
	assert.Contains(t, rr.Body.String(), `"branchId":"b1"`)

	rr = do(t, router, http.MethodGet, "/api/arrivals?limit=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"orderId":"1"`)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/arrivals?limit=0", "").Code)
}

func TestPollerStatsAndRefresh(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := do(t, router, http.MethodPost, "/api/orders/refresh", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/poller", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var st poller.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, "kitchen", st.Flow)
	assert.Equal(t, 3, st.SnapshotSize)
	assert.Equal(t, uint64(2), st.Fetches)
}

func TestRefreshSurvivesClientHangup(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/refresh", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestCORSPreflightAllowsRefresh(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders/refresh", nil)
	req.Header.Set("Origin", "http://admin.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestAdvanceStatus(t *testing.T) {
	router, sb := newTestRouter(t, nil)

	rr := do(t, router, http.MethodPost, "/api/orders/1/advance", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{`/api/orders/1/ {"status":"preparing"}`}, sb.patched())

	var got order.Normalized
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, order.StatusPreparing, got.Status)

	assert.Equal(t, http.StatusConflict, do(t, router, http.MethodPost, "/api/orders/2/advance", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/api/orders/99/advance", "").Code)
	assert.Len(t, sb.patched(), 1)
}

func TestCorrelationIDEcho(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-Id", "abc")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get("X-Correlation-Id"))
}
