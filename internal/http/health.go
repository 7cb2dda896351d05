package httpapi

import (
	"net/http"
	"sync"

	"github.com/andreasstove999/tableorder/internal/clients"
)

type HealthHandler struct {
	Probes []clients.HealthProbe
}

func (h *HealthHandler) Service(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "dashboard",
	})
}

func (h *HealthHandler) Upstreams(w http.ResponseWriter, r *http.Request) {
	results := make([]clients.HealthResult, len(h.Probes))

	var wg sync.WaitGroup
	wg.Add(len(h.Probes))
	for i := range h.Probes {
		i := i
		go func() {
			defer wg.Done()
			results[i] = clients.CheckHealth(r.Context(), h.Probes[i])
		}()
	}
	wg.Wait()

	status := "ok"
	for _, res := range results {
		if !res.OK {
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"service":  "dashboard",
		"upstream": results,
	})
}
