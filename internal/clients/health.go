package clients

import (
	"context"
	"net/http"
	"time"
)

type HealthProbe struct {
	Name     string
	Client   *Client
	Path     string
	RawQuery string
}

type HealthResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	Breaker    string `json:"breaker,omitempty"`
	Error      string `json:"error,omitempty"`
}

func CheckHealth(ctx context.Context, probe HealthProbe) HealthResult {
	// Short probe timeout
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	res := HealthResult{Name: probe.Name, Breaker: probe.Client.BreakerState()}
	resp, err := probe.Client.Do(ctx, http.MethodGet, probe.Path, probe.RawQuery, nil, http.Header{})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	return res
}
