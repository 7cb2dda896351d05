package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/andreasstove999/tableorder/internal/middleware"
	"github.com/andreasstove999/tableorder/internal/session"
)

const (
	headerAuthorization = "Authorization"
	// excerpt length kept from error bodies
	maxErrorBody = 512
)

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
	Token   string

	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewHTTPClient returns the shared outbound client: traced transport and a
// hard timeout on every call.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func NewClient(name, baseURL, token string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	return &Client{
		Name:    name,
		BaseURL: u,
		HTTP:    httpClient,
		Token:   strings.TrimSpace(token),
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     15 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}),
	}
}

// BreakerState reports the circuit breaker state ("closed", "open", "half-open").
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Do sends an authenticated request. Transport failures (including an open
// breaker) come back as *NetworkError; any response is returned as is.
func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, inHeaders http.Header) (*http.Response, error) {
	auth := session.Session{Token: c.Token}.AuthHeader()
	if auth == "" {
		return nil, &AuthError{Err: ErrNoToken}
	}

	rel := &url.URL{Path: strings.TrimPrefix(path, "/"), RawQuery: rawQuery}
	u := c.BaseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	copyHeaders(req.Header, inHeaders)
	req.Header.Set(headerAuthorization, auth)
	req.Header.Set("Accept", "application/json")
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	// Ensure correlation id propagated downstream
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.HTTP.Do(req)
	})
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return resp, nil
}

// doJSON runs one JSON round trip and classifies every failure, wrapping it
// in a FetchError named op. out may be nil.
func (c *Client) doJSON(ctx context.Context, op, method, path, rawQuery string, in, out any, headers http.Header) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &FetchError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	resp, err := c.Do(ctx, method, path, rawQuery, body, headers)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return &FetchError{Op: op, Err: err}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) && (resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusNoContent) {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &FetchError{Op: op, Err: &NetworkError{Err: err}}
		}
		return &FetchError{Op: op, Err: &DecodeError{Err: err}}
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return nil
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if isHopByHopHeader(k) {
			continue
		}
		if strings.EqualFold(k, "Host") || strings.EqualFold(k, headerAuthorization) {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Hop-by-hop headers (RFC 7230)
func isHopByHopHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Connection", "Proxy-Connection", "Keep-Alive",
		"Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	default:
		return false
	}
}
