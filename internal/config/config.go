package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andreasstove999/tableorder/internal/order"
	"github.com/andreasstove999/tableorder/internal/session"
)

type Config struct {
	HTTPAddr        string
	UpstreamTimeout time.Duration

	// Backend
	BackendURL string
	AuthToken  string
	BranchID   string

	// Table session (customer CLI)
	TableID      string
	TableNumber  string
	SessionToken string

	// Polling
	PollInterval      time.Duration
	TZOffsetMinutes   int
	StatusFlow        string
	RevenueWindowDays int

	// Infrastructure; empty disables the feature
	DatabaseDSN   string
	RunMigrations bool
	RabbitMQURL   string

	// CORS
	CORSAllowOrigins []string
}

func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8090"),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),

		BackendURL: getenv("BACKEND_URL", "http://localhost:8000"),
		AuthToken:  getenv("AUTH_TOKEN", ""),
		BranchID:   getenv("BRANCH_ID", ""),

		TableID:      getenv("TABLE_ID", ""),
		TableNumber:  getenv("TABLE_NUMBER", ""),
		SessionToken: getenv("TABLE_SESSION_TOKEN", ""),

		PollInterval:      parseDuration(getenv("POLL_INTERVAL", "5s"), 5*time.Second),
		TZOffsetMinutes:   envInt("BUSINESS_TZ_OFFSET_MINUTES", order.NepalOffsetMinutes),
		StatusFlow:        getenv("STATUS_FLOW", order.KitchenFlow.Name),
		RevenueWindowDays: envInt("REVENUE_WINDOW_DAYS", 7),

		DatabaseDSN:   getenv("DATABASE_DSN", ""),
		RunMigrations: envBool("RUN_MIGRATIONS", true),
		RabbitMQURL:   getenv("RABBITMQ_URL", ""),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "*")),
	}
}

// Session builds the explicit session the clients are constructed with.
func (c Config) Session() session.Session {
	return session.Session{
		BaseURL:      c.BackendURL,
		Token:        c.AuthToken,
		BranchID:     c.BranchID,
		TableID:      c.TableID,
		TableNumber:  c.TableNumber,
		SessionToken: c.SessionToken,
	}
}

// Flow resolves StatusFlow.
func (c Config) Flow() (order.Flow, error) {
	return order.FlowByName(c.StatusFlow)
}

// ValidateDashboard reports everything the dashboard cannot start without.
func (c Config) ValidateDashboard() error {
	errs := []error{c.Session().ValidateStaff()}
	if _, err := c.Flow(); err != nil {
		errs = append(errs, err)
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval))
	}
	if c.RevenueWindowDays <= 0 {
		errs = append(errs, errors.New("REVENUE_WINDOW_DAYS must be positive"))
	}
	if c.TZOffsetMinutes < -12*60 || c.TZOffsetMinutes > 14*60 {
		errs = append(errs, fmt.Errorf("BUSINESS_TZ_OFFSET_MINUTES out of range: %d", c.TZOffsetMinutes))
	}
	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return b
}
