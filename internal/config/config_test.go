package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/tableorder/internal/session"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"POLL_INTERVAL", "BUSINESS_TZ_OFFSET_MINUTES", "STATUS_FLOW", "RUN_MIGRATIONS", "HTTP_ADDR", "CORS_ALLOW_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8090", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 345, cfg.TZOffsetMinutes)
	assert.Equal(t, "kitchen", cfg.StatusFlow)
	assert.Equal(t, 7, cfg.RevenueWindowDays)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("BUSINESS_TZ_OFFSET_MINUTES", "330")
	t.Setenv("STATUS_FLOW", "dashboard")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a, http://b")
	t.Setenv("AUTH_TOKEN", "tok")

	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 330, cfg.TZOffsetMinutes)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "Token tok", cfg.Session().AuthHeader())

	flow, err := cfg.Flow()
	require.NoError(t, err)
	assert.Equal(t, "dashboard", flow.Name)
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "often")
	t.Setenv("REVENUE_WINDOW_DAYS", "week")

	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 7, cfg.RevenueWindowDays)
}

func TestValidateDashboard(t *testing.T) {
	cfg := Config{
		BackendURL: "http://x", AuthToken: "t", BranchID: "b1",
		PollInterval: time.Second, RevenueWindowDays: 7, TZOffsetMinutes: 345,
	}
	require.NoError(t, cfg.ValidateDashboard())

	cfg.AuthToken = ""
	cfg.StatusFlow = "bar"
	err := cfg.ValidateDashboard()
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrMissingToken)
	assert.Contains(t, err.Error(), "unknown status flow")
}
