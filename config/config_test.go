package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)

	assert.Equal(t, 24, cfg.Waitlist.DefaultConfirmationHours)
	assert.Equal(t, 48, cfg.Waitlist.MaxConfirmationHours)
	assert.True(t, decimal.NewFromInt(500).Equal(cfg.Waitlist.DefaultPaymentAmount))
	assert.Equal(t, 30*time.Second, cfg.Waitlist.MonitorInterval)
	assert.Equal(t, 5, cfg.Waitlist.TopCandidates)
	assert.Equal(t, time.Hour, cfg.Waitlist.ReservationGrace)
	assert.Equal(t, 2*time.Hour, cfg.Waitlist.ReminderLead)

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("WAITLIST_DEFAULT_CONFIRMATION_HOURS", "12")
	t.Setenv("WAITLIST_MONITOR_INTERVAL", "10s")
	t.Setenv("WAITLIST_DEFAULT_PAYMENT_AMOUNT", "750.50")
	t.Setenv("WAITLIST_REMINDER_LEAD", "45m")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 12, cfg.Waitlist.DefaultConfirmationHours)
	assert.Equal(t, 10*time.Second, cfg.Waitlist.MonitorInterval)
	assert.True(t, decimal.RequireFromString("750.50").Equal(cfg.Waitlist.DefaultPaymentAmount))
	assert.Equal(t, 45*time.Minute, cfg.Waitlist.ReminderLead)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, "db.internal", cfg.DB.Host)
}

func TestLoadConfig_InvalidDurationsFallBack(t *testing.T) {
	t.Setenv("WAITLIST_MONITOR_INTERVAL", "soon")
	t.Setenv("WAITLIST_DEFAULT_PAYMENT_AMOUNT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Waitlist.MonitorInterval)
	assert.True(t, decimal.NewFromInt(500).Equal(cfg.Waitlist.DefaultPaymentAmount))
}
