package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "5", cfg.App.CommissionRate.String())
	assert.Equal(t, time.Duration(0), cfg.Jobs.MaturitySweepInterval)
	assert.Equal(t, 100, cfg.Jobs.SweepBatchSize)
	assert.Equal(t, "", cfg.Redis.Host)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Contains(t, cfg.GetDSN(), "dbname=yield_ledger")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("COMMISSION_RATE", "7.5")
	t.Setenv("MATURITY_SWEEP_INTERVAL", "90s")
	t.Setenv("SWEEP_BATCH_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "7.5", cfg.App.CommissionRate.String())
	assert.Equal(t, 90*time.Second, cfg.Jobs.MaturitySweepInterval)
	assert.Equal(t, 100, cfg.Jobs.SweepBatchSize)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"bad commission", map[string]string{"COMMISSION_RATE": "five"}},
		{"negative commission", map[string]string{"COMMISSION_RATE": "-1"}},
		{"bad interval", map[string]string{"MATURITY_SWEEP_INTERVAL": "soon"}},
		{"bad rate", map[string]string{"RATE_LIMIT_RPS": "fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_HOST", "db.internal")

	db, err := LoadDatabase()
	require.NoError(t, err)
	assert.Contains(t, db.DSN(), "host=db.internal")
}
