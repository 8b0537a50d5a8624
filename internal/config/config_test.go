package config

import (
	"testing"
	"time"

	"dashviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "MAX_UPLOAD_MB", "NUMERIC_THRESHOLD", "TEMPORAL_THRESHOLD", "DASHBOARD_COLUMNS", "SESSION_IDLE_MINUTES", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, 50, cfg.Upload.MaxSizeMB)
	assert.Equal(t, int64(50<<20), cfg.Upload.MaxUploadBytes())
	assert.Equal(t, 0.5, cfg.Inference.NumericThreshold)
	assert.Equal(t, 0.5, cfg.Inference.TemporalThreshold)
	assert.Equal(t, 2, cfg.Dashboard.Columns)
	assert.Equal(t, 60, cfg.Session.IdleMinutes)
	assert.Equal(t, time.Hour, cfg.Session.IdleTimeout())
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("MAX_UPLOAD_MB", "10")
	t.Setenv("DASHBOARD_COLUMNS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, 10, cfg.Upload.MaxSizeMB)
	assert.Equal(t, 3, cfg.Dashboard.Columns)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"gin mode", "GIN_MODE", "verbose"},
		{"upload size", "MAX_UPLOAD_MB", "-1"},
		{"threshold", "NUMERIC_THRESHOLD", "1.5"},
		{"columns", "DASHBOARD_COLUMNS", "9"},
		{"session idle", "SESSION_IDLE_MINUTES", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
