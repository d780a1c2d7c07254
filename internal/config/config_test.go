package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bayesplay/internal/errors"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GIN_MODE", "REQUEST_TIMEOUT", "BAYESPLAY_REL_TOL", "BAYESPLAY_ABS_TOL",
		"BAYESPLAY_MAX_SUBDIVISIONS", "LOG_LEVEL", "EXPORT_DIR",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 1e-10, cfg.Integration.RelTol)
	assert.Equal(t, 2000, cfg.Integration.MaxSubdivisions)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, ".", cfg.Export.Dir)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BAYESPLAY_REL_TOL", "1e-8")
	t.Setenv("BAYESPLAY_MAX_SUBDIVISIONS", "500")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 1e-8, cfg.Integration.RelTol)
	assert.Equal(t, 500, cfg.Integration.MaxSubdivisions)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)

	q := cfg.Integration.Quadrature(slog.Default())
	assert.Equal(t, 1e-8, q.RelTol)
	assert.Equal(t, 500, q.MaxSubdivisions)
	assert.NotNil(t, q.Logger)
}

func TestFromEnv_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"negative tolerance", "BAYESPLAY_REL_TOL", "-1"},
		{"no subdivisions", "BAYESPLAY_MAX_SUBDIVISIONS", "0"},
		{"unknown gin mode", "GIN_MODE", "loud"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
