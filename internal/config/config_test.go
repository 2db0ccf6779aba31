package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, StorageDriverCloudinary, cfg.StorageDriver)
	require.Equal(t, "gema.authoring", cfg.NATSSubject)
	require.Equal(t, 5*time.Minute, cfg.AssignmentCacheTTL)
	require.Equal(t, 2*time.Hour, cfg.FormIdleTTL)
	require.Equal(t, 5, cfg.SubmitRateLimit)
	require.False(t, cfg.IsProduction())
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "secret")
	t.Setenv("GEMA_APP_PORT", ":9090")
	t.Setenv("GEMA_APP_ENV", "Production")
	t.Setenv("GEMA_STORAGE_DRIVER", "MinIO")
	t.Setenv("GEMA_MINIO_USE_SSL", "true")
	t.Setenv("GEMA_FORM_IDLE_TTL", "30m")
	t.Setenv("GEMA_SUBMIT_RATE_LIMIT", "12")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.True(t, cfg.IsProduction())
	require.Equal(t, StorageDriverMinio, cfg.StorageDriver)
	require.True(t, cfg.MinioUseSSL)
	require.Equal(t, 30*time.Minute, cfg.FormIdleTTL)
	require.Equal(t, 12, cfg.SubmitRateLimit)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "secret")
	t.Setenv("GEMA_ASSIGNMENT_CACHE_TTL", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "assignment.cache_ttl")

	t.Setenv("GEMA_ASSIGNMENT_CACHE_TTL", "5m")
	t.Setenv("GEMA_STORAGE_DRIVER", "ftp")

	_, err = Load()
	require.ErrorContains(t, err, "unsupported storage driver")
}
