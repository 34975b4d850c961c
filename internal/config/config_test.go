package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("HR_API_BASE_URL", "https://hr.example.com/api/")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "https://hr.example.com/api", cfg.HRAPI.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.HRAPI.Timeout)
	assert.False(t, cfg.HRAPI.UsesClientCredentials())
	assert.Equal(t, "none", cfg.Storage.Type)
	assert.False(t, cfg.Audit.Enabled())
	assert.Equal(t, 30*time.Minute, cfg.Views.IdleTTL)
	assert.Equal(t, 5*time.Minute, cfg.Views.SweepInterval)
	assert.Empty(t, cfg.HRAPI.Scopes)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("HR_API_CLIENT_ID", "reports")
	t.Setenv("HR_API_CLIENT_SECRET", "s3cret")
	t.Setenv("HR_API_TOKEN_URL", "https://auth.example.com/token")
	t.Setenv("HR_API_SCOPES", "reports.read, actions.write,")
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("STORAGE_S3_BUCKET", "hr-exports")
	t.Setenv("AUDIT_DATABASE_URL", "postgres://localhost/audit")
	t.Setenv("VIEW_IDLE_TTL", "10m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.True(t, cfg.HRAPI.UsesClientCredentials())
	assert.Equal(t, []string{"reports.read", "actions.write"}, cfg.HRAPI.Scopes)
	assert.Equal(t, "hr-exports", cfg.Storage.Bucket)
	assert.True(t, cfg.Audit.Enabled())
	assert.Equal(t, 10*time.Minute, cfg.Views.IdleTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET_KEY": ""}, "JWT_SECRET_KEY is required"},
		{"missing base url", map[string]string{"HR_API_BASE_URL": ""}, "HR_API_BASE_URL is required"},
		{"bad port", map[string]string{"APP_PORT": "http"}, "invalid APP_PORT"},
		{"bad timeout", map[string]string{"HR_API_TIMEOUT": "soon"}, "invalid HR_API_TIMEOUT"},
		{"client id without secret", map[string]string{"HR_API_CLIENT_ID": "reports", "HR_API_TOKEN_URL": "https://auth"}, "HR_API_CLIENT_SECRET is required"},
		{"s3 without bucket", map[string]string{"STORAGE_TYPE": "s3"}, "STORAGE_S3_BUCKET is required"},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "minio"}, "unsupported STORAGE_TYPE"},
		{"negative ttl", map[string]string{"VIEW_IDLE_TTL": "-1m"}, "VIEW_IDLE_TTL must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadUpstream_NoJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("HR_API_BASE_URL", "https://hr.example.com")

	cfg, err := LoadUpstream()
	require.NoError(t, err)
	assert.Equal(t, "https://hr.example.com", cfg.HRAPI.BaseURL)

	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET_KEY is required")
}
