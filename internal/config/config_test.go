package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PAYBATCH_DATABASE_DRIVER", "memory")
	t.Setenv("PAYBATCH_AUTH_JWT_SECRET", "0123456789abcdef")
	t.Setenv("PAYBATCH_SERVER_ADDRESS", ":9090")
	t.Setenv("PAYBATCH_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 12*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "paybatch", cfg.Auth.Issuer)
	assert.EqualValues(t, 10, cfg.Database.MaxConns)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paybatch.yaml")
	content := `
database:
  driver: postgres
  dsn: postgres://localhost/paybatch
auth:
  jwt_secret: file-secret-0123456789
  access_token_ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/paybatch", cfg.Database.DSN)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "postgres without dsn",
			env:  map[string]string{"PAYBATCH_AUTH_JWT_SECRET": "0123456789abcdef"},
		},
		{
			name: "short secret",
			env: map[string]string{
				"PAYBATCH_DATABASE_DRIVER": "memory",
				"PAYBATCH_AUTH_JWT_SECRET": "short",
			},
		},
		{
			name: "unknown driver",
			env: map[string]string{
				"PAYBATCH_DATABASE_DRIVER": "sqlite",
				"PAYBATCH_AUTH_JWT_SECRET": "0123456789abcdef",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
