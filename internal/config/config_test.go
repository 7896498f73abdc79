package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9090
database:
  host: db.internal
  password: from-file
storage:
  driver: minio
  bucket: photos
jwt:
  secret: file-secret
  ttl: 24h
moderation:
  moderator_emails: ["  Mod@Example.com "]
  max_photos_per_user: 4
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, StorageMinIO, cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 4, cfg.Moderation.MaxPhotosPerUser)
	assert.Equal(t, 5, cfg.Moderation.AutoSuspendReports)
	assert.True(t, cfg.Moderation.IsModerator("MOD@example.com"))
	assert.False(t, cfg.Moderation.IsModerator("user@example.com"))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PULSE_SERVER_PORT", "7070")
	t.Setenv("PULSE_DB_PASSWORD", "from-env")
	t.Setenv("PULSE_JWT_SECRET", "env-secret")
	t.Setenv("PULSE_S3_BUCKET", "env-bucket")
	t.Setenv("PULSE_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "env-bucket", cfg.Storage.Bucket)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("PULSE_JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StorageS3, cfg.Storage.Driver)
	assert.Equal(t, 72*time.Hour, cfg.JWT.TTL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Storage: StorageConfig{Driver: StorageS3},
			JWT:     JWTConfig{Secret: "s"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = -1 }, true},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "gcs" }, true},
		{"push without key", func(c *Config) { c.Push.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("PULSE_TEST_INT", "123")
	t.Setenv("PULSE_TEST_BAD_INT", "abc")
	t.Setenv("PULSE_TEST_BOOL", "true")

	assert.Equal(t, 123, getEnvInt("PULSE_TEST_INT", 0))
	assert.Equal(t, 10, getEnvInt("PULSE_TEST_BAD_INT", 10))
	assert.True(t, getEnvBool("PULSE_TEST_BOOL", false))
	assert.Equal(t, "default", getEnv("PULSE_TEST_UNSET", "default"))
}
