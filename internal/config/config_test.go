package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "configs")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(body), 0644))
	return cfgDir
}

func TestLoadConfigReadsYamlAndDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
database:
  driver: sqlite
  path: test.db
jwt:
  secret: dev-secret
  expire_hours: 2
storage:
  type: minio
exams:
  default_passing_score: 65
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 65.0, cfg.Exams.DefaultPassingScore)
	assert.Equal(t, "db", cfg.Auth.SessionStore)
	assert.True(t, cfg.Community.AutoApprove)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow())
}

func TestLoadConfigRejectsShortSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
storage:
  type: minio
jwt:
  secret: short
`)

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: minio
jwt:
  secret: from-file
`)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}
