package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "none", cfg.Remote.Driver)
	assert.Equal(t, "Asia/Jakarta", cfg.Distribution.Timezone)
	assert.Equal(t, "preparing", cfg.Distribution.CancelPolicy)
	assert.Equal(t, 2678, cfg.Dashboard.TargetPortions)
	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: "9000"
remote:
  driver: mongo
mongo:
  uri: mongodb://file-host:27017
sync:
  queueSize: 16
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("MONGO_URI", "mongodb://env-host:27017")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "mongodb://env-host:27017", cfg.Mongo.URI)
	assert.Equal(t, 16, cfg.Sync.QueueSize)
}

func TestValidate(t *testing.T) {
	base := Config{Remote: RemoteConfig{Driver: "none"}, Sync: SyncConfig{QueueSize: 1}}
	require.NoError(t, base.Validate())

	pg := base
	pg.Remote.Driver = "postgres"
	assert.Error(t, pg.Validate())
	pg.Postgres.URL = "postgres://localhost/sppg"
	assert.NoError(t, pg.Validate())

	unknown := base
	unknown.Remote.Driver = "supabase"
	assert.Error(t, unknown.Validate())

	noQueue := base
	noQueue.Sync.QueueSize = 0
	assert.Error(t, noQueue.Validate())
}
