package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	origHome := xdg.DataHome
	xdg.DataHome = t.TempDir()
	defer func() { xdg.DataHome = origHome }()

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, SlotBadger, cfg.SlotDriver)
	assert.Equal(t, filepath.Join(xdg.DataHome, "shaft", "shaft.db"), cfg.SQLitePath)
	assert.Equal(t, cfg.SQLitePath, cfg.AuthDBPath)
	assert.Equal(t, filepath.Join(xdg.DataHome, "shaft", "session"), cfg.SlotDir)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SHAFT_STORE_DRIVER", "mongo")
	t.Setenv("SHAFT_MONGO_DATABASE", "crm")
	t.Setenv("SHAFT_SLOT_DRIVER", "charm")
	t.Setenv("SHAFT_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("SHAFT_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "crm", cfg.MongoDatabase)
	assert.Equal(t, SlotCharm, cfg.SlotDriver)
	assert.Equal(t, "/tmp/x.db", cfg.AuthDBPath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestFromEnv_RejectsUnknownDrivers(t *testing.T) {
	t.Setenv("SHAFT_STORE_DRIVER", "postgres")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "unsupported store driver")

	t.Setenv("SHAFT_STORE_DRIVER", "sqlite")
	t.Setenv("SHAFT_SLOT_DRIVER", "redis")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "unsupported slot driver")
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SHAFT_HTTP_ADDR=:9999\n"), 0600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	// godotenv does not override, so make sure the variable starts unset
	t.Setenv("SHAFT_HTTP_ADDR", "")
	require.NoError(t, os.Unsetenv("SHAFT_HTTP_ADDR"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
}
