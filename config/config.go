// ABOUTME: Runtime configuration from .env files and SHAFT_* environment variables
// ABOUTME: Default storage paths live under the XDG data home
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix, e.g. SHAFT_STORE_DRIVER.
const Prefix = "SHAFT"

// Store and slot drivers.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	SlotBadger  = "badger"
	SlotCharm   = "charm"
)

type Config struct {
	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"shaft"`

	// Users always live in SQLite, even when documents are in Mongo.
	AuthDBPath string `envconfig:"AUTH_DB_PATH"`

	SlotDriver string `envconfig:"SLOT_DRIVER" default:"badger"`
	SlotDir    string `envconfig:"SLOT_DIR"`
	CharmHost  string `envconfig:"CHARM_HOST" default:"charm.2389.dev"`
	CharmSync  bool   `envconfig:"CHARM_AUTO_SYNC" default:"true"`

	HTTPAddr       string   `envconfig:"HTTP_ADDR" default:":8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`
}

// DataDir is where shaft keeps local state by default.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "shaft")
}

// Load reads .env (if present) and the environment, then fills default paths.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses the environment without touching .env files.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	switch c.StoreDriver {
	case StoreSQLite, StoreMongo:
	default:
		return fmt.Errorf("unsupported store driver: %q", c.StoreDriver)
	}
	switch c.SlotDriver {
	case SlotBadger, SlotCharm:
	default:
		return fmt.Errorf("unsupported slot driver: %q", c.SlotDriver)
	}

	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(DataDir(), "shaft.db")
	}
	if c.AuthDBPath == "" {
		c.AuthDBPath = c.SQLitePath
	}
	if c.SlotDir == "" {
		c.SlotDir = filepath.Join(DataDir(), "session")
	}
	return nil
}
