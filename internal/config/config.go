// Package config loads server settings from defaults, an optional YAML file,
// a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds everything the server needs to start.
type Config struct {
	Addr        string        `yaml:"addr"`
	Storage     string        `yaml:"storage"`
	SQLitePath  string        `yaml:"sqlite_path"`
	DatabaseURL string        `yaml:"database_url"`
	UploadDir   string        `yaml:"upload_dir"`
	CORSOrigins []string      `yaml:"cors_origins"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
	Seed        bool          `yaml:"seed"`
	LogPath     string        `yaml:"log"`

	// SessionSecret signs session tokens. When empty the SQLite backend
	// generates and persists one; other backends use a random per-process secret.
	SessionSecret string `yaml:"session_secret"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:        ":5000",
		Storage:     StorageMemory,
		SQLitePath:  "reunite.sqlite3",
		UploadDir:   "uploads",
		CORSOrigins: []string{"http://localhost:5173"},
		SessionTTL:  7 * 24 * time.Hour,
	}
}

// Load builds a Config. path may be empty, in which case no YAML file is read.
// A missing .env file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("REUNITE_ADDR", &c.Addr)
	str("REUNITE_STORAGE", &c.Storage)
	str("REUNITE_SQLITE_PATH", &c.SQLitePath)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REUNITE_UPLOAD_DIR", &c.UploadDir)
	str("REUNITE_LOG", &c.LogPath)
	str("REUNITE_SESSION_SECRET", &c.SessionSecret)

	if v, ok := lookup("REUNITE_CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = SplitOrigins(v)
	}
	if v, ok := lookup("REUNITE_SESSION_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing REUNITE_SESSION_TTL: %w", err)
		}
		c.SessionTTL = ttl
	}
	if v, ok := lookup("REUNITE_SEED"); ok && v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing REUNITE_SEED: %w", err)
		}
		c.Seed = seed
	}
	return nil
}

// SplitOrigins parses a comma separated origin list, dropping blanks and
// trailing slashes.
func SplitOrigins(s string) []string {
	var origins []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite storage requires a database path")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("postgres storage requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage)
	}
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.UploadDir == "" {
		return errors.New("upload directory is required")
	}
	return nil
}
