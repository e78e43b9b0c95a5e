package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"

	envDev = "dev"

	defaultDBName = "marges.db"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env            string        `env:"APP_ENV" envDefault:"dev"`
	Port           string        `env:"PORT" envDefault:"8080"`
	DataDir        string        `env:"DATA_DIR" envDefault:"./data"`
	DBPath         string        `env:"DB_PATH"`
	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"files"`
	CatalogPath    string        `env:"CATALOG_PATH"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	SeedOnStart    bool          `env:"SEED_ON_START" envDefault:"false"`
}

// Load reads .env from the working directory, if any, then the environment.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an
// error, and variables already set in the environment win over the file.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, defaultDBName)
	}

	switch cfg.StorageBackend {
	case BackendFiles, BackendSQLite:
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendFiles, BackendSQLite, cfg.StorageBackend)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.Env == envDev
}

// Warnings lists settings that are acceptable locally but suspicious in
// production.
func (c Config) Warnings() []string {
	var warnings []string
	if c.SessionSecret == "" {
		warnings = append(warnings, "SESSION_SECRET is not set, session cookies use a per-process key")
	}
	if !c.IsDev() && c.RedisAddr == "" {
		warnings = append(warnings, "REDIS_ADDR is not set, sessions are kept in memory")
	}
	return warnings
}
